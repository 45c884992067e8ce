package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/fitsync/internal/client/data"
	"github.com/iudanet/fitsync/internal/client/storage"
	"github.com/iudanet/fitsync/internal/models"
	"github.com/iudanet/fitsync/internal/timex"
)

// workoutOptions параметры команды log-workout
type workoutOptions struct {
	PerformedAt string
	ProgramID   string
	DayID       string
	Notes       string
	Sets        []string // "exercise:reps[:weight_kg]"
	Duration    time.Duration
	XP          int
	Sync        bool
}

func (c *Cli) runLogWorkout(ctx context.Context, opts workoutOptions) error {
	c.io.Println("=== Log Workout ===")
	c.io.Println()

	performedAt := timex.Now()
	if opts.PerformedAt != "" {
		parsed := timex.ToOptionalTime(opts.PerformedAt)
		if parsed == nil {
			return fmt.Errorf("invalid --performed-at value: %q", opts.PerformedAt)
		}
		performedAt = *parsed
	}

	if opts.Duration < 0 || opts.XP < 0 {
		return errors.New("duration and xp must not be negative")
	}

	sets := make([]models.LoggedSet, 0, len(opts.Sets))
	for i, raw := range opts.Sets {
		set, err := parseSet(raw, i)
		if err != nil {
			return err
		}
		sets = append(sets, set)
	}

	if err := c.checkParent(ctx, models.EntityProgram, opts.ProgramID); err != nil {
		return err
	}
	if err := c.checkParent(ctx, models.EntityTrainingDay, opts.DayID); err != nil {
		return err
	}

	workout := &models.WorkoutLog{
		ProgramID:   opts.ProgramID,
		DayID:       opts.DayID,
		PerformedAt: timex.Format(performedAt),
		Notes:       opts.Notes,
		Sets:        sets,
		DurationSec: int(opts.Duration / time.Second),
		XPEarned:    opts.XP,
	}

	saved, err := c.data.Save(ctx, workout)
	if err != nil {
		return fmt.Errorf("failed to save workout: %w", err)
	}

	c.io.Println("✓ Workout saved locally!")
	c.io.Printf("ID: %s\n", saved.Sync().ID)
	c.io.Printf("Sets: %d, XP: %d\n", len(sets), opts.XP)

	if !opts.Sync {
		c.io.Println()
		c.io.Println("Run 'fitsync sync' to send it to the server.")
		return nil
	}

	c.io.Println()
	return c.runSync(ctx)
}

// checkParent проверяет, что родительская запись существует и не удалена
func (c *Cli) checkParent(ctx context.Context, t models.EntityType, id string) error {
	if id == "" {
		return nil
	}
	_, err := c.data.Get(ctx, t, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrEntityNotFound), errors.Is(err, data.ErrEntityDeleted):
		return fmt.Errorf("%s not found with ID: %s", t, id)
	default:
		return fmt.Errorf("failed to check %s: %w", t, err)
	}
}

// parseSet разбирает подход в формате "exercise:reps[:weight_kg]"
func parseSet(raw string, index int) (models.LoggedSet, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 || strings.TrimSpace(parts[0]) == "" {
		return models.LoggedSet{}, fmt.Errorf("invalid set %q. Use exercise:reps[:weight_kg]", raw)
	}

	reps, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || reps < 0 {
		return models.LoggedSet{}, fmt.Errorf("invalid reps in set %q", raw)
	}

	var weight float64
	if len(parts) == 3 {
		weight, err = strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil || weight < 0 {
			return models.LoggedSet{}, fmt.Errorf("invalid weight in set %q", raw)
		}
	}

	return models.LoggedSet{
		ExerciseID: strings.TrimSpace(parts[0]),
		SetIndex:   index,
		Reps:       reps,
		WeightKg:   weight,
	}, nil
}
