package cli

import (
	"fmt"
	"strings"

	"github.com/iudanet/fitsync/internal/models"
)

// parseEntityType принимает имя типа в любом из видов:
// "workout_log", "workout-log", "workout-logs"
func parseEntityType(name string) (models.EntityType, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")

	candidates := []string{normalized, strings.TrimSuffix(normalized, "s")}
	if strings.HasSuffix(normalized, "ies") {
		candidates = append(candidates, strings.TrimSuffix(normalized, "ies")+"y")
	}
	for _, candidate := range candidates {
		if t := models.EntityType(candidate); t.Valid() {
			return t, nil
		}
	}

	names := make([]string, 0, len(models.EntityTypes))
	for _, t := range models.EntityTypes {
		names = append(names, string(t))
	}
	return "", fmt.Errorf("unknown entity type: %s. Use one of: %s", name, strings.Join(names, ", "))
}

// summary краткое описание записи для списков
func summary(e models.Entity) string {
	switch v := e.(type) {
	case *models.User:
		return v.DisplayName
	case *models.SocialProfile:
		return "@" + v.Handle
	case *models.Program:
		return v.Name
	case *models.TrainingDay:
		return fmt.Sprintf("%s (program %s)", v.Name, v.ProgramID)
	case *models.WorkoutLog:
		return fmt.Sprintf("%s, %d set(s), %d XP", v.PerformedAt, len(v.Sets), v.XPEarned)
	case *models.FocusSession:
		return fmt.Sprintf("%s, %ds", v.Label, v.DurationSec)
	case *models.Achievement:
		return v.BadgeID
	case *models.Gamification:
		return fmt.Sprintf("level %d, %d XP", v.Level, v.TotalXP)
	case *models.XPEvent:
		return fmt.Sprintf("+%d %s", v.Amount, v.Reason)
	case *models.PersonalRecord:
		return fmt.Sprintf("%s %s %g", v.ExerciseID, v.Metric, v.Value)
	case *models.CustomMeal:
		return fmt.Sprintf("%s, %d kcal", v.Name, v.Calories)
	case *models.CustomSupplement:
		return fmt.Sprintf("%s %g %s", v.Name, v.Dosage, v.Unit)
	case *models.Follow:
		return v.FollowerID + " -> " + v.FolloweeID
	case *models.GroupMembership:
		return fmt.Sprintf("%s in %s (%s)", v.MemberID, v.GroupID, v.Role)
	default:
		return string(e.Kind())
	}
}

// flags пометки записи, требующие внимания пользователя
func flags(e models.Entity) string {
	var out []string
	if e.Sync().Orphaned {
		out = append(out, "orphaned")
	}
	if e.Sync().NeedsReview {
		out = append(out, "needs review")
	}
	return strings.Join(out, ", ")
}
