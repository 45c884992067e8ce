package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iudanet/fitsync/internal/client/storage"
	"github.com/iudanet/fitsync/internal/crdt"
	"github.com/iudanet/fitsync/internal/timex"
)

func (c *Cli) runGet(ctx context.Context, kind, id string) error {
	t, err := parseEntityType(kind)
	if err != nil {
		return err
	}

	e, err := c.data.Get(ctx, t, id)
	if err != nil {
		if errors.Is(err, storage.ErrEntityNotFound) {
			return fmt.Errorf("%s not found with ID: %s", t, id)
		}
		return fmt.Errorf("failed to get %s: %w", t, err)
	}

	fields := e.Sync()
	view := entityDetails{
		Type:        string(t),
		ID:          fields.ID,
		OwnerID:     fields.OwnerID,
		DeviceID:    fields.DeviceID,
		CreatedAt:   fields.CreatedAt,
		Updated:     timex.Format(crdt.WallTime(fields.UpdatedAt)),
		Orphaned:    fields.Orphaned,
		NeedsReview: fields.NeedsReview,
	}
	if err := entityDetailsTmpl.Execute(c.io, view); err != nil {
		return fmt.Errorf("failed to render %s: %w", t, err)
	}

	body, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", t, err)
	}
	if _, err := c.io.Write(append(body, '\n')); err != nil {
		return err
	}
	return nil
}
