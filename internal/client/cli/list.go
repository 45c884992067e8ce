package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/fitsync/internal/crdt"
	"github.com/iudanet/fitsync/internal/timex"
)

func (c *Cli) runList(ctx context.Context, kind string) error {
	t, err := parseEntityType(kind)
	if err != nil {
		return err
	}

	entities, err := c.data.List(ctx, t)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", t, err)
	}

	view := entityList{Type: string(t), Rows: make([]entityRow, 0, len(entities))}
	for _, e := range entities {
		view.Rows = append(view.Rows, entityRow{
			ID:      e.Sync().ID,
			Summary: summary(e),
			Updated: timex.Format(crdt.WallTime(e.Sync().UpdatedAt)),
			Flags:   flags(e),
		})
	}

	if err := entityListTmpl.Execute(c.io, view); err != nil {
		return fmt.Errorf("failed to render list: %w", err)
	}
	c.io.Println()
	return nil
}
