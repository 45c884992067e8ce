package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runPending(ctx context.Context) error {
	entries, err := c.pending.Snapshot(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to read pending changes: %w", err)
	}

	c.io.Println("=== Pending Changes ===")
	c.io.Println()

	if len(entries) == 0 {
		c.io.Println("No pending changes.")
		return nil
	}

	c.io.Printf("Found %d pending change(s):\n", len(entries))
	c.io.Println()
	for _, e := range entries {
		c.io.Printf("%6d  %-7s %-18s %s\n", e.Seq, e.Operation, e.EntityType, e.EntityID)
	}

	return nil
}
