package cli

import (
	"context"
	"errors"
	"fmt"

	clientsync "github.com/iudanet/fitsync/internal/client/sync"
)

func (c *Cli) runSync(ctx context.Context) error {
	c.io.Println("=== Synchronization ===")
	c.io.Println()

	res, err := c.sync.RunOnce(ctx)
	if errors.Is(err, clientsync.ErrPassInFlight) {
		c.io.Println("Synchronization is already running. Another pass will follow it.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("synchronization failed: %w", err)
	}

	switch {
	case res.NotConfigured:
		c.io.Println("Sync is not configured. Run 'fitsync login' to set server and token.")
		return nil
	case res.Disconnected:
		c.io.Printf("Server is unreachable: %s\n", res.ProbeError)
		c.io.Println("Local changes are kept and will be sent on the next pass.")
		return nil
	}

	c.io.Println("✓ Synchronization completed successfully!")
	c.io.Println()
	c.io.Printf("Pushed to server:   %d record(s)\n", res.Pushed)
	c.io.Printf("Pulled from server: %d record(s)\n", res.Pulled)
	c.io.Printf("Applied locally:    %d record(s)\n", res.Applied)
	if res.Repushed > 0 {
		c.io.Printf("Queued for resend:  %d record(s)\n", res.Repushed)
	}
	if res.Flagged > 0 {
		c.io.Printf("Need review:        %d record(s)\n", res.Flagged)
	}
	if res.Orphaned > 0 {
		c.io.Printf("Orphaned logs:      %d record(s)\n", res.Orphaned)
	}

	if len(res.Rejected) > 0 {
		c.io.Println()
		c.io.Printf("Rejected by server (%d), kept locally:\n", len(res.Rejected))
		for _, r := range res.Rejected {
			c.io.Printf("  - %s\n", r.Error())
		}
	}
	if len(res.Skipped) > 0 {
		c.io.Println()
		c.io.Printf("Skipped (%d):\n", len(res.Skipped))
		for _, s := range res.Skipped {
			c.io.Printf("  - %s\n", s.Error())
		}
	}

	return nil
}
