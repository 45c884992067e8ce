package cli

import (
	"context"

	"github.com/iudanet/fitsync/internal/timex"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Sync Status ===")
	c.io.Println()

	st := c.sync.Status(ctx)

	c.io.Printf("State:        %s\n", st.State)
	if st.LastSuccessAt.IsZero() {
		c.io.Printf("Last success: %s\n", "never")
	} else {
		c.io.Printf("Last success: %s\n", timex.Format(st.LastSuccessAt))
	}
	if st.LastError != "" {
		c.io.Printf("Last error:   %s\n", st.LastError)
	}

	if c.remote != nil {
		remote := c.remote.Status(ctx)
		switch {
		case !remote.Configured:
			c.io.Printf("Server:       %s\n", "not configured")
		case remote.Connected:
			c.io.Printf("Server:       %s\n", "connected")
		default:
			c.io.Printf("Server:       unreachable (%s)\n", remote.Error)
		}
	}

	c.io.Println()
	if st.Pending > 0 {
		c.io.Printf("⚠️  Pending sync: %d change(s) waiting to be sent\n", st.Pending)
		c.io.Println("Run 'fitsync sync' to synchronize with server.")
	} else {
		c.io.Println("✓ All local changes are synchronized")
	}

	return nil
}
