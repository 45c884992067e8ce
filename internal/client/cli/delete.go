package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/fitsync/internal/client/storage"
	"github.com/iudanet/fitsync/internal/models"
)

func (c *Cli) runDelete(ctx context.Context, kind, id string, yes bool) error {
	t, err := parseEntityType(kind)
	if err != nil {
		return err
	}

	c.io.Printf("=== Delete %s ===\n", t)
	c.io.Println()

	// Сначала получаем запись для показа информации
	e, err := c.data.Get(ctx, t, id)
	if err != nil {
		if errors.Is(err, storage.ErrEntityNotFound) {
			return fmt.Errorf("%s not found with ID: %s", t, id)
		}
		return fmt.Errorf("failed to get %s: %w", t, err)
	}

	c.io.Println("About to delete:")
	c.io.Printf("  %s\n", summary(e))
	c.io.Printf("  ID: %s\n", id)
	if t == models.EntityProgram {
		c.io.Println("  Training days of this program are deleted too. Workout logs are kept.")
	}
	c.io.Println()

	if !yes {
		confirm, err := c.io.ReadInput("Are you sure? (yes/no): ")
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if confirm != "yes" && confirm != "y" {
			c.io.Println("Deletion cancelled.")
			return nil
		}
	}

	if err := c.data.Delete(ctx, t, id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", t, err)
	}

	c.io.Println("✓ Deleted successfully!")
	c.io.Println("Run 'fitsync sync' to send the deletion to the server.")
	return nil
}
