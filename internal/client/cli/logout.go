package cli

import (
	"fmt"

	"github.com/iudanet/fitsync/internal/client/config"
)

// logout удаляет токен из конфигурации. Локальные данные и журнал сохраняются.
func (a *account) logout() error {
	a.io.Println("=== Logout ===")
	a.io.Println()

	if a.cfg.Token == "" {
		a.io.Println("Not logged in.")
		return nil
	}

	a.cfg.Token = ""
	if err := config.Save(a.path, a.cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	a.io.Println("✓ Logged out.")
	a.io.Println("Local data and pending changes are kept on this device.")
	return nil
}
