package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/fitsync/internal/client/config"
	"github.com/iudanet/fitsync/internal/client/connectivity"
	"github.com/iudanet/fitsync/internal/client/iocli"
	"github.com/iudanet/fitsync/pkg/api"
)

// account управляет учетными данными синхронизации в файле конфигурации
type account struct {
	io        iocli.IO
	cfg       *config.Config
	logger    *slog.Logger
	newPinger func(server, token string) connectivity.Pinger
	path      string
}

func (a *account) login(ctx context.Context, server, token string) error {
	a.io.Println("=== Login ===")
	a.io.Println()

	var err error
	if server == "" {
		server = a.cfg.Server
	}
	if server == "" {
		server, err = a.io.ReadInput("Server URL: ")
		if err != nil {
			return fmt.Errorf("failed to read server url: %w", err)
		}
	}
	if token == "" {
		token, err = a.io.ReadPassword("Access token: ")
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
	}
	if server == "" || token == "" {
		return errors.New("server url and token are required")
	}

	owner := a.cfg.OwnerID
	if owner == "" {
		owner, err = api.OwnerFromToken(token)
		if err != nil {
			return fmt.Errorf("invalid token: %w", err)
		}
	}

	a.cfg.Server = server
	a.cfg.Token = token
	if err := config.Save(a.path, a.cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	a.io.Println("✓ Login successful!")
	a.io.Printf("Server: %s\n", server)
	a.io.Printf("Owner:  %s\n", owner)
	a.io.Printf("Config saved to %s\n", a.path)

	if a.newPinger != nil {
		monitor := connectivity.NewMonitor(a.newPinger(server, token), server, token,
			a.cfg.Sync.ProbeTimeout.Duration, a.logger)
		if probe := monitor.Probe(ctx); !probe.Connected {
			a.io.Println()
			a.io.Printf("⚠️  Server check failed: %s\n", probe.Error)
			a.io.Println("Changes are kept locally until the server is reachable.")
		}
	}

	return nil
}
