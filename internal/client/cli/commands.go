package cli

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	clientapi "github.com/iudanet/fitsync/internal/client/api"
	"github.com/iudanet/fitsync/internal/client/config"
	"github.com/iudanet/fitsync/internal/client/connectivity"
	"github.com/iudanet/fitsync/internal/client/iocli"
	"github.com/iudanet/fitsync/internal/logging"
)

// rootOptions глобальные флаги клиента
type rootOptions struct {
	in         io.Reader
	out        io.Writer
	errOut     io.Writer
	info       BuildInfo
	configPath string
	dbPath     string
	server     string
	token      string
	logLevel   string
}

// NewRootCommand собирает дерево команд клиента
func NewRootCommand(info BuildInfo, in io.Reader, out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{in: in, out: out, errOut: errOut, info: info}

	root := &cobra.Command{
		Use:           "fitsync",
		Short:         "Offline-first fitness tracker with background sync",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	f := root.PersistentFlags()
	f.StringVar(&opts.configPath, "config", config.DefaultPath(), "path to config file")
	f.StringVar(&opts.dbPath, "db", "", "path to local database (overrides config)")
	f.StringVar(&opts.server, "server", "", "server URL (overrides config)")
	f.StringVar(&opts.token, "token", "", "access token (overrides config)")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newStatusCmd(opts),
		newSyncCmd(opts),
		newDaemonCmd(opts),
		newLogWorkoutCmd(opts),
		newListCmd(opts),
		newGetCmd(opts),
		newDeleteCmd(opts),
		newPendingCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newVersionCmd(opts),
	)

	return root
}

func (o *rootOptions) stdio() iocli.IO {
	return iocli.NewStdio(o.in, o.out)
}

// loadConfig читает конфигурацию и применяет глобальные флаги
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	if o.server != "" {
		cfg.Server = o.server
	}
	if o.token != "" {
		cfg.Token = o.token
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

func (o *rootOptions) newLogger(cfg *config.Config) (*slog.Logger, func() error, error) {
	return logging.New(logging.Options{
		File:       cfg.Log.File,
		Level:      cfg.Log.Level,
		Output:     o.errOut,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
}

// withApp открывает локальное хранилище на время выполнения команды
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}

	logger, closeLog, err := o.newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	a, err := openApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	return fn(cmd.Context(), a)
}

// withCli выполняет команду над локальными данными
func (o *rootOptions) withCli(cmd *cobra.Command, fn func(ctx context.Context, c *Cli) error) error {
	return o.withApp(cmd, func(ctx context.Context, a *app) error {
		return fn(ctx, a.cli(o.stdio()))
	})
}

func newStatusCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sync status and pending changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withCli(cmd, func(ctx context.Context, c *Cli) error {
				return c.runStatus(ctx)
			})
		},
	}
}

func newSyncCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Synchronize local data with server now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withCli(cmd, func(ctx context.Context, c *Cli) error {
				return c.runSync(ctx)
			})
		},
	}
}

func newPendingCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List local changes waiting to be sent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withCli(cmd, func(ctx context.Context, c *Cli) error {
				return c.runPending(ctx)
			})
		},
	}
}

func newDaemonCmd(o *rootOptions) *cobra.Command {
	var addr string
	var probeEvery time.Duration

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run background sync with a local health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app) error {
				if addr == "" {
					addr = a.cfg.Daemon.HealthAddr
				}
				d := &daemon{
					scheduler: a.scheduler,
					checker:   a.monitor,
					prober:    a.monitor,
					logger:    a.logger,
					addr:      addr,
					probeEach: probeEvery,
				}
				a.logger.Info("Starting daemon", "owner_id", a.ownerID, "device_id", a.deviceID)
				return d.run(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "health endpoint address (overrides config)")
	cmd.Flags().DurationVar(&probeEvery, "probe-every", 30*time.Second, "how often to check whether the server is back online")
	return cmd
}

func newLogWorkoutCmd(o *rootOptions) *cobra.Command {
	var opts workoutOptions

	cmd := &cobra.Command{
		Use:   "log-workout",
		Short: "Record a completed workout",
		Example: `  fitsync log-workout --set squat:5:100 --set squat:5:100 --duration 45m --xp 120
  fitsync log-workout --program <id> --day <id> --notes "felt strong" --sync`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withCli(cmd, func(ctx context.Context, c *Cli) error {
				return c.runLogWorkout(ctx, opts)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.PerformedAt, "performed-at", "", "when the workout happened (RFC 3339, default now)")
	f.StringVar(&opts.ProgramID, "program", "", "program id")
	f.StringVar(&opts.DayID, "day", "", "training day id")
	f.StringVar(&opts.Notes, "notes", "", "free-form notes")
	f.DurationVar(&opts.Duration, "duration", 0, "workout duration, e.g. 45m")
	f.IntVar(&opts.XP, "xp", 0, "experience points earned")
	f.StringArrayVar(&opts.Sets, "set", nil, "performed set as exercise:reps[:weight_kg], repeatable")
	f.BoolVar(&opts.Sync, "sync", false, "synchronize right after saving")
	return cmd
}

func newListCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <type>",
		Short: "List saved records of a type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withCli(cmd, func(ctx context.Context, c *Cli) error {
				return c.runList(ctx, args[0])
			})
		},
	}
}

func newGetCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <type> <id>",
		Short: "Show full record details",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withCli(cmd, func(ctx context.Context, c *Cli) error {
				return c.runGet(ctx, args[0], args[1])
			})
		},
	}
}

func newDeleteCmd(o *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <type> <id>",
		Short: "Delete a record (soft delete)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withCli(cmd, func(ctx context.Context, c *Cli) error {
				return c.runDelete(ctx, args[0], args[1], yes)
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (o *rootOptions) account(cfg *config.Config) *account {
	return &account{
		io:     o.stdio(),
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(o.errOut, &slog.HandlerOptions{Level: slog.LevelWarn})),
		newPinger: func(server, token string) connectivity.Pinger {
			return clientapi.NewClient(server, token)
		},
		path: o.configPath,
	}
}

func newLoginCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Save server URL and access token",
		Long: `Save server URL and access token to the config file.
Use the global --server and --token flags, or enter them when asked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(o.configPath)
			if err != nil {
				return err
			}
			return o.account(cfg).login(cmd.Context(), o.server, o.token)
		},
	}
}

func newLogoutCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove access token from the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(o.configPath)
			if err != nil {
				return err
			}
			return o.account(cfg).logout()
		},
	}
}

func newVersionCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(o.stdio(), o.info)
		},
	}
}
