// Package cli is the lifebetter command tree.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/guilhermexp/LifeBetter-sub001/pkg/config"
	"github.com/guilhermexp/LifeBetter-sub001/pkg/model"
	"github.com/guilhermexp/LifeBetter-sub001/pkg/store"
)

// nowFunc is a package-level var so tests can pin the clock.
var nowFunc = time.Now

type app struct {
	cfg        *config.Config
	configPath string
	logger     *slog.Logger
}

type appKey struct{}

func withApp(ctx context.Context, a *app) context.Context {
	return context.WithValue(ctx, appKey{}, a)
}

func appFrom(ctx context.Context) *app {
	a, _ := ctx.Value(appKey{}).(*app)
	if a == nil {
		panic("cli: command run without configuration")
	}
	return a
}

func (a *app) openStore() (*store.SQLite, error) {
	st, err := store.OpenSQLite(a.cfg.Database)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("store opened", "path", a.cfg.Database)
	return st, nil
}

func (a *app) today() model.Date {
	return model.DateOf(nowFunc())
}

func NewRootCmd(version string) *cobra.Command {
	var (
		configPath string
		dbPath     string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:          "lifebetter",
		Short:        "Turn free-text sentences into tasks, habits and calendar days",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				p, err := config.GetConfigPath()
				if err != nil {
					return fmt.Errorf("could not find path to configuration file: %w", err)
				}
				path = p
			}
			cfg, err := config.LoadFrom(path)
			if err != nil {
				return err
			}
			if dbPath != "" {
				cfg.Database = dbPath
			}

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withApp(ctx, &app{cfg: cfg, configPath: path, logger: logger}))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.config/lifebetter/config.yaml, env: LIFEBETTER_HOME)")
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config and LIFEBETTER_DB)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newParseCmd())
	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newInboxCmd())
	cmd.AddCommand(newConfirmCmd())
	cmd.AddCommand(newEditCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newDayCmd())
	cmd.AddCommand(newCountsCmd())
	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newAuthCmd())
	cmd.AddCommand(newSetCalendarCmd())

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.SetVersionTemplate("{{.Version}}\n")
	if version != "" {
		cmd.Version = version
	} else {
		cmd.Version = "dev"
	}
	return cmd
}
