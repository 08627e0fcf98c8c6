package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"user-crud-service/cmd/api/app"
	"user-crud-service/cmd/api/infrastructure"
	"user-crud-service/cmd/api/server"
	"user-crud-service/internal/adapter/db/migrations"
	"user-crud-service/internal/config"
	"user-crud-service/pkg/summation"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "user-crud-service",
		Short:        "CRUD HTTP service for users",
		SilenceUsage: true,
		RunE:         runServe,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server (default)",
			Args:  cobra.NoArgs,
			RunE:  runServe,
		},
		&cobra.Command{
			Use:       "migrate [up|down|version]",
			Short:     "Apply the embedded PostgreSQL migrations",
			Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
			ValidArgs: []string{string(migrations.Up), string(migrations.Down), string(migrations.Version)},
			RunE:      runMigrate,
		},
		&cobra.Command{
			Use:   "sum N",
			Short: "Print the sum of 1..N computed three ways",
			Args:  cobra.ExactArgs(1),
			RunE:  runSum,
		},
	)

	return root
}

// bootstrap loads configuration and builds the logger shared by every command.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(app.ConfigPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := app.InitLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, l, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, l, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, stop := server.WithSignal(cmd.Context(), l)
	defer stop()

	a, err := app.New(ctx, cfg, l)
	if err != nil {
		l.Error("failed to initialize application", zap.Error(err))
		_ = l.Sync()
		return err
	}

	if err := a.Run(ctx); err != nil {
		l.Error("application exited with error", zap.Error(err))
		return err
	}
	return nil
}

func runMigrate(_ *cobra.Command, args []string) error {
	action, err := migrations.ParseAction(args[0])
	if err != nil {
		return err
	}

	cfg, l, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	if cfg.DB.URL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	if infrastructure.IsSQLite(cfg.DB.URL) {
		return fmt.Errorf("migrations target PostgreSQL; SQLite databases are created on startup")
	}

	return migrations.Run(cfg.DB.URL, action, l)
}

func runSum(cmd *cobra.Command, args []string) error {
	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("N must be an integer: %w", err)
	}

	formula, err := summation.Formula(n)
	if err != nil {
		return err
	}
	iterative, err := summation.Iterative(n)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "formula:   %d\n", formula)
	fmt.Fprintf(out, "iterative: %d\n", iterative)

	recursive, err := summation.Recursive(n)
	if err != nil {
		fmt.Fprintf(out, "recursive: %v\n", err)
		return nil
	}
	fmt.Fprintf(out, "recursive: %d\n", recursive)
	return nil
}
