// Command digigate drives one user's entitlements from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information (set at build time with -ldflags)
var Version = "dev"

type flags struct {
	config  string
	envFile string
	user    string
	store   string
}

func newRootCmd() *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:           "digigate",
		Short:         "Trial, subscription and download entitlements",
		Long:          `digigate checks and records a user's trial, plan and download limits against a memory or redis store.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&f.config, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVar(&f.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	root.PersistentFlags().StringVarP(&f.user, "user", "u", "", "user id (overrides DIGIGATE_USER)")
	root.PersistentFlags().StringVar(&f.store, "store", "", "store backend: memory or redis (overrides DIGIGATE_STORE)")

	for _, act := range actions() {
		root.AddCommand(&cobra.Command{
			Use:   act.usage,
			Short: act.short,
			Args: func(_ *cobra.Command, args []string) error {
				return act.checkArgs(args)
			},
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, f, func(ctx context.Context, a *app) error {
					return act.run(ctx, a, cmd.OutOrStdout(), args)
				})
			},
		})
	}

	root.AddCommand(&cobra.Command{
		Use:   "shell",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, f, func(ctx context.Context, a *app) error {
				return runShell(ctx, a, cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	})

	return root
}

// withApp loads config, builds the app, runs fn and shuts the engine down.
func withApp(cmd *cobra.Command, f flags, fn func(context.Context, *app) error) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(f.config, f.envFile)
	if err != nil {
		return err
	}
	if f.user != "" {
		cfg.UserID = f.user
	}
	if f.store != "" {
		cfg.Store = f.store
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.level())
	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, s, logger)
	if err != nil {
		_ = s.Close()
		return err
	}
	defer func() {
		if cerr := a.close(); cerr != nil {
			logger.Warn("digigate: shutdown failed", "error", cerr)
		}
	}()

	return fn(ctx, a)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
