package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	bookingservice "driver-booking/internal/booking-service"
	"driver-booking/internal/config"
	"driver-booking/internal/mylogger"

	"github.com/spf13/cobra"
)

type runFunc func(ctx context.Context, mylog mylogger.Logger, cfg *config.Config) error

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "driver-booking",
		Short:         "Driver booking service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (default: environment)")

	command := func(use, short string, run runFunc, validate bool) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig(configPath, validate)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					return err
				}
				mylog, err := mylogger.New(cfg.Log.Level)
				if err != nil {
					return err
				}
				if err := run(cmd.Context(), mylog, cfg); err != nil {
					mylog.Error(use+" failed", err)
					return err
				}
				return nil
			},
		}
	}

	root.AddCommand(
		command("serve", "Run the HTTP and websocket API", bookingservice.Execute, true),
		command("migrate", "Apply database migrations", bookingservice.Migrate, false),
		command("seed", "Load the reference driver catalog", bookingservice.Seed, false),
	)
	return root
}

// loadConfig reads YAML when a path is given, the environment otherwise.
// Only serve needs the secrets that Validate checks.
func loadConfig(path string, validate bool) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.NewFromYAML(path)
	} else {
		cfg, err = config.New()
	}
	if err != nil && (validate || !errors.Is(err, config.ErrEmptyJwtSecret)) {
		return nil, err
	}
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
