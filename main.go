package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"marketsnapshot/internal/config"
	"marketsnapshot/internal/logger"
	"marketsnapshot/internal/runner"
)

func main() {
	// Cancel in-flight requests on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:           "snapshot",
		Short:         "Screen US stocks, enrich them with QuickFS metadata and write a CSV snapshot",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := newRunner(cmd, configFile)
			if err != nil {
				return err
			}
			defer r.Close()

			summary, err := r.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nSaved %d rows to %s (%d lookups failed) in %s\n",
				summary.Rows, summary.OutputPath, summary.Failed, summary.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./config.yaml or $HOME/.marketsnapshot/config.yaml)")
	cmd.AddCommand(newScheduleCmd(&configFile))

	return cmd
}

func newScheduleCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule [cron-spec]",
		Short: "Write a snapshot on a cron schedule until interrupted",
		Long: `Write a snapshot on every tick of a five-field cron expression, evaluated in
the configured timezone. The expression comes from the argument or the
"schedule" setting.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner(cmd, *configFile)
			if err != nil {
				return err
			}
			defer r.Close()

			spec := r.ScheduleSpec()
			if len(args) == 1 {
				spec = args[0]
			}
			if spec == "" {
				return errors.New("no schedule given: pass a cron expression or set schedule in the config")
			}

			return r.Schedule(cmd.Context(), spec)
		},
	}
}

func newRunner(cmd *cobra.Command, configFile string) (*runner.Runner, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	return runner.New(cfg, cmd.OutOrStdout(), log)
}
