package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"MayerSentinel/internal/dashboard"
	"MayerSentinel/internal/display"
	"MayerSentinel/internal/notifier"
	"MayerSentinel/internal/scheduler"
	"MayerSentinel/internal/state"
)

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:   "sentinel",
		Short: "MayerSentinel - Mayer multiple and Fear & Greed trading signals",
		Long: `MayerSentinel merges daily prices with the Fear & Greed index and derives
buy, sell or hold signals from the Mayer multiple band and sentiment thresholds.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "Configuration file path (default $CONFIG_PATH or configs/config.yaml)")

	root.AddCommand(newServeCmd(&cfgPath))
	root.AddCommand(newRunCmd(&cfgPath))
	root.AddCommand(newReportCmd(&cfgPath))
	root.AddCommand(newNotifyCmd(&cfgPath))
	return root
}

func newScheduler(ctx context.Context, a *app) (*scheduler.Scheduler, func(), error) {
	loc, err := a.cfg.Location()
	if err != nil {
		return nil, nil, err
	}
	rec := a.openRecorder()
	sched := scheduler.NewScheduler(ctx, a.runner, a.flags, a.notifier, rec, scheduler.Options{
		Symbol:   a.cfg.DataSource.Symbol,
		Currency: a.cfg.DataSource.Currency,
		Location: loc,
	}, a.log)
	return sched, func() { rec.Close() }, nil
}

// newServeCmd runs the dashboard and the notification cron job until interrupted.
func newServeCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web dashboard and the notification scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*cfgPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sched, closeRec, err := newScheduler(ctx, a)
			if err != nil {
				return err
			}
			defer closeRec()
			if err := sched.Register(a.cfg.Schedule.NotifyCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if os.Getenv("RUN_ON_START") == "true" {
				a.log.Info().Msg("RUN_ON_START enabled, executing notify task now")
				sched.RunInBackground(ctx)
			}

			srv, err := dashboard.NewServer(a.runner, a.flags, dashboard.Options{
				Symbol:      a.cfg.DataSource.Symbol,
				MetricsDays: a.cfg.MetricsDays,
				Refresh:     a.cfg.Dashboard.Refresh,
			}, a.log)
			if err != nil {
				return err
			}
			a.log.Info().Msg("MayerSentinel is running. Press Ctrl+C to stop.")
			return srv.ListenAndServe(ctx, a.cfg.Dashboard.Addr)
		},
	}
}

// newRunCmd is the one-shot job for external cron runners.
func newRunCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Fetch, evaluate and send the Telegram signal once if enabled",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*cfgPath)
			if err != nil {
				return err
			}
			sched, closeRec, err := newScheduler(cmd.Context(), a)
			if err != nil {
				return err
			}
			defer closeRec()
			return sched.RunNow(cmd.Context())
		},
	}
}

func newReportCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the current recommendation, metrics and trade history",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*cfgPath)
			if err != nil {
				return err
			}
			snap, err := a.runner.Run(cmd.Context())
			if err != nil {
				return err
			}
			return display.Render(cmd.OutOrStdout(), notifier.AssetName(a.cfg.DataSource.Symbol), snap, a.cfg.MetricsDays)
		},
	}
}

func newNotifyCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:       "notify [on|off|status]",
		Short:     "Enable, disable or show the Telegram notification flag",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*cfgPath)
			if err != nil {
				return err
			}
			switch args[0] {
			case "on", "off":
				if err := a.flags.Set(state.KeySendTelegram, args[0] == "on"); err != nil {
					return err
				}
			}
			enabled, err := a.flags.Get(state.KeySendTelegram)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Send trading signal to telegram bot: %t\n", enabled)
			return nil
		},
	}
}
