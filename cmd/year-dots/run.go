package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/username/year-dots/internal/config"
	"github.com/username/year-dots/internal/daemon"
	"github.com/username/year-dots/internal/notify"
	"github.com/username/year-dots/internal/server"
	"github.com/username/year-dots/internal/tui"
	"go.uber.org/zap"
)

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive year grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger = quietLogger(cfg.Daemon.LogFile)

			cfg, manager, err := initializeManager(cmd.Context())
			if err != nil {
				return err
			}
			defer manager.Close()

			return tui.Run(cmd.Context(), manager, tui.Options{
				CellPx:    cfg.Counter.GetCellPx(),
				ThemeMode: cfg.Theme.Mode,
				ThemeFile: cfg.Theme.File,
			}, logger)
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, manager, err := initializeManager(cmd.Context())
			if err != nil {
				return err
			}
			defer manager.Close()

			if addr == "" {
				addr = cfg.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(manager, logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")

	return cmd
}

func daemonCmd() *cobra.Command {
	var withHTTP bool

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run as daemon with midnight rollover and a daily reminder",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, manager, err := initializeManager(cmd.Context())
			if err != nil {
				return err
			}
			defer manager.Close()

			notifier, err := initializeNotifier(cfg)
			if err != nil {
				return err
			}

			hour, minute := cfg.Daemon.GetReminderTime()
			logger.Info("Starting daemon",
				zap.Int("year", cfg.Year),
				zap.String("reminder_time", fmt.Sprintf("%02d:%02d", hour, minute)),
				zap.Bool("system_tray", cfg.Daemon.SystemTray),
				zap.Bool("http", withHTTP))

			d := daemon.NewDaemon(manager, notifier, cfg.Daemon, logger)

			if withHTTP {
				ctx, cancel := context.WithCancel(cmd.Context())
				defer cancel()
				go func() {
					if err := server.New(manager, logger).ListenAndServe(ctx, cfg.Server.Addr); err != nil {
						logger.Error("HTTP server stopped", zap.Error(err))
					}
				}()
			}

			return d.Start()
		},
	}

	cmd.Flags().BoolVar(&withHTTP, "http", false, "Also serve the HTTP API")

	return cmd
}

func initializeNotifier(cfg *config.Config) (notify.Notifier, error) {
	if !cfg.Telegram.Enabled() {
		logger.Info("Telegram not configured, reminders go to the log")
		return notify.NewLogNotifier(logger), nil
	}

	n, err := notify.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID, logger)
	if err != nil {
		return nil, err
	}
	return n, nil
}
