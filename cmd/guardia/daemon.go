package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dnbomberos/guardia/internal/config"
	"github.com/dnbomberos/guardia/internal/importer"
	"github.com/dnbomberos/guardia/internal/watch"
)

var daemonCmd = &cobra.Command{
	Use:     "daemon",
	GroupID: "sync",
	Short:   "Run the background sync daemon",
	Long: `Run the long-lived process that keeps this client in sync.

The daemon:
  1. Connects to the configured broker and applies peer mutations
     to the local store as they arrive
  2. Optionally watches an inbox directory (inbox_dir) and imports
     any document dropped into it

Stop with Ctrl+C or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		logger := config.NewLogger("[daemon] ", cfg.LogFile)
		if cfg.LogFile != "" {
			log.SetOutput(logger.Writer())
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		svc, err := openService(ctx, cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		if cfg.InboxDir != "" {
			zones := importer.DefaultZoneTable()
			if cfg.ZoneTable != "" {
				zones, err = importer.LoadZoneTable(cfg.ZoneTable)
				if err != nil {
					return err
				}
			}
			opts := importer.Options{Zones: zones, Logger: logger}

			watcher, err := watch.New(cfg.InboxDir, func(path string) error {
				return importOne(ctx, svc, path, opts, false)
			}, &watch.Config{
				DebounceInterval: watch.DefaultConfig().DebounceInterval,
				Logger:           logger,
			})
			if err != nil {
				return err
			}
			if err := watcher.Start(); err != nil {
				return err
			}
			defer watcher.Stop()
		}

		if cfg.BrokerURL == "" {
			logger.Println("No broker configured, running local-only")
		} else {
			logger.Printf("Connected to broker %s as %s", cfg.BrokerURL, svc.Sender())
		}

		if err := svc.Run(ctx); err != nil {
			return fmt.Errorf("sync loop ended: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}
