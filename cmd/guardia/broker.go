package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dnbomberos/guardia/internal/broker"
)

var brokerCmd = &cobra.Command{
	Use:     "broker",
	GroupID: "sync",
	Short:   "Run a standalone pub/sub broker",
	Long: `Run the websocket relay that connects guardia clients.

Every message published by one client is fanned out to all connected
clients. Point clients at it with broker_url (or GUARDIA_BROKER_URL):

  guardia broker --port 9137
  GUARDIA_BROKER_URL=ws://host:9137/ws guardia daemon`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")

		server := broker.NewServer(&broker.Config{
			Port:   port,
			Logger: log.New(os.Stderr, "[broker] ", log.LstdFlags),
		})
		if err := server.Start(); err != nil {
			return err
		}

		fmt.Printf("Broker listening on %s\n", server.Addr())
		fmt.Printf("WebSocket endpoint: ws://localhost:%d/ws\n", port)
		fmt.Println("\nPress Ctrl+C to stop...")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		<-ctx.Done()

		fmt.Println("\nShutting down broker...")
		return server.Stop()
	},
}

func init() {
	brokerCmd.Flags().Int("port", 9137, "Port to listen on")
	rootCmd.AddCommand(brokerCmd)
}
