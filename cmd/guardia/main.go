// guardia is the fire-department guard data tool: it imports operational
// documents (guard schedules, unit status reports, command rosters) into
// a shared store and keeps peers in sync through a pub/sub broker.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "guardia",
	Short: "Guard schedule and unit report data tool",
	Long: `guardia normalizes the department's heterogeneous operational documents
(Word schedules, spreadsheet schedules and unit reports, PDF unit-report
exports, roster calendars) into shared entities, and synchronizes them
across clients through a websocket pub/sub broker.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "data", Title: "Data commands:"},
		&cobra.Group{ID: "sync", Title: "Sync commands:"},
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
