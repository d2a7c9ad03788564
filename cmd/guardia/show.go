package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dnbomberos/guardia/internal/config"
	"github.com/dnbomberos/guardia/internal/store"
	"github.com/dnbomberos/guardia/internal/ui"
)

var showCmd = &cobra.Command{
	Use:     "show [key]",
	GroupID: "data",
	Short:   "Print a stored entity",
	Long: `Print the stored document for an entity key as indented JSON.
With no key, list the known keys. With --changes, print the most recent
entries of the change log instead.

Examples:
  guardia show
  guardia show schedule
  guardia show --changes 20`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		changes, _ := cmd.Flags().GetInt("changes")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		st, err := store.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open store at %s: %w", cfg.DBPath, err)
		}
		defer st.Close()
		if err := st.InitSchema(); err != nil {
			return err
		}

		if changes > 0 {
			tail, err := st.ChangeTail(cmd.Context(), changes)
			if err != nil {
				return err
			}
			for _, e := range tail {
				fmt.Printf("%s  %-20s %-7s %s\n",
					e.AppliedAt.Format("2006-01-02 15:04:05"), e.Key, e.Origin, e.Sender)
			}
			return nil
		}

		if len(args) == 0 {
			for _, key := range store.Keys {
				fmt.Println(key)
			}
			return nil
		}

		key := args[0]
		if !store.KnownKey(key) {
			return fmt.Errorf("unknown entity key %q (run %s for the list)", key, ui.RenderAccent("guardia show"))
		}
		doc, err := st.Load(key)
		if err != nil {
			return err
		}

		var out bytes.Buffer
		if err := json.Indent(&out, []byte(doc), "", "  "); err != nil {
			// Stored documents are JSON by construction; print raw if not.
			fmt.Println(doc)
			return nil
		}
		fmt.Println(out.String())
		return nil
	},
}

func init() {
	showCmd.Flags().Int("changes", 0, "Print the last N change log entries")
	rootCmd.AddCommand(showCmd)
}
