package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dnbomberos/guardia/internal/config"
	"github.com/dnbomberos/guardia/internal/importer"
	"github.com/dnbomberos/guardia/internal/model"
	"github.com/dnbomberos/guardia/internal/store"
	"github.com/dnbomberos/guardia/internal/sync"
	"github.com/dnbomberos/guardia/internal/ui"
)

var importCmd = &cobra.Command{
	Use:     "import <file>...",
	GroupID: "data",
	Short:   "Import documents into the shared store",
	Long: `Parse one or more operational documents and save the resulting
entities. The entity type is detected from the file extension and
content:

  .docx        guard schedule (free text) or roster calendar
  .xlsx/.xls   guard schedule (tabular) or unit status report
  .pdf         unit status report (embedded metadata)
  .json        roster calendar

Saved entities are broadcast to connected peers when a broker is
configured. Rosters merge into the stored calendar; schedules and unit
reports replace the stored document.

Examples:
  guardia import guardia-12-08.docx
  guardia import --dry-run novedades.xlsx
  guardia import --kind unitreport planilla.xlsx`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		kindFlag, _ := cmd.Flags().GetString("kind")

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		kind, err := parseKind(kindFlag)
		if err != nil {
			return err
		}

		zones := importer.DefaultZoneTable()
		if cfg.ZoneTable != "" {
			zones, err = importer.LoadZoneTable(cfg.ZoneTable)
			if err != nil {
				return err
			}
		}

		opts := importer.Options{
			Kind:   kind,
			Zones:  zones,
			Logger: log.New(os.Stderr, "[import] ", log.LstdFlags),
		}

		var svc *sync.Service
		if !dryRun {
			svc, err = openService(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer svc.Close()
			if cfg.BrokerURL == "" {
				fmt.Printf("%s no broker configured, imports stay on this machine\n", ui.RenderWarn("!"))
			}
		}

		failed := 0
		for _, path := range args {
			if err := importOne(cmd.Context(), svc, path, opts, dryRun); err != nil {
				fmt.Printf("%s %s: %v\n", ui.RenderFail("✗"), filepath.Base(path), err)
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d imports failed", failed, len(args))
		}
		return nil
	},
}

func parseKind(s string) (importer.Kind, error) {
	switch s {
	case "", "auto":
		return importer.KindAuto, nil
	case "schedule":
		return importer.KindSchedule, nil
	case "unitreport":
		return importer.KindUnitReport, nil
	case "roster":
		return importer.KindRoster, nil
	default:
		return "", fmt.Errorf("unknown kind %q (want schedule, unitreport, roster or auto)", s)
	}
}

// importOne parses a single file and, unless dry-running, saves the
// entity through the sync service.
func importOne(ctx context.Context, svc *sync.Service, path string, opts importer.Options, dryRun bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	res, err := importer.ImportFile(data, path, opts)
	if err != nil {
		return err
	}
	switch res.Kind {
	case importer.KindSchedule:
		if err := res.Schedule.Validate(); err != nil {
			return fmt.Errorf("imported schedule failed validation: %w", err)
		}
	case importer.KindUnitReport:
		if err := res.UnitReport.Validate(); err != nil {
			return fmt.Errorf("imported report failed validation: %w", err)
		}
	}

	fmt.Printf("%s %s: %s\n", ui.RenderPass("✓"), filepath.Base(path), describeResult(res))
	if dryRun {
		return nil
	}

	switch res.Kind {
	case importer.KindSchedule:
		return saveJSON(ctx, svc, store.KeySchedule, res.Schedule)
	case importer.KindUnitReport:
		return saveJSON(ctx, svc, store.KeyUnitReport, res.UnitReport)
	case importer.KindRoster:
		return saveRoster(ctx, svc, res.Roster)
	default:
		return fmt.Errorf("unexpected import kind %q", res.Kind)
	}
}

func describeResult(res *importer.Result) string {
	switch res.Kind {
	case importer.KindSchedule:
		return fmt.Sprintf("schedule %s (%d services, %d staff)",
			res.Schedule.Date, len(res.Schedule.Services), len(res.Schedule.CommandStaff))
	case importer.KindUnitReport:
		units := 0
		for _, z := range res.UnitReport.Zones {
			for _, g := range z.Groups {
				units += len(g.Units)
			}
		}
		return fmt.Sprintf("unit report %s (%d zones, %d units)",
			res.UnitReport.ReportDate, len(res.UnitReport.Zones), units)
	case importer.KindRoster:
		return fmt.Sprintf("roster (%d dates)", len(res.Roster))
	default:
		return string(res.Kind)
	}
}

func saveJSON(ctx context.Context, svc *sync.Service, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return svc.Save(ctx, key, data)
}

// saveRoster merges the imported dates into the stored calendar instead
// of replacing it: roster imports arrive month by month.
func saveRoster(ctx context.Context, svc *sync.Service, roster model.Roster) error {
	current, err := svc.Load(ctx, store.KeyRoster)
	if err != nil {
		return err
	}
	merged := model.Roster{}
	if err := json.Unmarshal(current, &merged); err != nil {
		return fmt.Errorf("failed to decode stored roster: %w", err)
	}
	merged.Merge(roster)
	return saveJSON(ctx, svc, store.KeyRoster, merged)
}

func init() {
	importCmd.Flags().Bool("dry-run", false, "Parse and report, do not save")
	importCmd.Flags().String("kind", "auto", "Force entity kind: schedule, unitreport, roster")
	rootCmd.AddCommand(importCmd)
}
