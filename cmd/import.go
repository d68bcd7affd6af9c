package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/san-import-cli/internal/importer"
	"github.com/sells-group/san-import-cli/internal/report"
)

var (
	importFabric string
	importReport string
)

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Parse configuration files and submit new aliases and zones",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		docs, err := readDocuments(args)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer st.Close()

		orch := importer.New(st, buildClassifier())
		opts := importOptions(importFabric)

		plan, err := orch.Plan(ctx, docs, opts)
		if err != nil {
			return eris.Wrap(err, "plan import")
		}
		printPlan(plan)

		if importReport != "" {
			if err := report.Write(importReport, plan); err != nil {
				return eris.Wrap(err, "write report")
			}
			fmt.Printf("report written to %s\n", importReport)
		}

		result, err := orch.Submit(ctx, plan, opts)
		if result != nil {
			printSubmitResult(result)
		}
		if err != nil {
			return eris.Wrap(err, "submit")
		}

		zap.L().Info("import complete",
			zap.String("fabric", importFabric),
			zap.Int("aliases", len(result.Aliases)),
			zap.Int("zones", len(result.Zones)),
		)
		return nil
	},
}

func printPlan(plan *importer.Plan) {
	var newAliases, existingAliases int
	for _, a := range plan.Aliases {
		if a.Exists {
			existingAliases++
		} else {
			newAliases++
		}
	}
	var newZones, existingZones, unresolved int
	for _, z := range plan.Zones {
		if z.Exists {
			existingZones++
		} else {
			newZones++
		}
		unresolved += len(z.Unresolved)
	}

	fmt.Printf("batch %s (fabric %s)\n", plan.BatchID, plan.FabricID)
	for _, d := range plan.Documents {
		fmt.Printf("  %-40s %s\n", d.Name, d.Format)
	}
	fmt.Printf("aliases: %d new, %d already exist\n", newAliases, existingAliases)
	fmt.Printf("zones:   %d new, %d already exist, %d unresolved member(s)\n",
		newZones, existingZones, unresolved)
}

func printSubmitResult(result *importer.SubmitResult) {
	for _, r := range result.Aliases {
		switch {
		case r.Error != "":
			fmt.Printf("alias %-30s FAILED: %s\n", r.Name, r.Error)
		case r.Duplicate:
			fmt.Printf("alias %-30s duplicate, skipped\n", r.Name)
		default:
			fmt.Printf("alias %-30s created (%s)\n", r.Name, r.ID)
		}
	}
	for _, r := range result.Zones {
		switch {
		case r.Error != "":
			fmt.Printf("zone  %-30s FAILED: %s\n", r.Name, r.Error)
		case r.Duplicate:
			fmt.Printf("zone  %-30s duplicate, skipped\n", r.Name)
		default:
			fmt.Printf("zone  %-30s created (%s)\n", r.Name, r.ID)
		}
	}
}

func init() {
	importCmd.Flags().StringVar(&importFabric, "fabric", "", "fabric id (required)")
	importCmd.Flags().StringVar(&importReport, "report", "", "write an XLSX reconciliation report to this path")
	_ = importCmd.MarkFlagRequired("fabric")
	rootCmd.AddCommand(importCmd)
}
