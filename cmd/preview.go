package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/san-import-cli/internal/importer"
	"github.com/sells-group/san-import-cli/internal/report"
)

var (
	previewFabric string
	previewReport string
)

var previewCmd = &cobra.Command{
	Use:   "preview <file>...",
	Short: "Parse and reconcile configuration files without submitting",
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

		plan, err := orch.Plan(ctx, docs, importOptions(previewFabric))
		if err != nil {
			return eris.Wrap(err, "plan import")
		}
		printPlan(plan)

		for _, a := range plan.Aliases {
			fmt.Printf("  alias %-30s %s  %-9s %-12s %s\n",
				a.Name, a.WWPN, a.Role, a.Syntax, statusWord(a.Exists))
		}
		for _, z := range plan.Zones {
			fmt.Printf("  zone  %-30s %d member(s), %d unresolved  %s\n",
				z.Name, len(z.Members), len(z.Unresolved), statusWord(z.Exists))
		}

		if previewReport != "" {
			if err := report.Write(previewReport, plan); err != nil {
				return eris.Wrap(err, "write report")
			}
			fmt.Printf("report written to %s\n", previewReport)
		}
		return nil
	},
}

func statusWord(exists bool) string {
	if exists {
		return "exists"
	}
	return "new"
}

func init() {
	previewCmd.Flags().StringVar(&previewFabric, "fabric", "", "fabric id (required)")
	previewCmd.Flags().StringVar(&previewReport, "report", "", "write an XLSX reconciliation report to this path")
	_ = previewCmd.MarkFlagRequired("fabric")
	rootCmd.AddCommand(previewCmd)
}
