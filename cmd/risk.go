package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/supplier-cli/internal/scorer"
)

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Score suppliers by risk",
	Long:  "Computes a 0-100 risk score per supplier from mean delay, mean defect rate, and trend adjustments, and prints the ranking. Use --actions for the recommended follow-ups and --json for machine-readable output.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		workspaceName, _ := cmd.Flags().GetString("workspace")
		_, ds, err := loadWorkspaceDataset(ctx, st, workspaceName)
		if err != nil {
			return err
		}

		risks := scorer.ScoreSuppliers(ds, time.Now().UTC(), cfg.Scoring)

		asJSON, _ := cmd.Flags().GetBool("json")
		withActions, _ := cmd.Flags().GetBool("actions")

		if asJSON {
			if !withActions {
				return printJSON(risks)
			}
			return printJSON(struct {
				Risks        []scorer.SupplierRisk       `json:"fournisseurs"`
				Distribution map[string]scorer.TierShare `json:"distribution"`
				Actions      []scorer.Action             `json:"actions"`
			}{risks, scorer.Distribution(risks), scorer.RecommendActions(risks, cfg.Scoring)})
		}

		formatRiskList(os.Stdout, risks)
		if withActions {
			fmt.Fprintln(os.Stdout)
			formatActionList(os.Stdout, scorer.RecommendActions(risks, cfg.Scoring))
		}
		return nil
	},
}

// formatRiskList writes the supplier ranking as a table.
func formatRiskList(out io.Writer, risks []scorer.SupplierRisk) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FOURNISSEUR\tSCORE\tNIVEAU\tRETARD MOYEN\tDEFAUTS %\tTEND. DEFAUTS\tTEND. RETARDS\tCOMMANDES")
	for _, r := range risks {
		_, _ = fmt.Fprintf(w, "%s\t%.1f\t%s\t%.1f\t%.2f\t%s\t%s\t%d\n",
			r.Supplier, r.Score, r.Level, r.MeanDelay, r.DefectRate,
			r.DefectTrend, r.DelayTrend, r.OrderCount,
		)
	}
	_ = w.Flush()
}

// formatActionList writes the action plan as a table.
func formatActionList(out io.Writer, actions []scorer.Action) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FOURNISSEUR\tACTION\tPRIORITE\tDELAI")
	for _, a := range actions {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.Supplier, a.Action, a.Priority, a.Deadline)
	}
	_ = w.Flush()
}

func init() {
	riskCmd.Flags().String("workspace", "default", "workspace to analyze")
	riskCmd.Flags().Bool("actions", false, "include recommended actions")
	riskCmd.Flags().Bool("json", false, "print JSON instead of a table")
	rootCmd.AddCommand(riskCmd)
}
