package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/supplier-cli/internal/model"
	"github.com/sells-group/supplier-cli/internal/scorer"
)

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Show global performance indicators",
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

		from, to, err := parseDateFlags(cmd)
		if err != nil {
			return err
		}

		if from.IsZero() && to.IsZero() {
			return printJSON(scorer.ComputeKPIs(ds))
		}
		return printJSON(scorer.PeriodKPIs(ds, from, to))
	},
}

func parseDateFlags(cmd *cobra.Command) (from, to time.Time, err error) {
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")

	if fromStr != "" {
		if from, err = time.Parse(model.DateLayout, fromStr); err != nil {
			return from, to, eris.Wrapf(err, "invalid --from %q", fromStr)
		}
	}
	if toStr != "" {
		if to, err = time.Parse(model.DateLayout, toStr); err != nil {
			return from, to, eris.Wrapf(err, "invalid --to %q", toStr)
		}
	}
	return from, to, nil
}

func init() {
	kpiCmd.Flags().String("workspace", "default", "workspace to analyze")
	kpiCmd.Flags().String("from", "", "start of period (YYYY-MM-DD)")
	kpiCmd.Flags().String("to", "", "end of period (YYYY-MM-DD)")
	rootCmd.AddCommand(kpiCmd)
}
