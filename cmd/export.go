package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/supplier-cli/internal/forecast"
	"github.com/sells-group/supplier-cli/internal/report"
	"github.com/sells-group/supplier-cli/internal/scorer"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the full analysis as an XLSX workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		workspaceName, _ := cmd.Flags().GetString("workspace")
		output, _ := cmd.Flags().GetString("output")
		_, ds, err := loadWorkspaceDataset(ctx, st, workspaceName)
		if err != nil {
			return err
		}

		// The sections are independent reads over the same dataset.
		var wb report.Workbook
		g, _ := errgroup.WithContext(ctx)
		g.Go(func() error {
			wb.KPIs = scorer.ComputeKPIs(ds)
			return nil
		})
		g.Go(func() error {
			wb.Risks = scorer.ScoreSuppliers(ds, time.Now().UTC(), cfg.Scoring)
			wb.Actions = scorer.RecommendActions(wb.Risks, cfg.Scoring)
			return nil
		})
		g.Go(func() error {
			wb.Predictions = forecast.Forecast(ds, cfg.Forecast)
			return nil
		})
		if err := g.Wait(); err != nil {
			return err
		}

		if err := report.Write(output, wb); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Wrote %s\n", output)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("workspace", "default", "workspace to export")
	exportCmd.Flags().StringP("output", "o", "rapport.xlsx", "output file path")
	rootCmd.AddCommand(exportCmd)
}
