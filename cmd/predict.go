package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/supplier-cli/internal/forecast"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Forecast next-order defects and delays per supplier",
	Long:  "Blends a moving average, a linear extrapolation, and exponential smoothing into a next-order projection for every supplier with enough history. Use --supplier for one supplier's order-by-order detail.",
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

		supplier, _ := cmd.Flags().GetString("supplier")
		if supplier != "" {
			detail, err := forecast.Detail(ds, supplier, cfg.Forecast)
			if err != nil {
				return err
			}
			compare, _ := cmd.Flags().GetBool("compare")
			if compare && detail.Prediction != nil {
				return printJSON(struct {
					*forecast.SupplierDetail
					Methods []forecast.MethodComparison `json:"methodes"`
				}{detail, forecast.CompareMethods(detail.Prediction)})
			}
			return printJSON(detail)
		}

		return printJSON(forecast.Forecast(ds, cfg.Forecast))
	},
}

func init() {
	predictCmd.Flags().String("workspace", "default", "workspace to analyze")
	predictCmd.Flags().String("supplier", "", "show order-by-order detail for one supplier")
	predictCmd.Flags().Bool("compare", false, "with --supplier, include the per-method comparison")
	rootCmd.AddCommand(predictCmd)
}
