package cli

import (
	"github.com/spf13/cobra"

	"macro-signal/internal/app"
)

var (
	reportFamily string
	reportPeriod string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the pipeline once and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ReportOptions{
			Family: reportFamily,
			Period: reportPeriod,
		}
		return getApp().Report(cmd.Context(), opts, cmd.OutOrStdout())
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportFamily, "family", app.FamilySignal, "Indicator family (signal or realestate)")
	reportCmd.Flags().StringVar(&reportPeriod, "period", "1y", "Lookback period (1y, 3y or 5y)")
}
