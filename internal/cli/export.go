package cli

import (
	"github.com/spf13/cobra"

	"macro-signal/internal/app"
)

var (
	exportFamily    string
	exportPeriod    string
	exportPNGPath   string
	exportCSVPath   string
	exportMaxPoints int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export indicator chart data as CSV and/or PNG chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ExportOptions{
			Family:    exportFamily,
			Period:    exportPeriod,
			PNGPath:   exportPNGPath,
			CSVPath:   exportCSVPath,
			MaxPoints: exportMaxPoints,
		}
		return getApp().Export(cmd.Context(), opts)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFamily, "family", app.FamilySignal, "Indicator family (signal or realestate)")
	exportCmd.Flags().StringVar(&exportPeriod, "period", "5y", "Lookback period (1y, 3y or 5y)")
	exportCmd.Flags().StringVar(&exportPNGPath, "png", "", "Path to write PNG chart")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "Path to write CSV data")
	exportCmd.Flags().IntVar(&exportMaxPoints, "max-points", 0, "Maximum data points to export (defaults to config)")
}
