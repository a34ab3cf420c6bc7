// Command imagefusion is a thin CLI exercising the starfm, fitfc and staarch fusors
// end to end over files on disk; it is not a scheduler.
package main

import (
	"fmt"
	"os"

	"github.com/airbusgeo/imagefusion/internal/config"
	"github.com/airbusgeo/imagefusion/internal/diag"
	"github.com/airbusgeo/imagefusion/internal/logging"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "imagefusion",
	Short:         "spatiotemporal raster fusion (STARFM, FitFC, STAARCH)",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if configPath != "" {
			loaded, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg = loaded
		}
		logger := logging.New(cfg.Logging)
		diag.SetSink(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (defaults applied when omitted)")
	rootCmd.AddCommand(starfmCmd, fitfcCmd, staarchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
