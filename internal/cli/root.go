package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

// NewRootCommand builds the geotrack command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "geotrack",
		Short: "Track and record the device location",
		Long: `geotrack reads the device position from a GPS receiver, the Google
Geolocation API or a fixed coordinate, keeps a persistent history of every
fix and shows the latest position on a map.

Run "geotrack ui" for the interactive tracker or "geotrack run" for the
headless agent that publishes fixes to MQTT.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "path to the configuration file")

	rootCmd.AddCommand(newUICommand())
	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newHistoryCommand())
	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
