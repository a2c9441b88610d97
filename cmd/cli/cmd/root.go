// Package cmd provides the CLI commands for multirisk.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"multirisk/internal/config"
	"multirisk/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "multirisk",
	Short: "Update exposure damage states and losses across hazard passes",
	Long: `multirisk propagates an exposure model of buildings through hazard
intensity fields, shifting building counts across damage states and pricing
the resulting loss. Runs chain: the updated exposure of one hazard pass is
the input of the next, so damage accumulates across a cascading scenario.

Examples:
  multirisk update --intensity shaking.json --exposure exposure.json --fragility eq.json
  multirisk cascade scenario.hcl
  multirisk cascade --format json scenario.hcl`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.multirisk.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(cascadeCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	// Initialize logging
	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("multirisk version 0.1.0")
	},
}
