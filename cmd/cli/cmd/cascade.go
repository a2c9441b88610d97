// Package cmd - cascade command
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"multirisk/adapters/exposurefile"
	"multirisk/adapters/fragilityfile"
	"multirisk/adapters/intensityfile"
	"multirisk/adapters/lossfile"
	"multirisk/adapters/mappingfile"
	"multirisk/core/scenario"
	"multirisk/internal/config"
	"multirisk/internal/logging"
)

var (
	cascadeFormat  string
	cascadeOutput  string
	cascadeWorkers int
)

// cascadeCmd represents the cascade command
var cascadeCmd = &cobra.Command{
	Use:   "cascade [scenario file]",
	Short: "Run a multi-hazard cascade scenario",
	Long: `Run the hazard passes of an HCL scenario file in order, threading the
updated exposure of each pass into the next one.

Examples:
  multirisk cascade scenario.hcl
  multirisk cascade --format json --output final_exposure.json scenario.hcl`,
	Args: cobra.ExactArgs(1),
	RunE: runCascade,
}

func init() {
	cascadeCmd.Flags().StringVarP(&cascadeFormat, "format", "f", "", "report format (text, json)")
	cascadeCmd.Flags().StringVarP(&cascadeOutput, "output", "o", "", "final exposure output file")
	cascadeCmd.Flags().IntVar(&cascadeWorkers, "workers", 0, "parallel cell workers (default: number of CPUs)")
}

func runCascade(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Get()

	path := args[0]
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("scenario file does not exist: %s", path)
	}

	sc, err := scenario.Load(path)
	if err != nil {
		return err
	}

	logging.Info("starting cascade",
		zap.String("scenario", sc.Name),
		zap.Int("hazards", len(sc.Hazards)))

	runner := scenario.NewRunner(scenario.Loaders{
		Exposure:  exposurefile.Load,
		Fragility: fragilityfile.Load,
		Mapping:   mappingfile.LoadSingle,
		Loss:      lossfile.Load,
		Intensity: intensityfile.Load,
	}, workersOrDefault(cascadeWorkers))

	report, err := runner.Run(ctx, sc)
	if err != nil {
		return err
	}

	if cascadeOutput != "" {
		if err := exposurefile.Write(cascadeOutput, report.Final); err != nil {
			return err
		}
	}
	return renderReport(report, cascadeFormat, cfg)
}
