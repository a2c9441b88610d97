// Package cmd - update command
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"multirisk/adapters/exposurefile"
	"multirisk/adapters/fragilityfile"
	"multirisk/adapters/intensityfile"
	"multirisk/adapters/lossfile"
	"multirisk/adapters/mappingfile"
	"multirisk/core/engine"
	"multirisk/core/intensity"
	"multirisk/core/output"
	"multirisk/core/scenario"
	"multirisk/internal/config"
	"multirisk/internal/logging"
)

var (
	updateIntensity     string
	updateIntensityKind string
	updateExposure      string
	updateFragility     string
	updateMapping       string
	updateLoss          string
	updateAliases       []string
	updateOutput        string
	updateFormat        string
	updateWorkers       int
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Run a single hazard pass over an exposure model",
	Long: `Apply one hazard intensity field to an exposure model, shifting
building counts across damage states and computing the resulting loss.

The updated exposure is written out and can be fed into a subsequent pass.

Examples:
  multirisk update --intensity shaking.json --exposure exposure.json --fragility eq_fragility.json
  multirisk update --intensity wave.json --intensity-kind grid --alias ID=MWH \
    --exposure output_merged.json --fragility ts_fragility.json --mapping sara_to_suppasri.json`,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().StringVar(&updateIntensity, "intensity", "", "resolved intensity file (required)")
	updateCmd.Flags().StringVar(&updateIntensityKind, "intensity-kind", "points", "intensity file kind (grid, points)")
	updateCmd.Flags().StringVar(&updateExposure, "exposure", "", "exposure model file (required)")
	updateCmd.Flags().StringVar(&updateFragility, "fragility", "", "fragility function file (required)")
	updateCmd.Flags().StringVar(&updateMapping, "mapping", "", "schema mapping file, when exposure and fragility schemas differ")
	updateCmd.Flags().StringVar(&updateLoss, "loss", "", "loss ratio file")
	updateCmd.Flags().StringArrayVar(&updateAliases, "alias", nil, "intensity field alias ALIAS=FIELD[,FIELD...], repeatable")
	updateCmd.Flags().StringVarP(&updateOutput, "output", "o", "output_merged.json", "updated exposure output file")
	updateCmd.Flags().StringVarP(&updateFormat, "format", "f", "", "report format (text, json)")
	updateCmd.Flags().IntVar(&updateWorkers, "workers", 0, "parallel cell workers (default: number of CPUs)")

	_ = updateCmd.MarkFlagRequired("intensity")
	_ = updateCmd.MarkFlagRequired("exposure")
	_ = updateCmd.MarkFlagRequired("fragility")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Get()

	model, err := exposurefile.Load(updateExposure)
	if err != nil {
		return err
	}
	set, err := fragilityfile.Load(updateFragility)
	if err != nil {
		return err
	}
	provider, err := intensityfile.Load(updateIntensityKind, updateIntensity)
	if err != nil {
		return err
	}
	aliases, err := parseAliases(updateAliases)
	if err != nil {
		return err
	}
	if aliases != nil {
		provider = intensity.NewAliasProvider(provider, aliases)
	}

	input := engine.PassInput{
		Hazard:    "update",
		Exposure:  model,
		Intensity: provider,
		Fragility: set,
		Workers:   workersOrDefault(updateWorkers),
	}
	if updateMapping != "" {
		table, err := mappingfile.LoadSingle(updateMapping)
		if err != nil {
			return err
		}
		input.Mapping = table
	}
	if updateLoss != "" {
		ratios, err := lossfile.Load(updateLoss)
		if err != nil {
			return err
		}
		input.Loss = ratios
	}

	logging.Info("starting hazard pass",
		zap.String("exposure", updateExposure),
		zap.String("intensity", updateIntensity),
		zap.Int("cells", len(model.Cells)))

	result, err := engine.Run(ctx, input)
	if err != nil {
		return err
	}

	if err := exposurefile.Write(updateOutput, result.Exposure); err != nil {
		return err
	}

	report := &scenario.Report{
		Passes: []scenario.PassReport{{Hazard: "update", Summary: result.Summary, Cells: result.Cells}},
		Final:  result.Exposure,
	}
	return renderReport(report, updateFormat, cfg)
}

func parseAliases(flags []string) (map[string][]string, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	aliases := make(map[string][]string, len(flags))
	for _, flag := range flags {
		name, sources, ok := strings.Cut(flag, "=")
		if !ok || name == "" || sources == "" {
			return nil, fmt.Errorf("invalid alias %q, want ALIAS=FIELD[,FIELD...]", flag)
		}
		aliases[strings.ToUpper(name)] = strings.Split(strings.ToUpper(sources), ",")
	}
	return aliases, nil
}

func workersOrDefault(flag int) int {
	if flag > 0 {
		return flag
	}
	return config.Get().Engine.Workers
}

func renderReport(report *scenario.Report, formatFlag string, cfg *config.Config) error {
	format := cfg.Output.DefaultFormat
	if formatFlag != "" {
		format = formatFlag
	}
	return output.Render(os.Stdout, output.Format(format), report, output.Options{
		ShowTransitions: cfg.Output.ShowTransitions,
		ShowCells:       cfg.Output.ShowCells,
	})
}
