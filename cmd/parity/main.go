// Command parity aligns a document with its translation and scores it.
package main

import (
	"fmt"

	"github.com/custodia-labs/parity-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/parity-cli/internal/adapters/driven/report"
	"github.com/custodia-labs/parity-cli/internal/adapters/driven/report/jsonreport"
	"github.com/custodia-labs/parity-cli/internal/adapters/driven/report/textreport"
	"github.com/custodia-labs/parity-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/parity-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driven"
	"github.com/custodia-labs/parity-cli/internal/core/services"
	"github.com/custodia-labs/parity-cli/internal/extractors"
	"github.com/custodia-labs/parity-cli/internal/logger"
	"github.com/custodia-labs/parity-cli/internal/metrics"
)

func main() {
	cli.SetInitializer(wire)
	cli.Main()
}

// wire builds the stores, registries and services.
func wire(opts cli.GlobalOptions) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	logger.Debug("config: %s", configStore.Path())

	store, err := sqlite.NewStore(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening run database: %w", err)
	}
	logger.Debug("run database: %s", store.Path())

	extractorRegistry := extractors.NewRegistry()
	extractors.RegisterDefaults(extractorRegistry)

	metricRegistry := metrics.NewRegistry()
	metrics.RegisterDefaults(metricRegistry)

	runStore := store.RunStore()
	settingsService := services.NewSettingsService(configStore)

	return &cli.Services{
		Comparison: services.NewComparisonService(extractorRegistry, metricRegistry, runStore, settingsService),
		Runs:       services.NewRunService(runStore),
		Settings:   settingsService,
		Reporters:  newReporter,
		Formats:    extractorRegistry.Formats(),
		Close:      store.Close,
	}, nil
}

// newReporter builds the reporter for format with per-command options.
func newReporter(format string, opts cli.ReportOptions) (driven.Reporter, error) {
	styles := textreport.PlainStyles()
	if opts.Color {
		styles = textreport.NewStyles(nil)
	}

	registry := report.NewRegistry(
		jsonreport.New(),
		textreport.New(
			textreport.WithStyles(styles),
			textreport.WithMinSeverity(opts.MinSeverity),
			textreport.WithMaxFindings(opts.MaxFindings),
		),
	)
	return registry.Get(format)
}
