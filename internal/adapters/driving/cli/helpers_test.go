package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/parity-cli/internal/adapters/driven/report"
	"github.com/custodia-labs/parity-cli/internal/adapters/driven/report/jsonreport"
	"github.com/custodia-labs/parity-cli/internal/adapters/driven/report/textreport"
	"github.com/custodia-labs/parity-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driven"
	"github.com/custodia-labs/parity-cli/internal/core/services"
	"github.com/custodia-labs/parity-cli/internal/extractors"
	"github.com/custodia-labs/parity-cli/internal/metrics"
)

const sourceDoc = `# 1 Safety

Warning: do not open the housing while the device is connected to power.

# 2 Installation

Mount the unit on a flat wall using the supplied brackets.

# 3 Maintenance

Clean the filter every three months.
`

const targetDoc = `# 1 Safety

Warning: do not open the housing while the device is connected to power.

# 2 Installation

Mount the unit on a flat wall using the supplied brackets.
`

// testReporters builds plain reporters so output has no escape sequences.
func testReporters(format string, opts ReportOptions) (driven.Reporter, error) {
	reg := report.NewRegistry(
		jsonreport.New(),
		textreport.New(
			textreport.WithStyles(textreport.PlainStyles()),
			textreport.WithMinSeverity(opts.MinSeverity),
			textreport.WithMaxFindings(opts.MaxFindings),
		),
	)
	return reg.Get(format)
}

// setupTestServices wires real services over in-memory stores.
func setupTestServices() func() {
	extReg := extractors.NewRegistry()
	extractors.RegisterDefaults(extReg)
	metricReg := metrics.NewRegistry()
	metrics.RegisterDefaults(metricReg)

	runStore := memory.NewRunStore()
	settings := services.NewSettingsService(memory.NewConfigStore())

	SetServices(&Services{
		Comparison: services.NewComparisonService(extReg, metricReg, runStore, settings),
		Runs:       services.NewRunService(runStore),
		Settings:   settings,
		Reporters:  testReporters,
		Formats:    extReg.Formats(),
	})

	return func() { SetServices(nil) }
}

// writeDocs writes the sample documents and returns their paths.
func writeDocs(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "manual_en.md")
	tgt := filepath.Join(dir, "manual_de.md")
	require.NoError(t, os.WriteFile(src, []byte(sourceDoc), 0o600))
	require.NoError(t, os.WriteFile(tgt, []byte(targetDoc), 0o600))
	return src, tgt
}

// resetFlags restores every flag in the tree to its default.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns stdout and stderr combined.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
