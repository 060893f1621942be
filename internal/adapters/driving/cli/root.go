// Package cli provides the cobra command tree of the parity binary.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driven"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driving"
	"github.com/custodia-labs/parity-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// GlobalOptions are the persistent flags every command shares.
type GlobalOptions struct {
	// ConfigDir holds config.toml. Empty means ~/.parity.
	ConfigDir string

	// DataDir holds the run database. Empty means ~/.parity/data.
	DataDir string

	// Verbose enables debug logging.
	Verbose bool

	// NoColor disables styled output.
	NoColor bool
}

// ReportOptions tune the reporter built for one command.
type ReportOptions struct {
	// Color enables styled output.
	Color bool

	// MinSeverity hides text findings ranked below it.
	MinSeverity domain.Severity

	// MaxFindings caps the findings listed. Zero lists all.
	MaxFindings int
}

// ReporterFactory builds the reporter for a format name.
type ReporterFactory func(format string, opts ReportOptions) (driven.Reporter, error)

// Services holds everything the commands call into.
type Services struct {
	Comparison driving.ComparisonService
	Runs       driving.RunService
	Settings   driving.SettingsService
	Reporters  ReporterFactory

	// Formats lists the extractor names accepted by --src-format.
	Formats []string

	// Close releases stores. Optional.
	Close func() error
}

// Initializer builds the services once the global flags are parsed.
type Initializer func(opts GlobalOptions) (*Services, error)

var (
	globalOpts  GlobalOptions
	initializer Initializer

	comparisonService driving.ComparisonService
	runService        driving.RunService
	settingsService   driving.SettingsService
	reporters         ReporterFactory
	extractorFormats  []string
	closeServices     func() error
)

var rootCmd = &cobra.Command{
	Use:   "parity",
	Short: "Align and score translated documents",
	Long: `Parity aligns a source document with its translation block by block,
scores every pair with translation-quality metrics and reports what is
missing, extra or needs review.

Supported inputs: Markdown, HTML, PDF, DOCX, plain text and JSON/YAML block files.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initServices,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return shutdownServices()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&globalOpts.Verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&globalOpts.ConfigDir, "config-dir", "", "configuration directory (default ~/.parity)")
	flags.BoolVar(&globalOpts.NoColor, "no-color", false, "disable styled output")
	flags.StringVar(&globalOpts.DataDir, "data-dir", "", "run database directory (default ~/.parity/data)")
}

// SetServices installs the services directly, bypassing the initializer.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	comparisonService = s.Comparison
	runService = s.Runs
	settingsService = s.Settings
	reporters = s.Reporters
	extractorFormats = s.Formats
	closeServices = s.Close
}

// SetInitializer registers the function that wires services after flag parsing.
func SetInitializer(fn Initializer) {
	initializer = fn
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func initServices(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(globalOpts.Verbose)

	if initializer == nil || comparisonService != nil {
		return nil
	}

	s, err := initializer(globalOpts)
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	SetServices(s)
	return nil
}

func shutdownServices() error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}

// Exit codes.
const (
	exitError        = 1
	exitQualityBelow = 2
	exitInvalidInput = 3
)

// ExitCode maps an error from Execute to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrQualityBelow):
		return exitQualityBelow
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidConfig),
		errors.Is(err, domain.ErrUnsupportedType):
		return exitInvalidInput
	default:
		return exitError
	}
}

// Main executes the command tree and exits.
func Main() {
	err := Execute()
	if err != nil {
		logger.Error("%v", err)
	}
	if cerr := shutdownServices(); cerr != nil {
		logger.Error("closing: %v", cerr)
	}
	os.Exit(ExitCode(err))
}
