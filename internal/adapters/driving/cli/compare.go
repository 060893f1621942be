package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driving"
)

// ErrQualityBelow is returned when --fail-under is set and the quality index is lower.
var ErrQualityBelow = errors.New("quality index below threshold")

var compareOpts struct {
	srcFormat   string
	tgtFormat   string
	format      string
	output      string
	save        bool
	high        float64
	review      float64
	window      int
	tolerance   int
	metrics     string
	timeout     time.Duration
	minSeverity string
	maxFindings int
	failUnder   float64
}

var compareCmd = &cobra.Command{
	Use:   "compare <source> <target>",
	Short: "Compare a document with its translation",
	Long: `Extracts both documents into blocks, aligns them section by section and
scores every matched pair.

The input format is chosen from the file extension; use --src-format and
--tgt-format to force an extractor. Flags such as --high or --window override
the stored settings for this run only.

Examples:
  parity compare manual_en.pdf manual_de.pdf
  parity compare en.md de.md --format json --output run.json
  parity compare en.html de.html --save --fail-under 0.7`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	f := compareCmd.Flags()
	f.StringVar(&compareOpts.srcFormat, "src-format", "", "force the source extractor")
	f.StringVar(&compareOpts.tgtFormat, "tgt-format", "", "force the target extractor")
	f.StringVarP(&compareOpts.format, "format", "f", "text", "report format (text, json)")
	f.StringVarP(&compareOpts.output, "output", "o", "", "write the report to a file")
	f.BoolVar(&compareOpts.save, "save", false, "store the run for later browsing")
	f.Float64Var(&compareOpts.high, "high", 0, "high similarity threshold")
	f.Float64Var(&compareOpts.review, "review", 0, "review similarity threshold")
	f.IntVar(&compareOpts.window, "window", 0, "position window for unanchored blocks")
	f.IntVar(&compareOpts.tolerance, "tolerance", 0, "allowed table row/column count difference")
	f.StringVar(&compareOpts.metrics, "metrics", "", "comma-separated metrics, equally weighted")
	f.DurationVar(&compareOpts.timeout, "timeout", 0, "abort the run after this long")
	f.StringVar(&compareOpts.minSeverity, "min-severity", string(domain.SeverityMinor), "lowest severity listed in text reports")
	f.IntVar(&compareOpts.maxFindings, "max-findings", 0, "maximum findings listed in text reports (0 = all)")
	f.Float64Var(&compareOpts.failUnder, "fail-under", 0, "exit with status 2 when the quality index is lower")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	if comparisonService == nil {
		return errors.New("comparison service not configured")
	}

	for _, format := range []string{compareOpts.srcFormat, compareOpts.tgtFormat} {
		if err := checkFormat(format); err != nil {
			return err
		}
	}

	settings, err := compareOverrides(cmd)
	if err != nil {
		return err
	}

	minSeverity, ok := domain.ParseSeverity(compareOpts.minSeverity)
	if !ok {
		return fmt.Errorf("%w: unknown severity %q", domain.ErrInvalidInput, compareOpts.minSeverity)
	}

	run, err := comparisonService.CompareFiles(cmd.Context(), driving.CompareRequest{
		SourcePath:   args[0],
		TargetPath:   args[1],
		SourceFormat: compareOpts.srcFormat,
		TargetFormat: compareOpts.tgtFormat,
		Settings:     settings,
		Save:         compareOpts.save,
	})
	if run == nil {
		return fmt.Errorf("compare failed: %w", err)
	}
	if err != nil {
		cmd.PrintErrf("Warning: %v\n", err)
	} else if compareOpts.save {
		cmd.PrintErrf("Saved run %s\n", run.ID)
	}

	if err := writeReport(cmd, run, compareOpts.format, compareOpts.output, ReportOptions{
		MinSeverity: minSeverity,
		MaxFindings: compareOpts.maxFindings,
	}); err != nil {
		return err
	}

	if compareOpts.failUnder > 0 && run.Summary.QualityIndex < compareOpts.failUnder {
		return fmt.Errorf("%w: %.3f < %.3f", ErrQualityBelow, run.Summary.QualityIndex, compareOpts.failUnder)
	}
	return nil
}

// checkFormat rejects an extractor name that is not registered.
func checkFormat(format string) error {
	if format == "" || len(extractorFormats) == 0 || slices.Contains(extractorFormats, format) {
		return nil
	}
	return fmt.Errorf("%w: input format %q (available: %s)",
		domain.ErrUnsupportedType, format, strings.Join(extractorFormats, ", "))
}

// compareOverrides returns nil when no settings flag was given.
func compareOverrides(cmd *cobra.Command) (*domain.CompareSettings, error) {
	flags := cmd.Flags()
	changed := false
	for _, name := range []string{"high", "review", "window", "tolerance", "metrics", "timeout"} {
		if flags.Changed(name) {
			changed = true
		}
	}
	if !changed {
		return nil, nil
	}

	base := domain.DefaultCompareSettings()
	if settingsService != nil {
		stored, err := settingsService.Get()
		if err != nil {
			return nil, fmt.Errorf("failed to get settings: %w", err)
		}
		base = stored.Clone()
	}

	if flags.Changed("high") {
		base.HighThreshold = compareOpts.high
	}
	if flags.Changed("review") {
		base.ReviewThreshold = compareOpts.review
	}
	if flags.Changed("window") {
		base.Window = compareOpts.window
	}
	if flags.Changed("tolerance") {
		base.TableTolerance = compareOpts.tolerance
	}
	if flags.Changed("timeout") {
		base.Timeout = compareOpts.timeout
	}
	if flags.Changed("metrics") {
		var names []string
		for _, name := range strings.Split(compareOpts.metrics, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		base.Metrics = names
		base.Weights = make(map[string]float64, len(names))
		for _, name := range names {
			base.Weights[name] = 1 / float64(len(names))
		}
	}
	return &base, nil
}

// writeReport renders run to --output or the command's stdout.
func writeReport(cmd *cobra.Command, run *domain.ComparisonRun, format, output string, opts ReportOptions) error {
	if reporters == nil {
		return errors.New("reporters not configured")
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		opts.Color = !globalOpts.NoColor && colorEnabled(w)
	}

	reporter, err := reporters(format, opts)
	if err != nil {
		return err
	}
	if err := reporter.Render(w, run); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	if output != "" {
		cmd.PrintErrf("Report written to %s\n", output)
	}
	return nil
}

// colorEnabled reports whether w is an interactive terminal that accepts colour.
func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
