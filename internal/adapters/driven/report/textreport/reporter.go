// Package textreport renders a comparison run as a terminal summary
// followed by the correspondences that need review.
package textreport

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driven"
)

// Format is the report format name.
const Format = "text"

// Ensure Reporter implements the interface.
var _ driven.Reporter = (*Reporter)(nil)

// Quality index bands used for colouring.
const (
	goodQuality = 0.8
	fairQuality = 0.5
)

// Reporter writes a human-readable summary.
type Reporter struct {
	styles      *Styles
	minSeverity domain.Severity
	maxFindings int
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithStyles sets the styles, e.g. PlainStyles for non-terminal output.
func WithStyles(styles *Styles) Option {
	return func(r *Reporter) {
		if styles != nil {
			r.styles = styles
		}
	}
}

// WithMinSeverity hides findings ranked below sev.
func WithMinSeverity(sev domain.Severity) Option {
	return func(r *Reporter) {
		if sev.IsValid() {
			r.minSeverity = sev
		}
	}
}

// WithMaxFindings caps the number of findings listed. Zero lists all.
func WithMaxFindings(n int) Option {
	return func(r *Reporter) {
		if n >= 0 {
			r.maxFindings = n
		}
	}
}

// New creates a text reporter. Findings of minor severity and above are listed.
func New(opts ...Option) *Reporter {
	r := &Reporter{
		styles:      NewStyles(nil),
		minSeverity: domain.SeverityMinor,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Format returns "text".
func (r *Reporter) Format() string {
	return Format
}

// Render writes the summary and findings for run to w.
func (r *Reporter) Render(w io.Writer, run *domain.ComparisonRun) error {
	if run == nil {
		return fmt.Errorf("%w: no run to render", domain.ErrInvalidInput)
	}

	var b strings.Builder
	st := r.styles
	sum := &run.Summary

	b.WriteString(st.Title.Render("Parity report "+run.ID) + "\n")
	r.row(&b, "Source", run.SourceURI)
	r.row(&b, "Target", run.TargetURI)
	if !run.CreatedAt.IsZero() {
		r.row(&b, "Created", run.CreatedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	}
	b.WriteString("\n")

	r.row(&b, "Quality index", fmt.Sprintf("%s  %s",
		r.quality(sum.QualityIndex),
		st.Muted.Render(fmt.Sprintf("(base %.3f x coverage %.3f)", sum.QualityIndexBase, sum.Coverage))))
	r.row(&b, "Blocks", fmt.Sprintf("source %d, target %d, malformed %d",
		sum.SourceBlocks, sum.TargetBlocks, sum.MalformedBlocks))

	counts := make([]string, 0, len(domain.AllStatuses()))
	for _, status := range domain.AllStatuses() {
		counts = append(counts, fmt.Sprintf("%s %d", status, sum.Counts[status]))
	}
	r.row(&b, "Alignment", strings.Join(counts, ", "))

	if metrics := metricOrder(run); len(metrics) > 0 {
		scores := make([]string, 0, len(metrics))
		for _, name := range metrics {
			scores = append(scores, fmt.Sprintf("%s %.3f", name, sum.Overall[name]))
		}
		r.row(&b, "Metrics", strings.Join(scores, ", "))
	}

	findings := r.findings(run)
	b.WriteString("\n")
	b.WriteString(st.Label.Render(fmt.Sprintf("Findings (%d)", len(findings))) + "\n")
	shown := findings
	if r.maxFindings > 0 && len(shown) > r.maxFindings {
		shown = shown[:r.maxFindings]
	}
	for _, c := range shown {
		b.WriteString(r.finding(c) + "\n")
	}
	if len(shown) < len(findings) {
		b.WriteString(st.Muted.Render(fmt.Sprintf("  ... %d more", len(findings)-len(shown))) + "\n")
	}
	if len(findings) == 0 {
		b.WriteString(st.Muted.Render("  none at "+string(r.minSeverity)+" or above") + "\n")
	}

	if len(sum.Issues) > 0 {
		b.WriteString("\n")
		b.WriteString(st.Label.Render(fmt.Sprintf("Run issues (%d)", len(sum.Issues))) + "\n")
		for _, issue := range sum.Issues {
			b.WriteString("  - " + issue + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Reporter) row(b *strings.Builder, label, value string) {
	b.WriteString(r.styles.Label.Render(fmt.Sprintf("%-14s", label)) + " " + value + "\n")
}

func (r *Reporter) quality(qi float64) string {
	text := fmt.Sprintf("%.3f", qi)
	switch {
	case qi >= goodQuality:
		return r.styles.Good.Render(text)
	case qi >= fairQuality:
		return r.styles.Fair.Render(text)
	default:
		return r.styles.Poor.Render(text)
	}
}

// findings returns the correspondences at or above the minimum severity,
// most severe first, in run order within a severity.
func (r *Reporter) findings(run *domain.ComparisonRun) []*domain.Correspondence {
	var out []*domain.Correspondence
	for i := range run.Correspondences {
		c := &run.Correspondences[i]
		if effectiveSeverity(c).Rank() >= r.minSeverity.Rank() {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return effectiveSeverity(out[i]).Rank() > effectiveSeverity(out[j]).Rank()
	})
	return out
}

func (r *Reporter) finding(c *domain.Correspondence) string {
	sev := effectiveSeverity(c)
	line := fmt.Sprintf("  %s %-17s %s -> %s",
		r.styles.severity(sev).Render(fmt.Sprintf("%-8s", sev)),
		c.Status, ref(c.SourceRef), ref(c.TargetRef))
	if c.Status.IsMatched() {
		line += r.styles.Muted.Render(fmt.Sprintf("  sim %.2f", c.Similarity))
	}
	if c.Table != nil {
		line += r.styles.Muted.Render("  table " + c.Table.Summary())
	}
	if len(c.Issues) > 0 {
		line += "  " + strings.Join(c.Issues, "; ")
	}
	return line
}

// effectiveSeverity ranks unclassified correspondences by status.
func effectiveSeverity(c *domain.Correspondence) domain.Severity {
	if c.Severity.IsValid() {
		return c.Severity
	}
	switch {
	case c.Status == domain.StatusMissing || c.Status == domain.StatusExtra:
		return domain.SeverityMajor
	case c.Status == domain.StatusPartial || len(c.Issues) > 0:
		return domain.SeverityMinor
	default:
		return domain.SeverityInfo
	}
}

// metricOrder lists metrics in settings order, then any others sorted.
func metricOrder(run *domain.ComparisonRun) []string {
	seen := make(map[string]bool, len(run.Summary.Overall))
	var names []string
	for _, name := range run.Settings.Metrics {
		if _, ok := run.Summary.Overall[name]; ok && !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range run.Summary.Overall {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func ref(id *string) string {
	if id == nil {
		return "-"
	}
	return *id
}
