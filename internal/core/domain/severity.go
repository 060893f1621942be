package domain

// Severity ranks how much attention a correspondence needs in the report.
type Severity string

// Severity levels, lowest first.
const (
	SeverityInfo     Severity = "info"
	SeverityMinor    Severity = "minor"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

// Rank orders severities; unknown values rank lowest.
func (s Severity) Rank() int {
	switch s {
	case SeverityInfo:
		return 1
	case SeverityMinor:
		return 2
	case SeverityMajor:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// IsValid returns true if the severity is recognised.
func (s Severity) IsValid() bool {
	return s.Rank() > 0
}

// String returns the string representation.
func (s Severity) String() string {
	return string(s)
}

// ParseSeverity converts a name into a severity.
func ParseSeverity(name string) (Severity, bool) {
	s := Severity(name)
	return s, s.IsValid()
}
