package domain

import "fmt"

// Severity classifies how bad a reported pothole is. The zero value is not a
// valid severity.
type Severity uint8

const (
	SeverityHigh Severity = iota + 1
	SeverityMedium
	SeverityLow
)

// severityWeights amplifies a report's density contribution by severity.
var severityWeights = map[Severity]float64{
	SeverityHigh:   3,
	SeverityMedium: 2,
	SeverityLow:    1,
}

var severityNames = map[Severity]string{
	SeverityHigh:   "high",
	SeverityMedium: "medium",
	SeverityLow:    "low",
}

// ParseSeverity maps "high", "medium" or "low" to a Severity.
func ParseSeverity(s string) (Severity, error) {
	for sev, name := range severityNames {
		if name == s {
			return sev, nil
		}
	}
	return 0, fmt.Errorf("unknown severity %q", s)
}

// Weight returns the density multiplier for the severity, or 0 for an
// invalid value.
func (s Severity) Weight() float64 {
	return severityWeights[s]
}

// Valid reports whether s is one of the defined severities.
func (s Severity) Valid() bool {
	_, ok := severityNames[s]
	return ok
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Severity(%d)", uint8(s))
}

func (s Severity) MarshalText() ([]byte, error) {
	name, ok := severityNames[s]
	if !ok {
		return nil, fmt.Errorf("marshal severity: invalid value %d", uint8(s))
	}
	return []byte(name), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	v, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// SeverityFilter restricts a computation to one severity, or to none.
type SeverityFilter string

const (
	FilterAll    SeverityFilter = "all"
	FilterHigh   SeverityFilter = "high"
	FilterMedium SeverityFilter = "medium"
	FilterLow    SeverityFilter = "low"
)

// SeverityFilters lists every accepted filter in display order.
var SeverityFilters = []SeverityFilter{FilterAll, FilterHigh, FilterMedium, FilterLow}

// ParseSeverityFilter validates a filter string. An empty string means all.
func ParseSeverityFilter(s string) (SeverityFilter, error) {
	if s == "" {
		return FilterAll, nil
	}
	for _, f := range SeverityFilters {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown severity filter %q", s)
}

// Matches reports whether a report of severity s passes the filter.
func (f SeverityFilter) Matches(s Severity) bool {
	if f == FilterAll {
		return true
	}
	return string(f) == severityNames[s]
}
