package circstat

import (
	"fmt"
	"strconv"
)

// Statistic names. They are stable keys for export; keep the spelling.
const (
	NameN                    = "N"
	NameUnidirectional       = "Unidirectional Statistics"
	NameBidirectional        = "Bidirectional Statistics"
	NameXVector              = "X Vector"
	NameXVectorStandard      = "X Vector Standarized"
	NameYVector              = "Y Vector"
	NameYVectorStandard      = "Y Vector Standarized"
	NameResultantLength      = "Resultant Length (R)"
	NameMeanResultantLength  = "Mean Resultant Length (R-Bar)"
	NameMeanDirection        = "Mean Direction"
	NameCircularVariance     = "Circular Varience"
	NameRayleighZ            = "Rayleigh's Z"
	NameKappa                = "Kappa (κ)"
	NameAngularStandardError = "Angular Standard Error"
	NameConfidence95         = "95% Confidence Interval (±)"
	NameConfidence99         = "99% Confidence Interval (±)"
	NameChiSquared           = "Chi-Squared (χ²)"
	NameChiSquaredFreedom    = "Chi-Squared Degrees of Freedom"
	SectionUnidirectional    = "unidirectional"
	SectionBidirectional     = "bidirectional"
)

var asciiNames = map[string]string{
	NameRayleighZ:    "Rayleighs Z",
	NameKappa:        "Kappa",
	NameConfidence95: "95% Confidence Interval (+/-)",
	NameConfidence99: "99% Confidence Interval (+/-)",
	NameChiSquared:   "Chi-Squared",
}

// Statistic is a named scalar result. Empty statistics carry no value and
// are used for section headers and values that are undefined for the
// sample.
type Statistic struct {
	Name      string  `json:"name"`
	ASCIIName string  `json:"ascii_name"`
	Section   string  `json:"section,omitempty"`
	Value     float64 `json:"value"`
	IsInt     bool    `json:"is_int"`
	Empty     bool    `json:"empty"`
}

// Float creates a floating-point statistic
func Float(name string, v float64) Statistic {
	return Statistic{Name: name, ASCIIName: ASCIIName(name), Value: v}
}

// Int creates an integer statistic
func Int(name string, v int) Statistic {
	return Statistic{Name: name, ASCIIName: ASCIIName(name), Value: float64(v), IsInt: true}
}

// Empty creates a statistic without a value
func Empty(name string) Statistic {
	return Statistic{Name: name, ASCIIName: ASCIIName(name), Empty: true}
}

// ASCIIName returns the export-safe variant of a statistic name.
func ASCIIName(name string) string {
	if s, ok := asciiNames[name]; ok {
		return s
	}
	return name
}

// IntValue returns the payload truncated to an int.
func (s Statistic) IntValue() int {
	return int(s.Value)
}

// ValueString formats the payload the way it is displayed and exported.
func (s Statistic) ValueString() string {
	switch {
	case s.Empty:
		return ""
	case s.IsInt:
		return strconv.Itoa(s.IntValue())
	default:
		return fmt.Sprintf("%.6f", s.Value)
	}
}

func (s Statistic) in(section string) Statistic {
	s.Section = section
	return s
}

// Find returns the first statistic with the given section and name.
// An empty section matches any.
func Find(list []Statistic, section, name string) (Statistic, bool) {
	for _, s := range list {
		if s.Name == name && (section == "" || s.Section == section) {
			return s, true
		}
	}
	return Statistic{}, false
}
