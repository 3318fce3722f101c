package family

import (
	"slices"
	"strings"
)

// LabelPrefix is the leading segment of every configuration label.
const LabelPrefix = "SSSP"

const labelSeparator = "/"

// Configuration identifies an SSSP variant. It is comparable and may be
// used as a map key.
type Configuration struct {
	Version    string
	Functional string
	Protocol   string
}

// DefaultConfiguration is installed when no variant is requested.
var DefaultConfiguration = Configuration{Version: "1.1", Functional: "PBE", Protocol: "efficiency"}

var (
	versions    = []string{"1.0", "1.1"}
	functionals = []string{"PBE", "PBEsol"}
	protocols   = []string{"efficiency", "precision"}
)

// Versions returns the published SSSP versions.
func Versions() []string { return slices.Clone(versions) }

// Functionals returns the published exchange-correlation functionals.
func Functionals() []string { return slices.Clone(functionals) }

// Protocols returns the published protocols.
func Protocols() []string { return slices.Clone(protocols) }

// ValidConfigurations returns every installable configuration.
func ValidConfigurations() []Configuration {
	configs := make([]Configuration, 0, len(versions)*len(functionals)*len(protocols))
	for _, v := range versions {
		for _, f := range functionals {
			for _, p := range protocols {
				configs = append(configs, Configuration{Version: v, Functional: f, Protocol: p})
			}
		}
	}
	return configs
}

// ValidLabels returns the label of every installable configuration.
func ValidLabels() []string {
	configs := ValidConfigurations()
	labels := make([]string, len(configs))
	for i, c := range configs {
		labels[i] = FormatLabel(c)
	}
	return labels
}

// Valid reports whether c is one of ValidConfigurations.
func (c Configuration) Valid() bool {
	return slices.Contains(ValidConfigurations(), c)
}

// String returns the label of c.
func (c Configuration) String() string {
	return FormatLabel(c)
}

// FormatLabel returns "SSSP/<version>/<functional>/<protocol>".
// ParseLabel is its exact inverse.
func FormatLabel(c Configuration) string {
	return strings.Join([]string{LabelPrefix, c.Version, c.Functional, c.Protocol}, labelSeparator)
}

// ParseLabel parses a configuration label. Returns a VALIDATION_ERROR if
// the label does not have four segments or does not start with "SSSP".
// Whether the configuration is installable is checked by Valid.
func ParseLabel(label string) (Configuration, error) {
	parts := strings.Split(label, labelSeparator)
	if len(parts) != 4 || parts[0] != LabelPrefix {
		return Configuration{}, &Error{
			Code:    CodeValidationError,
			Message: "the label `" + label + "` is not a valid SSSP configuration label",
			Label:   label,
		}
	}
	return Configuration{Version: parts[1], Functional: parts[2], Protocol: parts[3]}, nil
}
