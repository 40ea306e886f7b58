package mapper

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Policy decides how annotation and geocoding compose.
type Policy string

const (
	// PolicyGeocodeFirst anchors an annotation to the matching token and
	// creates it only when the candidate geocodes.
	PolicyGeocodeFirst Policy = "geocode_first"
	// PolicyAnnotateFirst creates a page-level annotation for every
	// candidate and geocodes all records once every document is processed.
	PolicyAnnotateFirst Policy = "annotate_first"
)

// DefaultPolicy is used when none is configured.
const DefaultPolicy = PolicyGeocodeFirst

// ParsePolicy parses a policy name. An empty name yields DefaultPolicy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultPolicy, nil
	case PolicyGeocodeFirst:
		return PolicyGeocodeFirst, nil
	case PolicyAnnotateFirst:
		return PolicyAnnotateFirst, nil
	default:
		return "", eris.Errorf("mapper: unknown policy %q", s)
	}
}

func (p Policy) String() string { return string(p) }
