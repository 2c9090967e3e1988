package normalize

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Rules configure the street name normalization.
type Rules struct {
	// Mapping translates abbreviated street types to their canonical form.
	// Keys are matched exactly and case-sensitive.
	Mapping map[string]string `yaml:"mapping"`

	// Expected lists accepted street types. Only used for auditing.
	Expected []string `yaml:"expected"`

	// Directions lists mapped values that are cardinal directions.
	Directions []string `yaml:"directions"`

	// NormalizeBeforeDirection also normalizes the street type in front of
	// a replaced direction ("Wonderland Rd S" -> "Wonderland Road South").
	// Disabled by default, existing exports keep "Wonderland Rd South".
	NormalizeBeforeDirection bool `yaml:"normalize_before_direction"`
}

// DefaultRules returns a new copy of the built-in rules.
func DefaultRules() Rules {
	return Rules{
		Mapping: map[string]string{
			"St":   "Street",
			"St.":  "Street",
			"Rd":   "Road",
			"Rd.":  "Road",
			"Ave":  "Avenue",
			"Ave.": "Avenue",
			"S":    "South",
			"N":    "North",
			"E":    "East",
			"W":    "West",
		},
		Expected: []string{
			"Street", "Avenue", "Boulevard", "Drive", "Court", "Place", "Square",
			"Lane", "Road", "Trail", "Parkway", "Commons",
		},
		Directions: []string{"North", "South", "East", "West"},
	}
}

// LoadRules reads rules from a YAML file. Sections missing in the file
// are taken from DefaultRules.
func LoadRules(filename string) (Rules, error) {
	b, err := ioutil.ReadFile(filename)
	if err != nil {
		return Rules{}, errors.Wrap(err, "reading rules")
	}
	return ParseRules(b)
}

func ParseRules(b []byte) (Rules, error) {
	rules := Rules{}
	if err := yaml.UnmarshalStrict(b, &rules); err != nil {
		return Rules{}, errors.Wrap(err, "parsing rules")
	}
	defaults := DefaultRules()
	if rules.Mapping == nil {
		rules.Mapping = defaults.Mapping
	}
	if rules.Expected == nil {
		rules.Expected = defaults.Expected
	}
	if rules.Directions == nil {
		rules.Directions = defaults.Directions
	}
	for k, v := range rules.Mapping {
		if k == "" || v == "" {
			return Rules{}, errors.Errorf("invalid mapping %q: %q", k, v)
		}
	}
	return rules, nil
}
