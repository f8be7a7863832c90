package vocabulary

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Overrides is the YAML document shape accepted by LoadOverrides.
//
//	version: 2025.11-tuned
//	categories:
//	  monitor:
//	    weights:
//	      refresh_rate: 0.3
//	    tolerances:
//	      size: 0.08
type Overrides struct {
	Version    string                      `yaml:"version"`
	Categories map[string]CategoryOverride `yaml:"categories"`
}

// CategoryOverride replaces individual table entries of one category.
// Entries not mentioned keep their built-in values.
type CategoryOverride struct {
	Keywords   []string                       `yaml:"keywords"`
	Weights    map[string]float64             `yaml:"weights"`
	Tolerances map[string]float64             `yaml:"tolerances"`
	Penalties  map[string]float64             `yaml:"penalties"`
	Tiers      map[string]map[string]TierRule `yaml:"tiers"`
	Ranges     map[string]Range               `yaml:"ranges"`
	Prices     *PriceBands                    `yaml:"prices"`
}

// LoadOverrides reads a YAML overrides file and applies it to the registry
func LoadOverrides(r *Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "vocabulary: read overrides %s", path)
	}
	return ApplyOverrides(r, data)
}

// ApplyOverrides merges a YAML overrides document into the registry and
// validates the result. On error the registry may be partially updated.
func ApplyOverrides(r *Registry, data []byte) error {
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return eris.Wrap(err, "vocabulary: parse overrides")
	}

	for _, name := range sortedKeys(o.Categories) {
		if !r.Has(name) {
			return eris.Errorf("vocabulary: overrides reference unknown category %q", name)
		}
		c := r.Category(name)
		co := o.Categories[name]

		if len(co.Keywords) > 0 {
			c.Keywords = co.Keywords
		}
		mergeFloats(c.Weights, co.Weights)
		mergeFloats(c.Tolerances, co.Tolerances)
		mergeFloats(c.Penalties, co.Penalties)
		for feature, tiers := range co.Tiers {
			if c.Tiers[feature] == nil {
				c.Tiers[feature] = make(map[string]TierRule)
			}
			for value, rule := range tiers {
				c.Tiers[feature][value] = rule
			}
		}
		for feature, rng := range co.Ranges {
			c.Ranges[feature] = rng
		}
		if co.Prices != nil {
			c.Prices = *co.Prices
		}
	}

	if o.Version != "" {
		r.version = o.Version
	}
	return r.Validate()
}

func mergeFloats(dst, src map[string]float64) {
	for k, v := range src {
		dst[k] = v
	}
}
