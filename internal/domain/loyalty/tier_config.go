package loyalty

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// tierFile is the on-disk layout of a tier table:
//
//	tiers:
//	  - tier: bronze
//	    display_name: Bronze
//	    min_spending: 0
//	    multiplier: 1.0
//	    benefits: ["Member-only rates"]
type tierFile struct {
	Tiers []TierConfig `yaml:"tiers"`
}

// LoadTierTable reads a YAML tier table from path. An empty path yields the defaults.
func LoadTierTable(path string) (*TierTable, error) {
	if path == "" {
		return DefaultTierTable(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tier config %s: %w", path, err)
	}
	return ParseTierTable(data)
}

// ParseTierTable builds a table from YAML bytes
func ParseTierTable(data []byte) (*TierTable, error) {
	var f tierFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing tier config: %w", err)
	}
	return NewTierTable(f.Tiers)
}
