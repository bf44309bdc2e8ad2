package categorize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"finboard/internal/core"
)

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads an ordered rule list from a YAML file. Every category
// must belong to the closed category set and carry at least one keyword;
// rule order in the file is the evaluation priority. An empty path
// returns the built-in defaults.
func LoadRules(path string) ([]Rule, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	var rf rulesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	if len(rf.Rules) == 0 {
		return nil, fmt.Errorf("rules file %s contains no rules", path)
	}
	for i, r := range rf.Rules {
		if !core.ValidCategory(r.Category) {
			return nil, fmt.Errorf("rules file %s: rule %d has unknown category %q", path, i, r.Category)
		}
		if r.Category == core.CategoryOther {
			return nil, fmt.Errorf("rules file %s: rule %d targets the fallback category", path, i)
		}
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("rules file %s: rule %d has no keywords", path, i)
		}
	}
	return rf.Rules, nil
}
