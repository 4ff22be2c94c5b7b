package keyword

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
)

type rulesFile struct {
	Rules []struct {
		Cause    string   `yaml:"cause"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"rules"`
}

// LoadRules reads an ordered rule list from a YAML file. The order of the
// entries in the file is the classification priority.
func LoadRules(path string) ([]Rule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read classifier rules: %w", err)
	}
	return ParseRules(raw)
}

func ParseRules(raw []byte) ([]Rule, error) {
	var file rulesFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode classifier rules: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("classifier rules: no rules defined")
	}

	seen := make(map[domain.CauseLabel]bool, len(file.Rules))
	out := make([]Rule, 0, len(file.Rules))
	for i, r := range file.Rules {
		cause, err := domain.ParseCauseLabel(r.Cause)
		if err != nil {
			return nil, fmt.Errorf("classifier rule %d: %w", i, err)
		}
		if cause == domain.CauseGeneralCompliance {
			return nil, fmt.Errorf("classifier rule %d: %q is the fallback and takes no keywords", i, cause)
		}
		if seen[cause] {
			return nil, fmt.Errorf("classifier rule %d: duplicate cause %q", i, cause)
		}
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("classifier rule %d: cause %q has no keywords", i, cause)
		}
		seen[cause] = true
		out = append(out, Rule{Cause: cause, Keywords: r.Keywords})
	}
	return out, nil
}
