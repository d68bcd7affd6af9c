package roles

import (
	"context"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/san-import-cli/internal/model"
)

// Rule maps a WWPN prefix (vendor OUI or site naming convention) to a role.
// Prefixes are compared against the canonical colon-grouped form.
type Rule struct {
	Prefix string     `yaml:"prefix"`
	Role   model.Role `yaml:"role"`
}

// ruleFile is the on-disk shape of a rules document.
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// RuleClassifier resolves roles from a static prefix rule list. Longest
// matching prefix wins so a site can override a broad vendor rule for a
// specific array.
type RuleClassifier struct {
	rules []Rule
}

// NewRuleClassifier builds a classifier from an explicit rule list.
func NewRuleClassifier(rules []Rule) (*RuleClassifier, error) {
	for _, r := range rules {
		switch r.Role {
		case model.RoleInitiator, model.RoleTarget, model.RoleBoth:
		default:
			return nil, eris.Errorf("roles: invalid role %q for prefix %q", r.Role, r.Prefix)
		}
	}
	return &RuleClassifier{rules: rules}, nil
}

// LoadRules reads a YAML rule file and builds a classifier.
func LoadRules(path string) (*RuleClassifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "roles: read rules %s", path)
	}

	var f ruleFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, eris.Wrapf(err, "roles: parse rules %s", path)
	}
	return NewRuleClassifier(f.Rules)
}

// Classify matches the WWPN against the rule prefixes. Never returns an
// error; an empty rule set just never matches.
func (c *RuleClassifier) Classify(_ context.Context, wwpn string) (model.Role, bool, error) {
	norm, err := model.NormalizeWWPN(wwpn)
	if err != nil {
		return "", false, nil
	}

	var (
		best    Rule
		bestLen = -1
	)
	for _, r := range c.rules {
		p := strings.ToLower(r.Prefix)
		if strings.HasPrefix(norm, p) && len(p) > bestLen {
			best = r
			bestLen = len(p)
		}
	}
	if bestLen < 0 {
		return "", false, nil
	}
	return best.Role, true, nil
}
