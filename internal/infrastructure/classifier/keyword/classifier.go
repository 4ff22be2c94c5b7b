package keyword

import (
	"strings"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
)

// Rule maps a cause to the keywords that select it.
type Rule struct {
	Cause    domain.CauseLabel
	Keywords []string
}

// DefaultRules is the priority chain: the first rule with a matching keyword wins.
var DefaultRules = []Rule{
	{Cause: domain.CauseContractBreach, Keywords: []string{"breach", "violation", "non-compliance", "non compliance"}},
	{Cause: domain.CausePrivacyViolation, Keywords: []string{"privacy", "gdpr", "data protection", "personal data"}},
	{Cause: domain.CauseIPInfringement, Keywords: []string{"intellectual property", "copyright", "patent", "trademark"}},
	{Cause: domain.CauseFraud, Keywords: []string{"fraud", "misrepresentation", "deceptive"}},
	{Cause: domain.CauseLiabilityIssues, Keywords: []string{"liability", "damages", "indemnity", "warranty"}},
	{Cause: domain.CausePaymentTerms, Keywords: []string{"payment", "fee", "price", "invoice"}},
	{Cause: domain.CauseConfidentiality, Keywords: []string{"confidential", "nda", "non-disclosure", "secret"}},
}

type Classifier struct {
	rules []Rule
}

func New(rules []Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	normalized := make([]Rule, 0, len(rules))
	for _, r := range rules {
		keywords := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		normalized = append(normalized, Rule{Cause: r.Cause, Keywords: keywords})
	}
	return &Classifier{rules: normalized}
}

func (c *Classifier) Classify(text string) domain.CauseLabel {
	if text == "" {
		return domain.CauseGeneralCompliance
	}
	lower := strings.ToLower(text)
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Cause
			}
		}
	}
	return domain.CauseGeneralCompliance
}

func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}
