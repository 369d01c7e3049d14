package detect

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/contract-risk/constants"
	"github.com/joseph-ayodele/contract-risk/internal/entity"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Rule is one keyword category.
type Rule struct {
	Type         constants.ClauseType          `yaml:"type"`
	Title        string                        `yaml:"title"`
	Severity     constants.Severity            `yaml:"severity"`
	Keywords     []string                      `yaml:"keywords"`
	Explanations map[constants.Language]string `yaml:"explanations"`
}

// RuleSet is the ordered rule table plus the per-language fallback explanation.
type RuleSet struct {
	Rules    []Rule                        `yaml:"rules"`
	Fallback map[constants.Language]string `yaml:"fallback"`
}

// ParseRuleSet decodes and checks a YAML rule table. Keywords are lower-cased.
func ParseRuleSet(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if len(rs.Rules) == 0 {
		return nil, fmt.Errorf("parse rules: no rules defined")
	}
	for i := range rs.Rules {
		r := &rs.Rules[i]
		r.Title = strings.TrimSpace(r.Title)
		if r.Title == "" {
			return nil, fmt.Errorf("parse rules: rule %d has no title", i)
		}
		typ, ok := constants.CanonicalClauseType(string(r.Type))
		if !ok {
			return nil, fmt.Errorf("parse rules: rule %q has unknown type %q", r.Title, r.Type)
		}
		r.Type = typ
		sev, ok := constants.ParseSeverity(string(r.Severity))
		if !ok {
			return nil, fmt.Errorf("parse rules: rule %q has invalid severity %q", r.Title, r.Severity)
		}
		r.Severity = sev
		kws := r.Keywords[:0]
		for _, kw := range r.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				kws = append(kws, kw)
			}
		}
		if len(kws) == 0 {
			return nil, fmt.Errorf("parse rules: rule %q has no keywords", r.Title)
		}
		r.Keywords = kws
	}
	return &rs, nil
}

// DefaultRuleSet returns the built-in rule table.
func DefaultRuleSet() *RuleSet {
	rs, err := ParseRuleSet(defaultRulesYAML)
	if err != nil {
		panic(err)
	}
	return rs
}

// LoadRuleSet reads an operator rule file, or returns the built-in table when path is empty.
func LoadRuleSet(path string) (*RuleSet, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultRuleSet(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRuleSet(data)
}

// Explain returns the canned explanation for a rule title in lang, or the
// generic fallback sentence when the title is not in the table.
func (rs *RuleSet) Explain(title string, lang constants.Language) string {
	for _, r := range rs.Rules {
		if r.Title == title {
			if s := pick(r.Explanations, lang); s != "" {
				return s
			}
			break
		}
	}
	return pick(rs.Fallback, lang)
}

func pick(m map[constants.Language]string, lang constants.Language) string {
	if s := strings.TrimSpace(m[lang]); s != "" {
		return s
	}
	return strings.TrimSpace(m[constants.English])
}

// RuleDetector is the offline strategy. It never fails.
type RuleDetector struct {
	rules  *RuleSet
	logger *slog.Logger
}

func NewRuleDetector(rules *RuleSet, logger *slog.Logger) *RuleDetector {
	if rules == nil {
		rules = DefaultRuleSet()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RuleDetector{rules: rules, logger: logger}
}

func (d *RuleDetector) Detect(ctx context.Context, text string, lang constants.Language) (Detection, error) {
	clauses := d.Find(text, lang)
	d.logger.DebugContext(ctx, "rules.detect.done", "clauses", len(clauses), "lang", lang)
	return Detection{Clauses: clauses, Strategy: constants.StrategyRules}, nil
}

// Find scans each sentence against every rule. The first matching keyword of a
// rule emits one clause; a (title, sentence) pair is reported once.
func (d *RuleDetector) Find(text string, lang constants.Language) []entity.Clause {
	type seenKey struct{ title, sentence string }
	seen := make(map[seenKey]struct{})
	out := []entity.Clause{}

	for _, sentence := range SplitSentences(text) {
		lower := strings.ToLower(sentence)
		for _, r := range d.rules.Rules {
			for _, kw := range r.Keywords {
				if !strings.Contains(lower, kw) {
					continue
				}
				k := seenKey{r.Title, sentence}
				if _, dup := seen[k]; !dup {
					seen[k] = struct{}{}
					out = append(out, entity.Clause{
						Type:           r.Type,
						Title:          r.Title,
						Severity:       r.Severity,
						OriginalText:   sentence,
						SimplifiedText: d.rules.Explain(r.Title, lang),
					})
				}
				break
			}
		}
	}
	return out
}

// SplitSentences replaces newlines with spaces, splits on '.', '!' and '?',
// and drops fragments that are blank after trimming.
func SplitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\n", " ")
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
