package intelligence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Classifier maps field names to purposes with an ordered rule table
type Classifier struct {
	rules    []PurposeRule
	patterns map[string][]*regexp.Regexp
	byTag    map[Purpose]*PurposeRule
	byName   map[string]*PurposeRule
}

// NewClassifier creates a classifier with the default rules
func NewClassifier() *Classifier {
	c, err := NewClassifierWithRules(DefaultRules())
	if err != nil {
		panic(err)
	}
	return c
}

// NewClassifierWithRules creates a classifier from rules. Rules are ordered by
// category priority; within a category the given order is kept.
func NewClassifierWithRules(rules []PurposeRule) (*Classifier, error) {
	c := &Classifier{
		patterns: make(map[string][]*regexp.Regexp),
		byTag:    make(map[Purpose]*PurposeRule),
		byName:   make(map[string]*PurposeRule),
	}
	if err := c.setRules(rules); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Classifier) setRules(rules []PurposeRule) error {
	ordered := make([]PurposeRule, 0, len(rules))
	patterns := make(map[string][]*regexp.Regexp)
	seen := make(map[string]bool)

	for _, rule := range rules {
		if rule.Name == "" {
			return fmt.Errorf("rule for purpose %q has no name", rule.Purpose)
		}
		if seen[rule.Name] {
			return fmt.Errorf("duplicate rule name %s", rule.Name)
		}
		seen[rule.Name] = true
		if !rule.Purpose.IsValid() || rule.Purpose == PurposeUnknown {
			return fmt.Errorf("rule %s: invalid purpose %q", rule.Name, rule.Purpose)
		}
		if rule.Keyword == "" {
			return fmt.Errorf("rule %s: keyword is required", rule.Name)
		}
		rule.Keyword = strings.ToLower(rule.Keyword)
		synonyms := make([]string, len(rule.Synonyms))
		for i, s := range rule.Synonyms {
			synonyms[i] = strings.ToLower(s)
		}
		rule.Synonyms = synonyms
		if rule.Label == "" {
			rule.Label = rule.Purpose.DisplayName()
		}

		for _, p := range rule.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return fmt.Errorf("rule %s: invalid pattern %q: %w", rule.Name, p, err)
			}
			patterns[rule.Name] = append(patterns[rule.Name], re)
		}
		ordered = append(ordered, rule)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return categoryRank(ordered[i].Category) < categoryRank(ordered[j].Category)
	})

	byTag := make(map[Purpose]*PurposeRule)
	byName := make(map[string]*PurposeRule, len(ordered))
	for i := range ordered {
		if _, ok := byTag[ordered[i].Purpose]; !ok {
			byTag[ordered[i].Purpose] = &ordered[i]
		}
		byName[ordered[i].Name] = &ordered[i]
	}

	c.rules = ordered
	c.patterns = patterns
	c.byTag = byTag
	c.byName = byName
	return nil
}

// Classify returns the purpose of the first matching rule, or unknown with the
// field name as label
func (c *Classifier) Classify(fieldName string) Classification {
	name := strings.ToLower(fieldName)
	if name != "" {
		for i := range c.rules {
			rule := &c.rules[i]
			if rule.Enabled && c.matches(rule, name) {
				return Classification{
					Purpose: rule.Purpose,
					Label:   rule.Label,
					Rule:    rule.Name,
				}
			}
		}
	}
	return Classification{Purpose: PurposeUnknown, Label: fieldName}
}

func (c *Classifier) matches(rule *PurposeRule, name string) bool {
	if strings.Contains(name, rule.Keyword) {
		return true
	}
	for _, s := range rule.Synonyms {
		if s != "" && strings.Contains(name, s) {
			return true
		}
	}
	for _, re := range c.patterns[rule.Name] {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Confidence scores how certainly fieldName denotes purpose, measured against
// the first rule for purpose: 100 for the full keyword, 80 for its first four
// characters, 70 for a synonym, 50 otherwise
func (c *Classifier) Confidence(fieldName string, purpose Purpose) int {
	rule, ok := c.byTag[purpose]
	if !ok {
		return ConfidenceFloor
	}
	return score(rule, strings.ToLower(fieldName))
}

// Score is Confidence measured against the rule that produced class
func (c *Classifier) Score(fieldName string, class Classification) int {
	if rule, ok := c.byName[class.Rule]; ok {
		return score(rule, strings.ToLower(fieldName))
	}
	return c.Confidence(fieldName, class.Purpose)
}

func score(rule *PurposeRule, name string) int {
	if strings.Contains(name, rule.Keyword) {
		return ConfidenceKeyword
	}
	if prefix := keywordPrefix(rule.Keyword); prefix != "" && strings.Contains(name, prefix) {
		return ConfidencePrefix
	}
	for _, s := range rule.Synonyms {
		if s != "" && strings.Contains(name, s) {
			return ConfidenceSynonym
		}
	}
	return ConfidenceFloor
}

func keywordPrefix(keyword string) string {
	runes := []rune(keyword)
	if len(runes) < keywordPrefixLen {
		return keyword
	}
	return string(runes[:keywordPrefixLen])
}

// Rules returns a copy of the active rule table
func (c *Classifier) Rules() []PurposeRule {
	out := make([]PurposeRule, len(c.rules))
	copy(out, c.rules)
	return out
}

// LoadCustomRules adds rules from a JSON or YAML rule set file
func (c *Classifier) LoadCustomRules(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read custom rules file: %w", err)
	}

	var ruleSet RuleSet
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &ruleSet)
	default:
		err = yaml.Unmarshal(data, &ruleSet)
	}
	if err != nil {
		return fmt.Errorf("failed to parse custom rules: %w", err)
	}

	return c.setRules(append(c.Rules(), ruleSet.Rules...))
}
