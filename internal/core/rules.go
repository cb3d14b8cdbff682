package core

// rules.go implements field overrides keyed on the transformed team member
// name. The default rule set reproduces the single hours exception the
// payroll export has always carried; additional rules can be loaded from a
// YAML file without touching the pipeline.

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MatchKind selects how an OverrideRule compares its pattern to a name.
type MatchKind string

const (
	MatchContains MatchKind = "contains"
	MatchEquals   MatchKind = "equals"
	MatchPrefix   MatchKind = "prefix"
)

// ErrInvalidRule is returned when an override rule cannot be applied.
var ErrInvalidRule = errors.New("invalid override rule")

// OverrideRule forces a field to a fixed value for matching team members.
// Matching is done against the lower-cased "Last, First" name.
type OverrideRule struct {
	Name    string    `yaml:"name" json:"name"`
	Match   MatchKind `yaml:"match" json:"match"`
	Pattern string    `yaml:"pattern" json:"pattern"`
	Field   string    `yaml:"field" json:"field"`
	Value   string    `yaml:"value" json:"value"`
}

// Matches reports whether the rule applies to a transformed team member name.
func (r OverrideRule) Matches(teamMember string) bool {
	name := strings.ToLower(teamMember)
	pattern := strings.ToLower(r.Pattern)
	switch r.Match {
	case MatchEquals:
		return name == pattern
	case MatchPrefix:
		return strings.HasPrefix(name, pattern)
	default:
		return strings.Contains(name, pattern)
	}
}

// Validate checks that the rule names a known match kind and field.
func (r OverrideRule) Validate() error {
	switch r.Match {
	case "", MatchContains, MatchEquals, MatchPrefix:
	default:
		return fmt.Errorf("%w %q: unknown match %q", ErrInvalidRule, r.Name, r.Match)
	}
	if r.Pattern == "" {
		return fmt.Errorf("%w %q: empty pattern", ErrInvalidRule, r.Name)
	}
	if r.Field == "" {
		return fmt.Errorf("%w %q: empty field", ErrInvalidRule, r.Name)
	}
	if protectedField(r.Field) {
		return fmt.Errorf("%w %q: %s cannot be overridden", ErrInvalidRule, r.Name, r.Field)
	}
	return nil
}

// protectedField reports whether a column is produced by normalization and
// must never be overwritten: the reordered name and the masked SSN.
func protectedField(field string) bool {
	return field == ColTeamMember || field == ColSSN
}

// DefaultRules returns the built-in override list: K. Compton is always
// submitted at 40 hours.
func DefaultRules() []OverrideRule {
	return []OverrideRule{
		{
			Name:    "compton-full-time",
			Match:   MatchContains,
			Pattern: "compton, k",
			Field:   ColHoursPerWeek,
			Value:   "40.0",
		},
	}
}

// ApplyOverrides sets every field named by a matching rule. For each field
// the first matching rule wins. Rules targeting Team Member or SSN are
// ignored. It returns the number of rules applied.
func ApplyOverrides(row *PayrollRow, rules []OverrideRule) int {
	applied := 0
	done := make(map[string]bool, len(rules))
	for _, rule := range rules {
		if protectedField(rule.Field) || done[rule.Field] || !rule.Matches(row.TeamMember) {
			continue
		}
		done[rule.Field] = true
		applied++
		switch rule.Field {
		case ColCompletion:
			row.Completion = rule.Value
		case ColCollection:
			row.Collection = rule.Value
		default:
			row.set(rule.Field, rule.Value)
		}
	}
	return applied
}

// rulesFile is the on-disk shape of a rules YAML document.
type rulesFile struct {
	Rules []OverrideRule `yaml:"rules"`
}

// ParseRules decodes a YAML rules document and validates each rule.
// An empty document yields an empty, non-nil list: no overrides.
//
//	rules:
//	  - name: compton-full-time
//	    match: contains
//	    pattern: "compton, k"
//	    field: Hours Per Week
//	    value: "40.0"
func ParseRules(r io.Reader) ([]OverrideRule, error) {
	var doc rulesFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []OverrideRule{}, nil
		}
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	for i := range doc.Rules {
		if doc.Rules[i].Match == "" {
			doc.Rules[i].Match = MatchContains
		}
		if err := doc.Rules[i].Validate(); err != nil {
			return nil, err
		}
	}
	if doc.Rules == nil {
		return []OverrideRule{}, nil
	}
	return doc.Rules, nil
}

// LoadRules reads override rules from a YAML file.
// An empty path yields DefaultRules.
func LoadRules(path string) ([]OverrideRule, error) {
	if path == "" {
		return DefaultRules(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules file: %w", err)
	}
	defer f.Close()

	rules, err := ParseRules(f)
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return rules, nil
}
