// Package validate implements a small declarative validation engine: each
// field maps to an ordered list of rules, and evaluation collects the
// message of every rule that fails.
package validate

import (
	"regexp"
	"strings"
)

var (
	nameRegex  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Rule is a predicate over a field value plus the message reported when
// the predicate fails.
type Rule struct {
	Check   func(value string) bool
	Message string
}

// FieldRules binds a field name to its ordered rule list
type FieldRules struct {
	Field string
	Rules []Rule
}

// RuleSet is evaluated field by field, rule by rule, in declaration order
type RuleSet []FieldRules

// Evaluate runs the rule set against the given values and returns all
// failure messages. An empty result means the input is valid.
func (rs RuleSet) Evaluate(values map[string]string) []string {
	var failures []string
	for _, fr := range rs {
		value := values[fr.Field]
		for _, rule := range fr.Rules {
			if !rule.Check(value) {
				failures = append(failures, rule.Message)
			}
		}
	}
	return failures
}

// Common reusable predicates

func NotEmpty() Rule {
	return Rule{
		Check:   func(v string) bool { return strings.TrimSpace(v) != "" },
		Message: "must not be empty",
	}
}

func MinLength(n int, message string) Rule {
	return Rule{
		Check:   func(v string) bool { return len(v) >= n },
		Message: message,
	}
}

func MaxLength(n int, message string) Rule {
	return Rule{
		Check:   func(v string) bool { return len(v) <= n },
		Message: message,
	}
}

func LettersOnly(message string) Rule {
	return Rule{
		Check:   func(v string) bool { return nameRegex.MatchString(v) },
		Message: message,
	}
}

func Email(message string) Rule {
	return Rule{
		Check:   func(v string) bool { return emailRegex.MatchString(v) },
		Message: message,
	}
}

func Equals(other string, message string) Rule {
	return Rule{
		Check:   func(v string) bool { return v == other },
		Message: message,
	}
}
