package sitemap

import (
	"fmt"
	"sync"

	"sitesync/core/files"
)

// Predicate decides whether a file is excluded from the sitemap.
type Predicate interface {
	Ignore(file files.SourceFile, host Host) (bool, error)
}

// PredicateFunc adapts a function to the Predicate interface.
type PredicateFunc func(file files.SourceFile, host Host) (bool, error)

// Ignore calls f.
func (f PredicateFunc) Ignore(file files.SourceFile, host Host) (bool, error) {
	return f(file, host)
}

// IgnoreRuleError is returned when a rule fails to evaluate a file.
type IgnoreRuleError struct {
	Rule string
	Path string
	Err  error
}

func (e *IgnoreRuleError) Error() string {
	return fmt.Sprintf("ignore rule %q failed for %s: %v", e.Rule, e.Path, e.Err)
}

func (e *IgnoreRuleError) Unwrap() error {
	return e.Err
}

// Rule is a named predicate.
type Rule struct {
	Name      string
	Predicate Predicate
}

// RuleSet is an ordered collection of ignore rules.
type RuleSet struct {
	mu    sync.RWMutex
	rules []Rule
}

// NewRuleSet creates an empty rule set.
func NewRuleSet() *RuleSet {
	return &RuleSet{}
}

// Register adds a rule. Registering an existing name replaces its predicate
// and keeps its position.
func (s *RuleSet) Register(name string, predicate Predicate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.rules {
		if s.rules[i].Name == name {
			s.rules[i].Predicate = predicate
			return
		}
	}
	s.rules = append(s.rules, Rule{Name: name, Predicate: predicate})
}

// Rules returns a copy of the registered rules in order.
func (s *RuleSet) Rules() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Ignored reports whether any rule matches the file.
// Results are never cached; rules may depend on configuration that changes.
func (s *RuleSet) Ignored(file files.SourceFile, host Host) (bool, error) {
	for _, rule := range s.Rules() {
		matched, err := rule.Predicate.Ignore(file, host)
		if err != nil {
			return false, &IgnoreRuleError{Rule: rule.Name, Path: file.RelativePath, Err: err}
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}
