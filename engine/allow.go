package engine

import (
	"fmt"
	"regexp"
)

// RuleKind is the category of declaration an AllowRule applies to.
type RuleKind int

const (
	KindType RuleKind = 1 << iota
	KindFunction

	KindAll = KindType | KindFunction
)

func (k RuleKind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindFunction:
		return "function"
	case KindAll:
		return "type+function"
	default:
		return fmt.Sprintf("RuleKind(%d)", int(k))
	}
}

// AllowEntry is one allowlist entry as written by the user. A zero Kinds
// means KindAll.
type AllowEntry struct {
	Pattern string
	Kinds   RuleKind
	Negate  bool
}

// Allow returns an entry that applies to both types and functions.
func Allow(pattern string) AllowEntry {
	return AllowEntry{Pattern: pattern, Kinds: KindAll}
}

func (e AllowEntry) kinds() RuleKind {
	if e.Kinds == 0 {
		return KindAll
	}
	return e.Kinds
}

// AllowRule is a compiled, single-kind allow rule. Patterns must match the
// entire declaration name.
type AllowRule struct {
	Kind    RuleKind
	Pattern string
	Negate  bool

	re *regexp.Regexp
}

// Match reports whether the rule's pattern matches all of name.
func (r AllowRule) Match(name string) bool {
	return r.re != nil && r.re.MatchString(name)
}

func (r AllowRule) String() string {
	if r.Negate {
		return fmt.Sprintf("!%s:%s", r.Kind, r.Pattern)
	}
	return fmt.Sprintf("%s:%s", r.Kind, r.Pattern)
}

// CheckPattern reports whether pattern is usable as an allowlist entry.
func CheckPattern(pattern string) error {
	_, err := compilePattern(pattern)
	return err
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty allowlist pattern")
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("compiling allowlist pattern '%s': %w", pattern, err)
	}
	return re, nil
}

// Rules expands entries into one rule per kind, type before function. A plain
// entry therefore yields exactly two rules.
func Rules(entries []AllowEntry) ([]AllowRule, error) {
	var rules []AllowRule
	for _, e := range entries {
		re, err := compilePattern(e.Pattern)
		if err != nil {
			return nil, err
		}
		for _, k := range []RuleKind{KindType, KindFunction} {
			if e.kinds()&k == 0 {
				continue
			}
			rules = append(rules, AllowRule{Kind: k, Pattern: e.Pattern, Negate: e.Negate, re: re})
		}
	}
	return rules, nil
}

// Matcher decides which declarations a generator exposes.
type Matcher interface {
	MatchType(name string) bool
	MatchFunction(name string) bool
	// Empty reports whether no rules were given at all, in which case
	// generators fall back to exposing every non-system declaration.
	Empty() bool
}

type ruleMatcher struct {
	typeRules []AllowRule
	funcRules []AllowRule
}

// NewMatcher builds a Matcher where the last full match of a name wins.
func NewMatcher(rules []AllowRule) Matcher {
	m := &ruleMatcher{}
	for _, r := range rules {
		switch r.Kind {
		case KindType:
			m.typeRules = append(m.typeRules, r)
		case KindFunction:
			m.funcRules = append(m.funcRules, r)
		}
	}
	return m
}

func (m *ruleMatcher) Empty() bool {
	return len(m.typeRules) == 0 && len(m.funcRules) == 0
}

func (m *ruleMatcher) MatchType(name string) bool {
	return m.match("type", name, m.typeRules)
}

func (m *ruleMatcher) MatchFunction(name string) bool {
	return m.match("function", name, m.funcRules)
}

func (m *ruleMatcher) match(what, name string, rules []AllowRule) bool {
	if m.Empty() {
		return true
	}
	include := false
	anyMatch := false
	for _, rule := range rules {
		if !rule.Match(name) {
			continue
		}
		anyMatch = true
		include = !rule.Negate
		if rule.Negate {
			log.Debugf("excluding %s %s because of negated pattern '%s'", what, name, rule.Pattern)
		} else {
			log.Debugf("including %s %s because of pattern '%s'", what, name, rule.Pattern)
		}
	}
	if !anyMatch {
		log.Debugf("excluding %s %s because no patterns matched it", what, name)
	}
	return include
}
