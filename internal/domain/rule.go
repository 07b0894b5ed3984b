package domain

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	TokenSteamGame = "<steamgame>"
	TokenAll       = "<all>"

	regexPrefix     = "r`"
	substringPrefix = "~"
)

type PatternKind string

const (
	PatternSteamGame PatternKind = "steamgame"
	PatternAll       PatternKind = "all"
	PatternRegex     PatternKind = "regex"
	PatternSubstring PatternKind = "substring"
	PatternExact     PatternKind = "exact"
)

// Pattern is one compiled target token of a rule.
type Pattern struct {
	Raw   string
	Kind  PatternKind
	value string
	re    *regexp.Regexp
}

func ParsePattern(token string) (Pattern, error) {
	switch {
	case token == TokenSteamGame:
		return Pattern{Raw: token, Kind: PatternSteamGame}, nil
	case token == TokenAll:
		return Pattern{Raw: token, Kind: PatternAll}, nil
	case strings.HasPrefix(token, regexPrefix):
		expr := strings.TrimPrefix(token, regexPrefix)
		re, err := regexp.Compile("(?i)^(?:" + expr + ")")
		if err != nil {
			return Pattern{}, fmt.Errorf("%w %q: %v", ErrInvalidPattern, token, err)
		}
		return Pattern{Raw: token, Kind: PatternRegex, value: expr, re: re}, nil
	case strings.HasPrefix(token, substringPrefix):
		lowered := strings.ToLower(token)
		return Pattern{Raw: lowered, Kind: PatternSubstring, value: strings.TrimPrefix(lowered, substringPrefix)}, nil
	default:
		lowered := strings.ToLower(token)
		return Pattern{Raw: lowered, Kind: PatternExact, value: lowered}, nil
	}
}

// Matches reports whether processName is accepted by the pattern. processName
// is expected to be normalized already.
func (p Pattern) Matches(processName string, games GameSet) bool {
	switch p.Kind {
	case PatternSteamGame:
		return games.MatchesPrefix(processName)
	case PatternAll:
		return true
	case PatternRegex:
		return p.re != nil && p.re.MatchString(processName)
	case PatternSubstring:
		return strings.Contains(processName, p.value)
	case PatternExact:
		return processName == p.value
	default:
		return false
	}
}

// RuleSpec is the raw, unvalidated shape of a configured control.
type RuleSpec struct {
	Name        string
	Targets     []string
	UseAppTitle bool
	UseAppName  bool
	OnlyFirst   bool
	Exclude     bool
	Master      bool
	FgColor     string
	BgColor     string
	BgColor2    string
}

// Rule describes one configured control. Patterns are fixed at construction.
type Rule struct {
	Name        string
	UseAppTitle bool
	UseAppName  bool
	OnlyFirst   bool
	Exclude     bool
	Master      bool
	FgColor     string
	BgColor     string
	BgColor2    string

	patterns []Pattern
}

func NewRule(spec RuleSpec) (Rule, error) {
	patterns := make([]Pattern, 0, len(spec.Targets))
	for _, token := range spec.Targets {
		pattern, err := ParsePattern(token)
		if err != nil {
			return Rule{}, fmt.Errorf("control %q: %w", spec.Name, err)
		}
		patterns = append(patterns, pattern)
	}

	return Rule{
		Name:        spec.Name,
		UseAppTitle: spec.UseAppTitle,
		UseAppName:  spec.UseAppName,
		OnlyFirst:   spec.OnlyFirst,
		Exclude:     spec.Exclude,
		Master:      spec.Master,
		FgColor:     spec.FgColor,
		BgColor:     spec.BgColor,
		BgColor2:    spec.BgColor2,
		patterns:    patterns,
	}, nil
}

func MustRule(spec RuleSpec) Rule {
	rule, err := NewRule(spec)
	if err != nil {
		panic(err)
	}

	return rule
}

func (r Rule) Patterns() []Pattern {
	out := make([]Pattern, len(r.patterns))
	copy(out, r.patterns)
	return out
}

// Targets returns the pattern tokens in their normalized form.
func (r Rule) Targets() []string {
	out := make([]string, 0, len(r.patterns))
	for _, p := range r.patterns {
		out = append(out, p.Raw)
	}
	return out
}

// Accepts evaluates every pattern as a union. With Exclude set the result is
// inverted.
func (r Rule) Accepts(processName string, games GameSet) bool {
	matched := false
	for _, p := range r.patterns {
		if p.Matches(processName, games) {
			matched = true
			break
		}
	}

	if r.Exclude {
		return !matched
	}
	return matched
}

func (r Rule) Spec() RuleSpec {
	return RuleSpec{
		Name:        r.Name,
		Targets:     r.Targets(),
		UseAppTitle: r.UseAppTitle,
		UseAppName:  r.UseAppName,
		OnlyFirst:   r.OnlyFirst,
		Exclude:     r.Exclude,
		Master:      r.Master,
		FgColor:     r.FgColor,
		BgColor:     r.BgColor,
		BgColor2:    r.BgColor2,
	}
}

func (r Rule) Clone() Rule {
	clone := r
	clone.patterns = r.Patterns()
	return clone
}

func (r Rule) WithDefaultColors(fg, bg string) Rule {
	out := r.Clone()
	if out.FgColor == "" {
		out.FgColor = fg
	}
	if out.BgColor == "" {
		out.BgColor = bg
	}
	return out
}
