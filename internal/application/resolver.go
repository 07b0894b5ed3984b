package application

import "github.com/bnema/volmix/internal/domain"

// ExpandAutoFill pads rules with independent copies of template until the
// list holds count entries. The input slice is never modified.
func ExpandAutoFill(rules []domain.Rule, template domain.Rule, count int) []domain.Rule {
	size := len(rules)
	if count > size {
		size = count
	}

	expanded := make([]domain.Rule, 0, size)
	for _, rule := range rules {
		expanded = append(expanded, rule.Clone())
	}
	for len(expanded) < count {
		expanded = append(expanded, template.Clone())
	}

	return expanded
}

// Resolve binds sessions to rules in declaration order and returns at most
// capacity active controls.
//
// A session is unavailable to a rule once an earlier control's first session
// carries the same process name. Only that first session is compared, so a
// second or later match of a multi-session control can still be claimed by a
// later rule.
func Resolve(rules []domain.Rule, sessions []domain.Session, games domain.GameSet, capacity int) []domain.ActiveControl {
	if capacity <= 0 {
		return []domain.ActiveControl{}
	}

	controls := make([]domain.ActiveControl, 0, min(capacity, len(rules)))
	for _, rule := range rules {
		if len(controls) >= capacity {
			break
		}

		if rule.Master {
			controls = append(controls, domain.ActiveControl{Rule: rule, Sessions: []domain.Session{}})
			continue
		}

		matched := matchSessions(rule, sessions, games, controls)
		if len(matched) == 0 {
			continue
		}

		controls = append(controls, domain.ActiveControl{Rule: rule, Sessions: matched})
	}

	return controls
}

func matchSessions(rule domain.Rule, sessions []domain.Session, games domain.GameSet, prior []domain.ActiveControl) []domain.Session {
	matched := make([]domain.Session, 0)
	for _, session := range sessions {
		if session.ProcessName == "" {
			continue
		}
		if !rule.Accepts(session.ProcessName, games) {
			continue
		}
		if claimedByPrior(session.ProcessName, prior) {
			continue
		}

		matched = append(matched, session)
	}

	if rule.OnlyFirst && len(matched) > 1 {
		matched = matched[:1]
	}

	return matched
}

func claimedByPrior(processName string, prior []domain.ActiveControl) bool {
	for _, control := range prior {
		if len(control.Sessions) > 0 && control.PrimaryProcess() == processName {
			return true
		}
	}
	return false
}
