package domain

import (
	"sort"
	"strings"
)

// GameSet is a deduplicated set of lowercased game executable names.
type GameSet map[string]struct{}

func NewGameSet(names ...string) GameSet {
	set := make(GameSet, len(names))
	for _, name := range names {
		set.Add(name)
	}
	return set
}

func (g GameSet) Add(name string) {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	if trimmed == "" {
		return
	}
	g[trimmed] = struct{}{}
}

func (g GameSet) Contains(name string) bool {
	_, ok := g[strings.ToLower(name)]
	return ok
}

// MatchesPrefix reports whether processName starts with any game name.
func (g GameSet) MatchesPrefix(processName string) bool {
	for game := range g {
		if strings.HasPrefix(processName, game) {
			return true
		}
	}
	return false
}

func (g GameSet) Sorted() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
