package application

import (
	"testing"

	"github.com/bnema/volmix/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rule(name string, targets ...string) domain.Rule {
	return domain.MustRule(domain.RuleSpec{Name: name, Targets: targets})
}

func session(process string, pid int) domain.Session {
	return domain.Session{ID: domain.SessionID(process), ProcessName: process, PID: pid}
}

func controlNames(controls []domain.ActiveControl) []string {
	names := make([]string, 0, len(controls))
	for _, c := range controls {
		names = append(names, c.Rule.Name)
	}
	return names
}

func processNames(control domain.ActiveControl) []string {
	names := make([]string, 0, len(control.Sessions))
	for _, s := range control.Sessions {
		names = append(names, s.ProcessName)
	}
	return names
}

func TestResolveCatchAllSkipsClaimedSession(t *testing.T) {
	rules := []domain.Rule{rule("Discord", "discord"), rule("Game", "<all>")}
	sessions := []domain.Session{session("discord", 1), session("notepad", 2)}

	controls := Resolve(rules, sessions, nil, 8)

	require.Len(t, controls, 2)
	assert.Equal(t, "Discord", controls[0].Rule.Name)
	assert.Equal(t, []string{"discord"}, processNames(controls[0]))
	assert.Equal(t, "Game", controls[1].Rule.Name)
	assert.Equal(t, []string{"notepad"}, processNames(controls[1]))
}

func TestResolveCapacityKeepsFirstDeclaredRule(t *testing.T) {
	rules := []domain.Rule{rule("First", "discord"), rule("Second", "notepad")}
	sessions := []domain.Session{session("discord", 1), session("notepad", 2)}

	controls := Resolve(rules, sessions, nil, 1)

	require.Len(t, controls, 1)
	assert.Equal(t, "First", controls[0].Rule.Name)
}

func TestResolveZeroCapacityReturnsNothing(t *testing.T) {
	controls := Resolve([]domain.Rule{rule("Master", "<all>")}, []domain.Session{session("a", 1)}, nil, 0)
	assert.Empty(t, controls)
}

func TestResolveMasterBindsWithoutSessions(t *testing.T) {
	master := domain.MustRule(domain.RuleSpec{Name: "Master", Targets: []string{"<all>"}, Master: true})
	rules := []domain.Rule{master, rule("Rest", "<all>")}
	sessions := []domain.Session{session("discord", 1)}

	controls := Resolve(rules, sessions, nil, 8)

	require.Len(t, controls, 2)
	assert.True(t, controls[0].Rule.Master)
	assert.NotNil(t, controls[0].Sessions)
	assert.Empty(t, controls[0].Sessions)
	assert.Equal(t, []string{"discord"}, processNames(controls[1]))
}

func TestResolveMasterActiveWithNoSessions(t *testing.T) {
	master := domain.MustRule(domain.RuleSpec{Name: "Master", Master: true})
	controls := Resolve([]domain.Rule{master}, nil, nil, 8)

	require.Len(t, controls, 1)
	assert.Empty(t, controls[0].Sessions)
}

func TestResolveDropsRulesWithoutMatches(t *testing.T) {
	rules := []domain.Rule{rule("Spotify", "spotify"), rule("Chat", "discord")}
	controls := Resolve(rules, []domain.Session{session("discord", 1)}, nil, 8)

	assert.Equal(t, []string{"Chat"}, controlNames(controls))
}

func TestResolveOnlyFirstTruncates(t *testing.T) {
	onlyFirst := domain.MustRule(domain.RuleSpec{Name: "Browser", Targets: []string{"~chrome"}, OnlyFirst: true})
	sessions := []domain.Session{session("chrome", 1), session("chromehelper", 2)}

	controls := Resolve([]domain.Rule{onlyFirst}, sessions, nil, 8)

	require.Len(t, controls, 1)
	assert.Equal(t, []string{"chrome"}, processNames(controls[0]))
}

func TestResolvePatternUnion(t *testing.T) {
	chat := rule("Chat", "discord", "~slack", "r`^teams")
	sessions := []domain.Session{
		session("discord", 1),
		session("slackhelper", 2),
		session("teams", 3),
		session("notepad", 4),
	}

	controls := Resolve([]domain.Rule{chat}, sessions, nil, 8)

	require.Len(t, controls, 1)
	assert.Equal(t, []string{"discord", "slackhelper", "teams"}, processNames(controls[0]))
}

func TestResolveSteamGamePrefix(t *testing.T) {
	games := domain.NewGameSet("eldenring", "portal2")
	sessions := []domain.Session{session("notepad", 1), session("eldenring", 2), session("portal2_x64", 3)}

	controls := Resolve([]domain.Rule{rule("Game", "<steamgame>")}, sessions, games, 8)

	require.Len(t, controls, 1)
	assert.Equal(t, []string{"eldenring", "portal2_x64"}, processNames(controls[0]))
}

func TestResolveSkipsSessionsWithoutProcess(t *testing.T) {
	sessions := []domain.Session{{ID: "system"}, session("discord", 1)}
	controls := Resolve([]domain.Rule{rule("All", "<all>")}, sessions, nil, 8)

	require.Len(t, controls, 1)
	assert.Equal(t, []string{"discord"}, processNames(controls[0]))
}

func TestResolveExclusivityChecksOnlyFirstSessionOfPriorControls(t *testing.T) {
	chat := rule("Chat", "discord", "slack")
	rest := domain.MustRule(domain.RuleSpec{Name: "Rest", Targets: []string{"<all>"}, OnlyFirst: false})
	sessions := []domain.Session{session("discord", 1), session("slack", 2), session("notepad", 3)}

	controls := Resolve([]domain.Rule{chat, rest}, sessions, nil, 8)

	require.Len(t, controls, 2)
	assert.Equal(t, []string{"discord", "slack"}, processNames(controls[0]))
	// slack was the second match of Chat, so the catch-all may still bind it.
	assert.Equal(t, []string{"slack", "notepad"}, processNames(controls[1]))
}

func TestResolveExclusivityByProcessName(t *testing.T) {
	sessions := []domain.Session{
		{ID: "a", ProcessName: "chrome", PID: 1},
		{ID: "b", ProcessName: "chrome", PID: 2},
		{ID: "c", ProcessName: "notepad", PID: 3},
	}
	rules := []domain.Rule{
		domain.MustRule(domain.RuleSpec{Name: "Browser", Targets: []string{"chrome"}, OnlyFirst: true}),
		rule("Rest", "<all>"),
	}

	controls := Resolve(rules, sessions, nil, 8)

	require.Len(t, controls, 2)
	assert.Len(t, controls[0].Sessions, 1)
	assert.Equal(t, []string{"notepad"}, processNames(controls[1]))
}

func TestResolveAutoFillSpreadsSessions(t *testing.T) {
	template := domain.MustRule(domain.RuleSpec{Name: "App", Targets: []string{"<all>"}, UseAppName: true, OnlyFirst: true})
	rules := ExpandAutoFill([]domain.Rule{rule("Discord", "discord")}, template, 4)
	sessions := []domain.Session{session("discord", 1), session("firefox", 2), session("spotify", 3)}

	controls := Resolve(rules, sessions, nil, 4)

	require.Len(t, controls, 3)
	assert.Equal(t, []string{"Discord", "App", "App"}, controlNames(controls))
	assert.Equal(t, []string{"firefox"}, processNames(controls[1]))
	assert.Equal(t, []string{"spotify"}, processNames(controls[2]))
}

func TestResolveNeverExceedsCapacityOrDuplicatesPrimarySession(t *testing.T) {
	template := domain.MustRule(domain.RuleSpec{Name: "App", Targets: []string{"<all>"}, OnlyFirst: true})
	rules := ExpandAutoFill(nil, template, 20)
	sessions := make([]domain.Session, 0, 10)
	for i, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		sessions = append(sessions, session(name, i))
	}

	for capacity := 0; capacity <= 12; capacity++ {
		controls := Resolve(rules, sessions, nil, capacity)
		assert.LessOrEqual(t, len(controls), capacity)

		seen := map[domain.SessionID]bool{}
		for _, c := range controls {
			assert.LessOrEqual(t, len(c.Sessions), 1)
			for _, s := range c.Sessions {
				assert.False(t, seen[s.ID], "session %s bound twice", s.ID)
				seen[s.ID] = true
			}
		}
	}
}

func TestExpandAutoFillCreatesIndependentCopies(t *testing.T) {
	template := domain.MustRule(domain.RuleSpec{Name: "App", Targets: []string{"<all>"}})
	base := []domain.Rule{rule("Discord", "discord")}

	expanded := ExpandAutoFill(base, template, 3)
	require.Len(t, expanded, 3)
	assert.Len(t, base, 1)

	expanded[1].FgColor = "#f00"
	assert.Empty(t, expanded[2].FgColor)
	assert.Empty(t, template.FgColor)
}

func TestExpandAutoFillNeverTruncates(t *testing.T) {
	template := rule("App", "<all>")
	base := []domain.Rule{rule("A", "a"), rule("B", "b"), rule("C", "c")}

	assert.Len(t, ExpandAutoFill(base, template, 2), 3)
}
