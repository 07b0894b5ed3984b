package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bnema/volmix/internal/version"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixtureSessions = []string{
	"--fake-session", "discord:10:0.5",
	"--fake-session", "Hades.exe:11:0.25",
	"--fake-session", "firefox:12:0.7",
}

func TestControlsRendersResolvedControls(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeConfigFixture(home))

	args := append([]string{"controls", "--backend", "memory"}, fixtureSessions...)
	stdout, _, err := executeCLI(t, home, args...)
	require.NoError(t, err)

	assert.Contains(t, stdout, "controls: 4")
	order := []string{"Master - 100%", "Chat - 50%", "Game - 25%", "Firefox - 70%"}
	last := -1
	for _, text := range order {
		idx := strings.Index(stdout, text)
		require.NotEqual(t, -1, idx, "missing %q in %q", text, stdout)
		assert.Greater(t, idx, last)
		last = idx
	}
}

func TestControlsJSONOutput(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeConfigFixture(home))

	args := append([]string{"controls", "--backend", "memory", "--json"}, fixtureSessions...)
	stdout, _, err := executeCLI(t, home, args...)
	require.NoError(t, err)
	require.True(t, json.Valid([]byte(stdout)))

	var statuses []struct {
		Index     int
		Name      string
		Master    bool
		Processes []string
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &statuses))
	require.Len(t, statuses, 4)
	assert.True(t, statuses[0].Master)
	assert.Empty(t, statuses[0].Processes)
	assert.Equal(t, "Chat", statuses[1].Name)
	assert.Equal(t, []string{"discord"}, statuses[1].Processes)
	assert.Equal(t, []string{"hades"}, statuses[2].Processes)
	assert.Equal(t, 4, statuses[3].Index)
}

func TestControlsWithoutSessionsKeepsMaster(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeConfigFixture(home))

	stdout, _, err := executeCLI(t, home, "controls", "--backend", "memory")
	require.NoError(t, err)
	assert.Contains(t, stdout, "controls: 1")
	assert.Contains(t, stdout, "Master - 100%")
}

func TestVolumeAdjustByIndex(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeConfigFixture(home))

	args := append([]string{"volume", "adjust", "--backend", "memory", "--control", "2", "--delta=-0.1"}, fixtureSessions...)
	stdout, _, err := executeCLI(t, home, args...)
	require.NoError(t, err)
	assert.Equal(t, "Chat: 40%\n", stdout)
}

func TestVolumeAdjustClampsAtFullVolume(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeConfigFixture(home))

	stdout, _, err := executeCLI(t, home, "volume", "adjust", "--backend", "memory", "--control", "1", "--delta", "0.5")
	require.NoError(t, err)
	assert.Equal(t, "Master: 100%\n", stdout)
}

func TestVolumeAdjustRejectsUnknownIndex(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeConfigFixture(home))

	_, _, err := executeCLI(t, home, "volume", "adjust", "--backend", "memory", "--control", "9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "control index out of range")
}

func TestVolumeAdjustRequiresControlFlag(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeConfigFixture(home))

	_, _, err := executeCLI(t, home, "volume", "adjust", "--backend", "memory")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag(s) \"control\" not set")
}

func TestGamesScansAndWritesCache(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeConfigFixture(home))

	stdout, _, err := executeCLI(t, home, "games", "--backend", "memory")
	require.NoError(t, err)
	assert.Equal(t, "hades\n", stdout)

	raw, err := os.ReadFile(filepath.Join(configDir(home), "games.cache"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "hades")
}

func TestGamesRefreshPicksUpNewInstall(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeConfigFixture(home))

	_, _, err := executeCLI(t, home, "games", "--backend", "memory")
	require.NoError(t, err)

	require.NoError(t, writeGame(home, "Celeste", "Celeste.exe"))

	stdout, _, err := executeCLI(t, home, "games", "--backend", "memory")
	require.NoError(t, err)
	assert.Equal(t, "hades\n", stdout)

	stdout, _, err = executeCLI(t, home, "games", "--backend", "memory", "--refresh", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `["celeste","hades"]`, stdout)
}

func TestGamesRefreshWithProgressPrintsGames(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeConfigFixture(home))
	require.NoError(t, writeGame(home, "Celeste", "Celeste.exe"))

	stdout, _, err := executeCLI(t, home, "games", "--backend", "memory", "--refresh")
	require.NoError(t, err)
	assert.Equal(t, "celeste\nhades\n", stdout)
}

func TestConfigInitWritesDefaults(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "custom", "conf.json")

	stdout, _, err := executeCLI(t, home, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(raw))
	assert.Contains(t, string(raw), "\"button_count\": 8")

	_, _, err = executeCLI(t, home, "config", "init", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = executeCLI(t, home, "config", "init", "--config", path, "--force")
	require.NoError(t, err)
}

func TestConfigShowEffectiveConfig(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeConfigFixture(home))

	stdout, _, err := executeCLI(t, home, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "\"button_count\": 4")
	assert.Contains(t, stdout, "\"name\": \"Chat\"")

	stdout, _, err = executeCLI(t, home, "config", "show", "--format", "toml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "button_count = 4")

	_, _, err = executeCLI(t, home, "config", "show", "--format", "yaml")
	require.Error(t, err)
}

func TestMissingConfigIsCreated(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "controls", "--backend", "memory")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(configDir(home), "conf.json"))
	assert.NoError(t, err)
}

func TestInvalidControlPatternFailsFast(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(configDir(home), 0o755))
	config := "{\"controls\": [{\"name\": \"Broken\", \"target_applications\": [\"r`(\"]}]}"
	require.NoError(t, os.WriteFile(filepath.Join(configDir(home), "conf.json"), []byte(config), 0o644))

	_, _, err := executeCLI(t, home, "controls", "--backend", "memory")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Broken")
}

func TestUnknownBackend(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeConfigFixture(home))

	_, _, err := executeCLI(t, home, "controls", "--backend", "alsa")
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnknownBackend)
}

func TestLogFileKeepsStderrClean(t *testing.T) {
	home := t.TempDir()
	logPath := filepath.Join(home, "logs", "volmix.log")

	_, stderr, err := executeCLI(t, home, "controls", "--backend", "memory", "--log-file", logPath)
	require.NoError(t, err)
	assert.Empty(t, stderr)

	raw, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "creating default config file")
}

func TestOverlayLogsHeldUntilExit(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	require.NoError(t, writeConfigFixture(home))

	flags := &rootFlags{}
	stderr := &bytes.Buffer{}
	cmd := &cobra.Command{
		Use: "volmix",
		RunE: withAppLogging(flags, overlayLogs, func(_ *cobra.Command, app *app) error {
			app.logger.Warn("skip audio session", "pid", 7)
			assert.NotContains(t, stderr.String(), "skip audio session")
			return nil
		}),
	}
	bindRootFlags(cmd, flags)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{"--backend", "memory"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stderr.String(), "skip audio session")
	assert.Contains(t, stderr.String(), "pid=7")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", stdout)
}

func TestParseFakeSession(t *testing.T) {
	session, volume, err := parseFakeSession("discord:42:0.3")
	require.NoError(t, err)
	assert.Equal(t, "discord", session.ProcessName)
	assert.Equal(t, 42, session.PID)
	assert.InDelta(t, 0.3, volume, 1e-9)

	session, volume, err = parseFakeSession("spotify")
	require.NoError(t, err)
	assert.Equal(t, "spotify", session.ProcessName)
	assert.InDelta(t, 1.0, volume, 1e-9)

	for _, raw := range []string{"", ":1", "a:b", "a:1:loud", "a:1:0.5:x"} {
		_, _, err := parseFakeSession(raw)
		assert.ErrorIs(t, err, errInvalidFakeSession, raw)
	}
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func configDir(home string) string {
	return filepath.Join(home, ".config", "volmix")
}

func writeGame(home, dir, exe string) error {
	gameDir := filepath.Join(home, "steam", "steamapps", "common", dir)
	if err := os.MkdirAll(gameDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(gameDir, exe), nil, 0o644)
}

func writeConfigFixture(home string) error {
	if err := os.MkdirAll(configDir(home), 0o755); err != nil {
		return err
	}
	if err := writeGame(home, "Hades", "Hades.exe"); err != nil {
		return err
	}

	library, err := json.Marshal(filepath.Join(home, "steam"))
	if err != nil {
		return err
	}

	config := `{
    "button_count": 4,
    "auto_fill": true,
    "steam_library_folders": [` + string(library) + `],
    "controls": [
        {"name": "Master", "master": true},
        {"name": "Chat", "target_applications": ["discord"]},
        {"name": "Game", "target_applications": ["<steamgame>"]}
    ]
}`

	return os.WriteFile(filepath.Join(configDir(home), "conf.json"), []byte(config), 0o644)
}
