package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTemp(t, "scenario: create-and-stop\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, int64(1), cfg.Seed)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadRejectsMissingScenario(t *testing.T) {
	path := writeTemp(t, "seed: 5\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	path := writeTemp(t, "scenario: x\nlog_level: verbose\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsNegativeMaxTicks(t *testing.T) {
	path := writeTemp(t, "scenario: x\nmax_ticks: -1\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadParsesParamsAndTimeout(t *testing.T) {
	path := writeTemp(t, "scenario: send-receive\ntick_timeout: 2s\nparams:\n  capacity: 4\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 4, cfg.Params["capacity"])
	require.Equal(t, 2e9, float64(cfg.Timeout()))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
