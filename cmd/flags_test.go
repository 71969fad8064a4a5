package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/kb-dk/github-cloner/internal/config"
	"github.com/kb-dk/github-cloner/internal/model"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()

	cmd := &cobra.Command{Use: "test"}
	addMirrorFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))

	return cmd
}

func TestApplyFlags_OnlyChangedFlagsOverride(t *testing.T) {
	cfg := config.Default()
	cfg.PerPage = 50
	cfg.Users = []string{"from-env"}

	cmd := newFlagCommand(t, "--org", "kb-dk", "--org", "other", "--parallel", "4")
	require.NoError(t, applyFlags(cmd.Flags(), &cfg))

	assert.Equal(t, []string{"kb-dk", "other"}, cfg.Orgs)
	assert.Equal(t, []string{"from-env"}, cfg.Users)
	assert.Equal(t, 4, cfg.Parallel)
	assert.Equal(t, 50, cfg.PerPage)
}

func TestApplyFlags_AllSettings(t *testing.T) {
	dest := t.TempDir()

	cmd := newFlagCommand(t,
		"--user", "alice",
		"--kinds", "gists",
		"--dest", dest,
		"--api-url", "https://ghe.example.com/api/v3",
		"--per-page", "30",
		"--http-timeout", "5s",
		"--git-timeout", "1m",
		"--token", "t0k",
		"--no-strict-content-type",
		"--no-repoint",
		"--dry-run",
		"--journal", filepath.Join(dest, "j.sqlite"),
		"--journal-driver", "sqlite",
		"--log-level", "debug",
		"--json",
	)

	cfg := config.Default()
	require.NoError(t, applyFlags(cmd.Flags(), &cfg))

	assert.Equal(t, []string{"alice"}, cfg.Users)
	assert.Equal(t, []model.CollectionKind{model.KindGist}, cfg.Kinds)
	assert.Equal(t, dest, cfg.Dest)
	assert.Equal(t, "https://ghe.example.com/api/v3", cfg.APIURL)
	assert.Equal(t, 30, cfg.PerPage)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, time.Minute, cfg.GitTimeout)
	assert.Equal(t, "t0k", cfg.Token)
	assert.False(t, cfg.StrictContentType)
	assert.False(t, cfg.RepointRemote)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, filepath.Join(dest, "j.sqlite"), cfg.JournalFile())
	assert.Equal(t, config.DriverSQLite, cfg.JournalDriver)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.JSONLogs)
	require.NoError(t, cfg.Validate())
}

func TestApplyFlags_BadKind(t *testing.T) {
	cmd := newFlagCommand(t, "--kinds", "repos,wikis")

	cfg := config.Default()
	err := applyFlags(cmd.Flags(), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--kinds")
}

func TestExpandPath(t *testing.T) {
	abs, err := expandPath("some/dir")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))

	_, err = expandPath("")
	require.Error(t, err)
}
