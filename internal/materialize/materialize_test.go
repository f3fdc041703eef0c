package materialize

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"ruler/internal/agents"
	"ruler/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func agent(t *testing.T, name string) agents.Definition {
	t.Helper()
	def, ok := agents.Lookup(name)
	require.True(t, ok)
	return def
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestMaterialize_InstructionsOnly(t *testing.T) {
	logger, _ := logging.NewTestLogger()
	root := t.TempDir()
	target := filepath.Join(root, ".github", "copilot-instructions.md")

	res := New(logger).Materialize(agent(t, "copilot"), target, "", "rules")

	require.NoError(t, res.Err)
	assert.False(t, res.Failed())
	assert.Equal(t, []string{target}, res.Paths)
	assert.Equal(t, "rules", read(t, target))
}

func TestMaterialize_WithSecondaryConfig(t *testing.T) {
	logger, _ := logging.NewTestLogger()
	root := t.TempDir()
	instructions := filepath.Join(root, "ruler_aider_instructions.md")
	config := filepath.Join(root, ".aider.conf.yml")

	res := New(logger).Materialize(agent(t, "aider"), instructions, config, "rules")

	require.NoError(t, res.Err)
	assert.Equal(t, []string{instructions, config}, res.Paths)
	assert.Contains(t, read(t, config), "model: gpt-4")
}

func TestMaterialize_ConfigPathIgnoredWithoutSupport(t *testing.T) {
	logger, _ := logging.NewTestLogger()
	root := t.TempDir()
	config := filepath.Join(root, "claude.yml")

	res := New(logger).Materialize(agent(t, "claude"), filepath.Join(root, "CLAUDE.md"), config, "rules")

	require.NoError(t, res.Err)
	assert.Len(t, res.Paths, 1)
	_, err := os.Stat(config)
	assert.True(t, os.IsNotExist(err))
}

func TestMaterialize_BacksUpExisting(t *testing.T) {
	logger, _ := logging.NewTestLogger()
	root := t.TempDir()
	target := filepath.Join(root, "CLAUDE.md")
	require.NoError(t, os.WriteFile(target, []byte("by hand"), 0644))

	res := New(logger).Materialize(agent(t, "claude"), target, "", "generated")

	require.NoError(t, res.Err)
	assert.Equal(t, "generated", read(t, target))
	assert.Equal(t, "by hand", read(t, target+".bak"))
}

func TestMaterialize_ConfigFailureKeepsInstructionsPath(t *testing.T) {
	logger, _ := logging.NewTestLogger()
	root := t.TempDir()
	blocker := filepath.Join(root, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("file"), 0644))
	instructions := filepath.Join(root, "repo.md")

	res := New(logger).Materialize(agent(t, "openhands"), instructions, filepath.Join(blocker, "config.toml"), "rules")

	require.Error(t, res.Err)
	assert.True(t, res.Failed())
	assert.Equal(t, []string{instructions}, res.Paths)
	assert.Equal(t, "rules", read(t, instructions))
}

func TestMaterialize_InstructionsFailure(t *testing.T) {
	logger, _ := logging.NewTestLogger()
	root := t.TempDir()
	blocker := filepath.Join(root, ".cursor")
	require.NoError(t, os.WriteFile(blocker, []byte("file"), 0644))

	res := New(logger).Materialize(agent(t, "cursor"), filepath.Join(blocker, "rules", "x.md"), "", "rules")

	require.Error(t, res.Err)
	assert.Empty(t, res.Paths)
	assert.Contains(t, res.Err.Error(), "Cursor")
}

func TestMaterialize_WritesThroughSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require elevated privileges on windows")
	}
	logger, _ := logging.NewTestLogger()
	root := t.TempDir()
	shared := filepath.Join(root, "AGENTS.md")
	require.NoError(t, os.WriteFile(shared, []byte("old"), 0644))
	link := filepath.Join(root, "CLAUDE.md")
	require.NoError(t, os.Symlink("AGENTS.md", link))

	res := New(logger).Materialize(agent(t, "claude"), link, "", "generated")

	require.NoError(t, res.Err)
	info, err := os.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "CLAUDE.md should remain a symlink")
	assert.Equal(t, "generated", read(t, shared))
	assert.Equal(t, "old", read(t, link+".bak"))
}

func TestMaterialize_KeepsConfigMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	logger, _ := logging.NewTestLogger()
	root := t.TempDir()
	config := filepath.Join(root, ".aider.conf.yml")
	require.NoError(t, os.WriteFile(config, []byte("openai-api-key: secret\n"), 0600))
	require.NoError(t, os.Chmod(config, 0600))

	res := New(logger).Materialize(agent(t, "aider"), filepath.Join(root, "ruler_aider_instructions.md"), config, "rules")

	require.NoError(t, res.Err)
	for _, path := range []string{config, config + ".bak"} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), path)
	}
	assert.Contains(t, read(t, config), "model: gpt-4")
}
