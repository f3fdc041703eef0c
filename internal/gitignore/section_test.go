package gitignore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ruler/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, initial *string) (*Manager, string) {
	t.Helper()
	root := t.TempDir()
	logger, _ := logging.NewTestLogger()
	if initial != nil {
		require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(*initial), 0644))
	}
	return NewManager(root, logger), root
}

func readIgnore(t *testing.T, m *Manager) string {
	t.Helper()
	data, err := os.ReadFile(m.Path())
	require.NoError(t, err)
	return string(data)
}

func abs(root string, rel ...string) []string {
	out := make([]string, len(rel))
	for i, r := range rel {
		out[i] = filepath.Join(root, filepath.FromSlash(r))
	}
	return out
}

func text(s string) *string { return &s }

func TestUpdate_CreatesFile(t *testing.T) {
	m, root := newManager(t, nil)

	entries, err := m.Update(abs(root, "CLAUDE.md", ".github/copilot-instructions.md", "CLAUDE.md"))
	require.NoError(t, err)
	assert.Equal(t, []string{".github/copilot-instructions.md", "CLAUDE.md"}, entries)

	want := StartMarker + "\n.github/copilot-instructions.md\nCLAUDE.md\n" + EndMarker + "\n"
	assert.Equal(t, want, readIgnore(t, m))
}

func TestUpdate_AppendsAfterExistingContent(t *testing.T) {
	m, root := newManager(t, text("node_modules/\n*.log\n\n\n"))

	_, err := m.Update(abs(root, "AGENTS.md"))
	require.NoError(t, err)

	want := "node_modules/\n*.log\n\n" + StartMarker + "\nAGENTS.md\n" + EndMarker + "\n"
	assert.Equal(t, want, readIgnore(t, m))
}

func TestUpdate_KeepsEscapedTrailingSpace(t *testing.T) {
	m, root := newManager(t, text("foo\\ \n  \n"))

	_, err := m.Update(abs(root, "AGENTS.md"))
	require.NoError(t, err)

	want := "foo\\ \n\n" + StartMarker + "\nAGENTS.md\n" + EndMarker + "\n"
	assert.Equal(t, want, readIgnore(t, m))
}

func TestUpdate_Idempotent(t *testing.T) {
	m, root := newManager(t, text("dist/\n"))
	paths := abs(root, "b.md", "a.md")

	_, err := m.Update(paths)
	require.NoError(t, err)
	first := readIgnore(t, m)

	_, err = m.Update(paths)
	require.NoError(t, err)
	assert.Equal(t, first, readIgnore(t, m))
	assert.Equal(t, 1, strings.Count(first, StartMarker))
}

func TestUpdate_ShrinksAndKeepsSurroundingLines(t *testing.T) {
	initial := "dist/\n\n" + StartMarker + "\nAGENTS.md\nCLAUDE.md\n" + EndMarker + "\n\n# user rules\n*.tmp\n"
	m, root := newManager(t, &initial)

	_, err := m.Update(abs(root, "CLAUDE.md"))
	require.NoError(t, err)

	want := "dist/\n\n" + StartMarker + "\nCLAUDE.md\n" + EndMarker + "\n\n# user rules\n*.tmp\n"
	assert.Equal(t, want, readIgnore(t, m))
}

func TestUpdate_LoneStartMarkerAppends(t *testing.T) {
	initial := "keep-me\n" + StartMarker + "\nold-entry\n"
	m, root := newManager(t, &initial)
	logger, buf := logging.NewTestLogger()
	m.logger = logger

	_, err := m.Update(abs(root, "CLAUDE.md"))
	require.NoError(t, err)

	got := readIgnore(t, m)
	assert.True(t, strings.HasPrefix(got, initial), "existing lines are kept")
	assert.True(t, strings.HasSuffix(got, "\n\n"+StartMarker+"\nCLAUDE.md\n"+EndMarker+"\n"))
	assert.Contains(t, buf.String(), "Malformed")
}

func TestUpdate_StrayStartBeforeBlock(t *testing.T) {
	initial := StartMarker + "\nuser-line\n" + StartMarker + "\nold\n" + EndMarker + "\n"
	m, root := newManager(t, &initial)

	_, err := m.Update(abs(root, "new.md"))
	require.NoError(t, err)

	want := StartMarker + "\nuser-line\n" + StartMarker + "\nnew.md\n" + EndMarker + "\n"
	assert.Equal(t, want, readIgnore(t, m))
}

func TestUpdate_EmptyIsNoop(t *testing.T) {
	m, root := newManager(t, nil)

	entries, err := m.Update(nil)
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = m.Update([]string{filepath.Join(filepath.Dir(root), "outside.md")})
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = os.Stat(m.Path())
	assert.True(t, os.IsNotExist(err), ".gitignore should not be created")
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		want    string
		removed bool
	}{
		{
			name:    "block in the middle",
			initial: "dist/\n\n" + StartMarker + "\nCLAUDE.md\n" + EndMarker + "\n\n*.tmp\n",
			want:    "dist/\n*.tmp\n",
			removed: true,
		},
		{
			name:    "block at the end",
			initial: "dist/\n\n" + StartMarker + "\nCLAUDE.md\n" + EndMarker + "\n",
			want:    "dist/\n",
			removed: true,
		},
		{
			name:    "block only",
			initial: StartMarker + "\nCLAUDE.md\n" + EndMarker + "\n",
			want:    "",
			removed: true,
		},
		{
			name:    "no block",
			initial: "dist/\n",
			want:    "dist/\n",
		},
		{
			name:    "lone end marker",
			initial: "dist/\n" + EndMarker + "\n",
			want:    "dist/\n" + EndMarker + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newManager(t, &tt.initial)

			removed, err := m.Remove()
			require.NoError(t, err)
			assert.Equal(t, tt.removed, removed)
			assert.Equal(t, tt.want, readIgnore(t, m))
		})
	}
}

func TestRemove_RestoresPreManagedShape(t *testing.T) {
	original := "node_modules/\n*.log\n"
	m, root := newManager(t, &original)

	_, err := m.Update(abs(root, "CLAUDE.md"))
	require.NoError(t, err)
	_, err = m.Remove()
	require.NoError(t, err)

	assert.Equal(t, original, readIgnore(t, m))
}

func TestRemove_MissingFile(t *testing.T) {
	m, _ := newManager(t, nil)

	removed, err := m.Remove()
	require.NoError(t, err)
	assert.False(t, removed)
}
