// Package gitignore maintains the block of generated paths ruler keeps in a
// project's .gitignore.
package gitignore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"ruler/internal/logging"
	"ruler/pkg/fileops"
)

const (
	StartMarker = "# START Ruler Generated Files"
	EndMarker   = "# END Ruler Generated Files"
	FileName    = ".gitignore"
)

type Manager struct {
	projectRoot string
	path        string
	logger      *logging.AppLogger
}

func NewManager(projectRoot string, logger *logging.AppLogger) *Manager {
	if logger == nil {
		logger = logging.GetDefault()
	}
	return &Manager{
		projectRoot: projectRoot,
		path:        filepath.Join(projectRoot, FileName),
		logger:      logger,
	}
}

// Path returns the managed .gitignore file.
func (m *Manager) Path() string {
	return m.path
}

// Entries converts absolute paths to the sorted, deduplicated, forward-slash
// project-relative lines written inside the block. Paths outside the project
// root are dropped.
func (m *Manager) Entries(paths []string) []string {
	entries := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, ok := fileops.RelativeSlashPath(m.projectRoot, p)
		if !ok {
			m.logger.Debug("Not ignoring path outside project root", "path", p)
			continue
		}
		entries = append(entries, rel)
	}
	slices.Sort(entries)
	return slices.Compact(entries)
}

// Update rewrites the managed block to list exactly paths. An existing block
// is replaced in place; otherwise a new block is appended. Nothing is written
// when paths is empty.
func (m *Manager) Update(paths []string) ([]string, error) {
	entries := m.Entries(paths)
	if len(entries) == 0 {
		return nil, nil
	}

	content, err := m.read()
	if err != nil {
		return nil, err
	}

	block := make([]string, 0, len(entries)+2)
	block = append(block, StartMarker)
	block = append(block, entries...)
	block = append(block, EndMarker)

	lines := strings.Split(content, "\n")
	start, end, found := findBlock(lines)

	var updated string
	switch {
	case found:
		out := make([]string, 0, len(lines)-(end-start+1)+len(block))
		out = append(out, lines[:start]...)
		out = append(out, block...)
		out = append(out, lines[end+1:]...)
		updated = strings.Join(out, "\n")
	case hasMarker(lines):
		m.logger.Warn("Malformed Ruler section in .gitignore, appending a new one", "path", m.path)
		updated = appendBlock(content, block)
	default:
		updated = appendBlock(content, block)
	}

	if updated == content {
		m.logger.Debug(".gitignore already up to date", "path", m.path)
		return entries, nil
	}
	if err := fileops.AtomicWrite(m.path, []byte(updated)); err != nil {
		return nil, fmt.Errorf("write %s: %w", m.path, err)
	}
	m.logger.Debug("Updated .gitignore", "path", m.path, "entries", len(entries))
	return entries, nil
}

// Remove deletes the managed block and any blank lines left around it. A
// missing file or a file without a complete block is left unchanged.
func (m *Manager) Remove() (bool, error) {
	content, err := m.read()
	if err != nil {
		return false, err
	}
	lines := strings.Split(content, "\n")
	start, end, found := findBlock(lines)
	if !found {
		return false, nil
	}

	before := trimTrailingBlank(lines[:start])
	after := trimLeadingBlank(lines[end+1:])
	updated := strings.Join(append(slices.Clone(before), after...), "\n")
	if updated != "" && !strings.HasSuffix(updated, "\n") {
		updated += "\n"
	}

	if err := fileops.AtomicWrite(m.path, []byte(updated)); err != nil {
		return false, fmt.Errorf("write %s: %w", m.path, err)
	}
	m.logger.Debug("Removed Ruler section from .gitignore", "path", m.path)
	return true, nil
}

func (m *Manager) read() (string, error) {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", m.path, err)
	}
	return string(data), nil
}

// findBlock pairs the first end marker with the closest start marker before
// it, so a stray start marker earlier in the file is never treated as the
// opening of the block.
func findBlock(lines []string) (start, end int, found bool) {
	start = -1
	for i, line := range lines {
		switch strings.TrimSpace(line) {
		case StartMarker:
			start = i
		case EndMarker:
			if start >= 0 {
				return start, i, true
			}
		}
	}
	return -1, -1, false
}

func hasMarker(lines []string) bool {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == StartMarker || trimmed == EndMarker {
			return true
		}
	}
	return false
}

func appendBlock(content string, block []string) string {
	// Drop trailing blank lines only; "foo\ " ignores a file named "foo ".
	lines := trimTrailingBlank(strings.Split(strings.TrimRight(content, "\r\n"), "\n"))
	trimmed := strings.Join(lines, "\n")
	sep := ""
	if trimmed != "" {
		sep = "\n\n"
	}
	return trimmed + sep + strings.Join(block, "\n") + "\n"
}

func trimTrailingBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func trimLeadingBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	return lines
}
