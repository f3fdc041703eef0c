// Package rules collects the markdown fragments under a rules directory and
// concatenates them into the document every agent receives.
package rules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ruler/internal/logging"
	"ruler/pkg/fileops"
)

// ErrRulesDirNotFound is returned when the rules directory does not exist.
var ErrRulesDirNotFound = errors.New("rules directory not found")

// Fragment is one rule file. Source is its forward-slash path relative to
// the project root; Content is trimmed of surrounding whitespace.
type Fragment struct {
	Source  string
	Content string
}

// Loader reads fragments from a rules directory.
type Loader struct {
	projectRoot string
	rulesDir    string
	logger      *logging.AppLogger
	maxSize     int64
}

func NewLoader(projectRoot, rulesDir string, logger *logging.AppLogger) *Loader {
	if logger == nil {
		logger = logging.GetDefault()
	}
	return &Loader{
		projectRoot: projectRoot,
		rulesDir:    rulesDir,
		logger:      logger,
		maxSize:     fileops.MaxFragmentSize,
	}
}

// scanOptions matches markdown files at any depth, skipping hidden entries
// and dependency directories.
func scanOptions() *fileops.DirectoryScanOptions {
	return &fileops.DirectoryScanOptions{
		SkipUnreadableDirs: true,
		MaxDepth:           fileops.DefaultScanOptions().MaxDepth,
		IncludeHidden:      false,
		SkipPatterns:       []string{"node_modules"},
		FileFilter:         fileops.HasExtension(".md"),
	}
}

// Load returns every fragment in path order. Files that cannot be read or
// exceed the size limit are skipped with a warning.
func (l *Loader) Load() ([]Fragment, error) {
	info, err := os.Stat(l.rulesDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s (run 'ruler init' first)", ErrRulesDirNotFound, l.rulesDir)
	}

	scanner, err := fileops.NewDirectoryScanner(l.rulesDir, scanOptions())
	if err != nil {
		return nil, fmt.Errorf("open rules directory: %w", err)
	}
	defer scanner.Close()

	files, err := scanner.ScanDirectory()
	if err != nil {
		return nil, fmt.Errorf("scan rules directory: %w", err)
	}
	if len(files) == 0 {
		l.logger.Warn("No markdown rule files found", "dir", l.rulesDir)
		return nil, nil
	}

	fragments := make([]Fragment, 0, len(files))
	for _, f := range files {
		path := filepath.Join(l.rulesDir, f.Path)
		frag, err := l.read(path)
		if err != nil {
			l.logger.Warn("Skipping rule file", "path", path, "error", err)
			continue
		}
		fragments = append(fragments, frag)
	}

	l.logger.Debug("Loaded rule fragments", "count", len(fragments), "dir", l.rulesDir)
	if l.logger.IsDebug() {
		for _, frag := range fragments {
			l.logger.Debug("Rule fragment", "source", frag.Source, "bytes", len(frag.Content))
		}
	}
	return fragments, nil
}

func (l *Loader) read(path string) (Fragment, error) {
	if err := fileops.ValidateFileInDirectory(path, l.rulesDir); err != nil {
		return Fragment{}, err
	}
	if err := fileops.ValidateFileSizeLimit(path, l.maxSize); err != nil {
		return Fragment{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Fragment{}, err
	}

	source, ok := fileops.RelativeSlashPath(l.projectRoot, path)
	if !ok {
		source = filepath.ToSlash(path)
	}
	return Fragment{Source: source, Content: strings.TrimSpace(string(data))}, nil
}

// Header is the line that introduces a fragment in the aggregated document.
func Header(source string) string {
	return "--- Source: " + source + " ---"
}

// Concatenate joins fragments into one document. Each fragment is preceded by
// its Header and a blank line; fragments are separated by a blank line. No
// fragments yields "".
func Concatenate(fragments []Fragment) string {
	if len(fragments) == 0 {
		return ""
	}
	sections := make([]string, len(fragments))
	for i, f := range fragments {
		sections[i] = Header(f.Source) + "\n\n" + f.Content
	}
	return strings.Join(sections, "\n\n")
}

// Aggregate loads the fragments under rulesDir and concatenates them.
func Aggregate(projectRoot, rulesDir string, logger *logging.AppLogger) (string, []Fragment, error) {
	fragments, err := NewLoader(projectRoot, rulesDir, logger).Load()
	if err != nil {
		return "", nil, err
	}
	return Concatenate(fragments), fragments, nil
}
