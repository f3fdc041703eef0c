package gitignore

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ruler/pkg/fileops"

	"github.com/go-git/go-git/v6/plumbing/format/gitignore"
)

// Verify reports which of paths the project's root .gitignore does not
// ignore, using git's matching rules. Results are project-relative.
func Verify(projectRoot string, paths []string) ([]string, error) {
	patterns, err := readPatterns(filepath.Join(projectRoot, FileName))
	if err != nil {
		return nil, err
	}
	matcher := gitignore.NewMatcher(patterns)

	var tracked []string
	for _, p := range paths {
		rel, ok := fileops.RelativeSlashPath(projectRoot, p)
		if !ok {
			continue
		}
		if !matcher.Match(strings.Split(rel, "/"), false) {
			tracked = append(tracked, rel)
		}
	}
	return tracked, nil
}

func readPatterns(path string) ([]gitignore.Pattern, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var patterns []gitignore.Pattern
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return patterns, nil
}
