package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

// DirectoryScanOptions configures a SecureDirectoryScanner.
type DirectoryScanOptions struct {
	// SkipUnreadableDirs skips directories that cannot be opened instead of
	// failing the whole scan.
	SkipUnreadableDirs bool

	// MaxDepth bounds recursion. The scan root is depth 1.
	MaxDepth int

	// IncludeHidden includes entries whose name starts with '.'.
	IncludeHidden bool

	// SkipPatterns are directory names (not paths) that are never entered.
	SkipPatterns []string

	// FileFilter selects files by base name. Nil includes every file.
	FileFilter func(filename string) bool
}

// FileInfo describes one file found by a scan.
type FileInfo struct {
	// Name is the base name.
	Name string

	// Path is relative to the scan root and uses the OS separator.
	Path string

	Size int64
}

// SlashPath returns Path with forward slashes.
func (f FileInfo) SlashPath() string {
	return filepath.ToSlash(f.Path)
}

// SecureDirectoryScanner walks a directory tree without leaving it. Reads go
// through an os.Root, and symlinked directories that resolve outside the
// root are skipped.
type SecureDirectoryScanner struct {
	root     *os.Root
	opts     *DirectoryScanOptions
	scanRoot string
	visited  map[string]bool
	results  []FileInfo
}

// NewDirectoryScanner opens scanPath for scanning. A nil opts uses
// DefaultScanOptions. The caller must Close the scanner.
func NewDirectoryScanner(scanPath string, opts *DirectoryScanOptions) (*SecureDirectoryScanner, error) {
	if opts == nil {
		opts = DefaultScanOptions()
	}
	if strings.TrimSpace(scanPath) == "" {
		return nil, fmt.Errorf("scan path cannot be empty")
	}

	absPath, err := filepath.Abs(scanPath)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve scan path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("cannot access scan path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan path is not a directory: %s", absPath)
	}

	root, err := os.OpenRoot(absPath)
	if err != nil {
		return nil, fmt.Errorf("cannot create secure scan root: %w", err)
	}

	return &SecureDirectoryScanner{
		root:     root,
		opts:     opts,
		scanRoot: absPath,
	}, nil
}

// DefaultScanOptions skips dependency and build output directories and
// includes hidden entries.
func DefaultScanOptions() *DirectoryScanOptions {
	return &DirectoryScanOptions{
		SkipUnreadableDirs: true,
		MaxDepth:           20,
		IncludeHidden:      true,
		SkipPatterns:       DefaultSkipPatterns(),
	}
}

// DefaultSkipPatterns lists dependency, VCS and build directory names.
func DefaultSkipPatterns() []string {
	return []string{
		"node_modules",
		".git",
		"vendor",
		"target",
		"build",
		"dist",
		".next",
		".cache",
		"__pycache__",
	}
}

// Close releases the scanner's root handle.
func (s *SecureDirectoryScanner) Close() error {
	if s.root == nil {
		return nil
	}
	err := s.root.Close()
	s.root = nil
	return err
}

// ScanDirectory walks the tree and returns matching files ordered by their
// slash-separated relative path, independent of directory listing order.
func (s *SecureDirectoryScanner) ScanDirectory() ([]FileInfo, error) {
	if s.root == nil {
		return nil, fmt.Errorf("scanner has been closed")
	}

	s.results = nil
	s.visited = make(map[string]bool)

	if err := s.scanRecursive(".", 1); err != nil {
		return nil, fmt.Errorf("directory scan failed: %w", err)
	}

	sort.Slice(s.results, func(i, j int) bool {
		return s.results[i].SlashPath() < s.results[j].SlashPath()
	})

	out := make([]FileInfo, len(s.results))
	copy(out, s.results)
	return out, nil
}

func (s *SecureDirectoryScanner) scanRecursive(relativePath string, depth int) error {
	if depth > s.opts.MaxDepth {
		return nil
	}

	cleanPath := filepath.Clean(relativePath)
	if s.visited[cleanPath] {
		return nil
	}
	s.visited[cleanPath] = true

	if s.shouldSkipDirectory(filepath.Base(cleanPath)) {
		return nil
	}

	dir, err := s.root.Open(cleanPath)
	if err != nil {
		if s.opts.SkipUnreadableDirs {
			return nil
		}
		return fmt.Errorf("failed to open directory %s: %w", cleanPath, err)
	}
	defer dir.Close()

	entries, err := dir.ReadDir(-1)
	if err != nil {
		if s.opts.SkipUnreadableDirs {
			return nil
		}
		return fmt.Errorf("failed to read directory %s: %w", cleanPath, err)
	}

	for _, entry := range entries {
		entryPath := filepath.Join(cleanPath, entry.Name())
		fullPath := filepath.Join(s.scanRoot, entryPath)

		isDir := entry.IsDir()
		if entry.Type()&os.ModeSymlink != 0 {
			target, err := os.Stat(fullPath)
			if err != nil {
				continue
			}
			if err := ValidateFileInDirectory(fullPath, s.scanRoot); err != nil {
				continue
			}
			isDir = target.IsDir()
		}

		if isDir {
			if err := s.scanRecursive(entryPath, depth+1); err != nil {
				return err
			}
			continue
		}

		if !s.shouldIncludeFile(entry.Name()) {
			continue
		}
		info, err := s.root.Stat(entryPath)
		if err != nil {
			if s.opts.SkipUnreadableDirs {
				continue
			}
			return fmt.Errorf("failed to get file info for %s: %w", entryPath, err)
		}
		s.results = append(s.results, FileInfo{
			Name: entry.Name(),
			Path: entryPath,
			Size: info.Size(),
		})
	}

	return nil
}

func (s *SecureDirectoryScanner) shouldSkipDirectory(dirName string) bool {
	if dirName == "." || dirName == ".." {
		return false
	}
	if !s.opts.IncludeHidden && strings.HasPrefix(dirName, ".") {
		return true
	}
	return slices.Contains(s.opts.SkipPatterns, dirName)
}

func (s *SecureDirectoryScanner) shouldIncludeFile(fileName string) bool {
	if !s.opts.IncludeHidden && strings.HasPrefix(fileName, ".") {
		return false
	}
	if s.opts.FileFilter != nil {
		return s.opts.FileFilter(fileName)
	}
	return true
}

// HasExtension returns a FileFilter accepting names ending in ext exactly;
// "notes.MD" does not match ".md".
func HasExtension(ext string) func(string) bool {
	return func(name string) bool {
		return strings.HasSuffix(name, ext)
	}
}
