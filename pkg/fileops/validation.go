package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// MaxFragmentSize is the largest file ruler reads as rule input.
const MaxFragmentSize int64 = 10 * 1024 * 1024

// ValidateFileSizeLimit returns an error when filePath is missing, is a
// directory, or is larger than maxSize bytes.
func ValidateFileSizeLimit(filePath string, maxSize int64) error {
	if maxSize <= 0 {
		return fmt.Errorf("invalid size limit: %d", maxSize)
	}

	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", filepath.Base(filePath))
		}
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}
	if info.Size() > maxSize {
		return fmt.Errorf("file size %d bytes exceeds limit %d bytes", info.Size(), maxSize)
	}
	return nil
}

// ValidateFileInDirectory checks that path, after resolving symlinks, lies
// inside baseDir. path must exist; it may be a file or a directory.
func ValidateFileInDirectory(path, baseDir string) error {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("cannot resolve base directory: %w", err)
	}
	if resolvedBase, err := filepath.EvalSymlinks(absBase); err == nil {
		absBase = resolvedBase
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("cannot resolve path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("path does not exist: %s", filepath.Base(path))
		}
		return fmt.Errorf("cannot resolve symlink: %w", err)
	}

	if _, ok := relativeInside(absBase, resolved); !ok {
		return fmt.Errorf("path resolves outside base directory: %s", path)
	}
	return nil
}

// IsSymlink reports whether path is a symbolic link.
func IsSymlink(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat path: %w", err)
	}
	return info.Mode()&os.ModeSymlink != 0, nil
}

// RelativeSlashPath returns path relative to root with forward slashes.
// ok is false when path is not inside root.
func RelativeSlashPath(root, path string) (rel string, ok bool) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	return relativeInside(absRoot, absPath)
}

func relativeInside(base, path string) (string, bool) {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// SanitizeIdentifier lowercases s and collapses every run of characters
// outside [a-z0-9] into a single underscore, trimming underscores at either
// end. The result is cut to maxLength bytes. An error is returned when
// nothing usable remains.
func SanitizeIdentifier(s string, maxLength int) (string, error) {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}

	out := b.String()
	if maxLength > 0 && len(out) > maxLength {
		out = strings.TrimRight(out[:maxLength], "_")
	}
	if out == "" {
		return "", fmt.Errorf("identifier %q has no usable characters", s)
	}
	return out, nil
}
