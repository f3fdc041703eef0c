package fileops

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// BackupSuffix is appended to a file path to name its one-generation backup.
const BackupSuffix = ".bak"

// defaultFileMode is the mode of files ruler creates. Existing files keep
// their own mode.
const defaultFileMode os.FileMode = 0644

// AtomicCopy copies srcPath to destPath through a temporary file in the
// destination directory followed by a rename, so destPath either holds the
// complete copy or is left as it was. The copy carries the permission bits of
// srcPath.
//
// Both paths should be validated by the caller. An existing destPath is
// replaced without warning.
func AtomicCopy(srcPath, destPath string) error {
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file: %w", err)
	}
	return atomicWriteFrom(destPath, srcFile, info.Mode().Perm())
}

// AtomicWrite writes data to path via a temporary sibling file and rename.
// A symlink at path is followed and the file it points to is replaced; an
// existing file keeps its permission bits.
func AtomicWrite(path string, data []byte) error {
	target, mode, err := resolveTarget(path)
	if err != nil {
		return err
	}
	return atomicWriteFrom(target, bytes.NewReader(data), mode)
}

// resolveTarget returns the file a write to path lands in and the mode the new
// content gets. A dangling symlink is replaced like a missing file.
func resolveTarget(path string) (string, os.FileMode, error) {
	target := path
	resolved, err := filepath.EvalSymlinks(path)
	switch {
	case err == nil:
		target = resolved
	case !os.IsNotExist(err):
		return "", 0, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	info, err := os.Stat(target)
	switch {
	case err == nil:
		return target, info.Mode().Perm(), nil
	case os.IsNotExist(err):
		return target, defaultFileMode, nil
	default:
		return "", 0, fmt.Errorf("cannot access %s: %w", target, err)
	}
}

func atomicWriteFrom(destPath string, r io.Reader, mode os.FileMode) error {
	tempFile, err := os.CreateTemp(filepath.Dir(destPath), "."+filepath.Base(destPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempPath := tempFile.Name()

	var done bool
	defer func() {
		tempFile.Close()
		if !done {
			os.Remove(tempPath)
		}
	}()

	if _, err := io.Copy(tempFile, r); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := tempFile.Chmod(mode); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Rename(tempPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	done = true
	return nil
}

// WriteResult describes what WriteWithBackup did to the filesystem.
type WriteResult struct {
	Path       string
	BackupPath string // empty when there was nothing to back up
}

// WriteWithBackup replaces the content of path with data.
//
// Parent directories are created as needed. If path already holds a regular
// file it is first copied to path+BackupSuffix, replacing any older backup;
// the backup keeps the file's permission bits. A symlink at path is written
// through, so the link survives and its target receives data.
//
// The snapshot always happens before the write, and it is kept when the write
// fails. A failed backup aborts the operation without touching path.
func WriteWithBackup(path string, data []byte) (WriteResult, error) {
	res := WriteResult{Path: path}

	if err := EnsureDirectoryExists(filepath.Dir(path)); err != nil {
		return res, err
	}

	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return res, fmt.Errorf("cannot write %s: path is a directory", path)
	case err == nil:
		backup := path + BackupSuffix
		if err := AtomicCopy(path, backup); err != nil {
			return res, fmt.Errorf("failed to back up %s: %w", path, err)
		}
		res.BackupPath = backup
	case !os.IsNotExist(err):
		return res, fmt.Errorf("cannot access %s: %w", path, err)
	}

	if err := AtomicWrite(path, data); err != nil {
		return res, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return res, nil
}

// EnsureDirectoryExists creates path and any missing parents with mode 0755.
// It is safe to call on an existing directory.
func EnsureDirectoryExists(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// FileExists reports whether path exists and is not a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
