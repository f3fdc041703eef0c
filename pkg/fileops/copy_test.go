package fileops

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// Test helpers

func createTestFile(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
	return path
}

func readFileContent(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func TestAtomicCopy(t *testing.T) {
	dir := t.TempDir()

	t.Run("copies content", func(t *testing.T) {
		src := createTestFile(t, dir, "source.txt", "hello")
		dst := filepath.Join(dir, "dest.txt")

		if err := AtomicCopy(src, dst); err != nil {
			t.Fatalf("AtomicCopy failed: %v", err)
		}
		if got := readFileContent(t, dst); got != "hello" {
			t.Errorf("expected %q, got %q", "hello", got)
		}
	})

	t.Run("replaces existing destination", func(t *testing.T) {
		src := createTestFile(t, dir, "new.txt", "new")
		dst := createTestFile(t, dir, "old.txt", "old content that is longer")

		if err := AtomicCopy(src, dst); err != nil {
			t.Fatalf("AtomicCopy failed: %v", err)
		}
		if got := readFileContent(t, dst); got != "new" {
			t.Errorf("expected %q, got %q", "new", got)
		}
	})

	t.Run("missing source leaves no temp files", func(t *testing.T) {
		sub := t.TempDir()
		err := AtomicCopy(filepath.Join(sub, "missing"), filepath.Join(sub, "dest"))
		if err == nil {
			t.Fatal("expected error for missing source")
		}
		entries, _ := os.ReadDir(sub)
		if len(entries) != 0 {
			t.Errorf("expected empty directory, found %d entries", len(entries))
		}
	})
}

func TestWriteWithBackup_NewFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "deeper", "out.md")

	res, err := WriteWithBackup(target, []byte("content"))
	if err != nil {
		t.Fatalf("WriteWithBackup failed: %v", err)
	}
	if res.BackupPath != "" {
		t.Errorf("expected no backup for new file, got %s", res.BackupPath)
	}
	if got := readFileContent(t, target); got != "content" {
		t.Errorf("expected %q, got %q", "content", got)
	}
	if _, err := os.Stat(target + BackupSuffix); !os.IsNotExist(err) {
		t.Error("backup file should not exist for a new target")
	}
}

func TestWriteWithBackup_ExistingFileIsSnapshotted(t *testing.T) {
	dir := t.TempDir()
	target := createTestFile(t, dir, "CLAUDE.md", "hand written")

	res, err := WriteWithBackup(target, []byte("generated"))
	if err != nil {
		t.Fatalf("WriteWithBackup failed: %v", err)
	}
	if res.BackupPath != target+BackupSuffix {
		t.Errorf("expected backup path %s, got %s", target+BackupSuffix, res.BackupPath)
	}
	if got := readFileContent(t, res.BackupPath); got != "hand written" {
		t.Errorf("backup should hold previous content, got %q", got)
	}
	if got := readFileContent(t, target); got != "generated" {
		t.Errorf("target should hold new content, got %q", got)
	}
}

func TestWriteWithBackup_BackupIsSingleGeneration(t *testing.T) {
	dir := t.TempDir()
	target := createTestFile(t, dir, "AGENTS.md", "v1")

	for _, content := range []string{"v2", "v3"} {
		if _, err := WriteWithBackup(target, []byte(content)); err != nil {
			t.Fatalf("WriteWithBackup(%s) failed: %v", content, err)
		}
	}

	if got := readFileContent(t, target+BackupSuffix); got != "v2" {
		t.Errorf("backup should hold the previous generation only, got %q", got)
	}
}

func TestWriteWithBackup_DirectoryTarget(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "is-a-dir")
	if err := os.Mkdir(target, 0755); err != nil {
		t.Fatal(err)
	}

	_, err := WriteWithBackup(target, []byte("x"))
	if err == nil || !strings.Contains(err.Error(), "is a directory") {
		t.Errorf("expected directory error, got %v", err)
	}
}

func TestWriteWithBackup_ParentIsFile(t *testing.T) {
	dir := t.TempDir()
	createTestFile(t, dir, "blocker", "not a dir")

	_, err := WriteWithBackup(filepath.Join(dir, "blocker", "out.md"), []byte("x"))
	if err == nil {
		t.Fatal("expected error when parent path is a regular file")
	}
}

func TestWriteWithBackup_FollowsSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require elevated privileges on windows")
	}
	dir := t.TempDir()
	shared := createTestFile(t, dir, "AGENTS.md", "shared")
	link := filepath.Join(dir, "CLAUDE.md")
	if err := os.Symlink("AGENTS.md", link); err != nil {
		t.Fatal(err)
	}

	res, err := WriteWithBackup(link, []byte("generated"))
	if err != nil {
		t.Fatalf("WriteWithBackup failed: %v", err)
	}

	info, err := os.Lstat(link)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Errorf("%s should still be a symlink, mode %v", link, info.Mode())
	}
	if got := readFileContent(t, shared); got != "generated" {
		t.Errorf("link target should hold new content, got %q", got)
	}
	if res.BackupPath != link+BackupSuffix {
		t.Errorf("expected backup path %s, got %s", link+BackupSuffix, res.BackupPath)
	}
	if got := readFileContent(t, res.BackupPath); got != "shared" {
		t.Errorf("backup should hold previous target content, got %q", got)
	}
}

func TestWriteWithBackup_PreservesMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	dir := t.TempDir()
	target := createTestFile(t, dir, ".aider.conf.yml", "api-key: secret")
	if err := os.Chmod(target, 0600); err != nil {
		t.Fatal(err)
	}

	res, err := WriteWithBackup(target, []byte("model: gpt-4"))
	if err != nil {
		t.Fatalf("WriteWithBackup failed: %v", err)
	}

	for _, path := range []string{target, res.BackupPath} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if got := info.Mode().Perm(); got != 0600 {
			t.Errorf("%s: expected mode 0600, got %o", path, got)
		}
	}
}

func TestWriteWithBackup_NewFileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	target := filepath.Join(t.TempDir(), "out.md")

	if _, err := WriteWithBackup(target, []byte("x")); err != nil {
		t.Fatalf("WriteWithBackup failed: %v", err)
	}
	info, err := os.Stat(target)
	if err != nil {
		t.Fatal(err)
	}
	if got := info.Mode().Perm(); got != defaultFileMode {
		t.Errorf("expected mode %o, got %o", defaultFileMode, got)
	}
}

func TestEnsureDirectoryExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "c")

	for i := 0; i < 2; i++ {
		if err := EnsureDirectoryExists(path); err != nil {
			t.Fatalf("EnsureDirectoryExists call %d failed: %v", i+1, err)
		}
	}
	if !DirExists(path) {
		t.Error("directory should exist")
	}
	if FileExists(path) {
		t.Error("FileExists should be false for a directory")
	}
}
