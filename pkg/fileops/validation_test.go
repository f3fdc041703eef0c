package fileops

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestValidateFileSizeLimit(t *testing.T) {
	dir := t.TempDir()
	small := createTestFile(t, dir, "small.md", "tiny")
	large := createTestFile(t, dir, "large.md", strings.Repeat("x", 2048))

	tests := []struct {
		name      string
		path      string
		limit     int64
		wantError string
	}{
		{"within limit", small, 1024, ""},
		{"exceeds limit", large, 1024, "exceeds limit"},
		{"missing file", filepath.Join(dir, "missing.md"), 1024, "does not exist"},
		{"directory", dir, 1024, "is a directory"},
		{"invalid limit", small, 0, "invalid size limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileSizeLimit(tt.path, tt.limit)
			if tt.wantError == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("expected error containing %q, got %v", tt.wantError, err)
			}
		})
	}
}

func TestValidateFileInDirectory(t *testing.T) {
	base := t.TempDir()
	inside := createTestFile(t, base, "sub/rule.md", "x")
	outside := createTestFile(t, t.TempDir(), "other.md", "x")

	if err := ValidateFileInDirectory(inside, base); err != nil {
		t.Errorf("file inside base should validate: %v", err)
	}
	if err := ValidateFileInDirectory(filepath.Join(base, "sub"), base); err != nil {
		t.Errorf("directory inside base should validate: %v", err)
	}
	if err := ValidateFileInDirectory(outside, base); err == nil {
		t.Error("file outside base should fail validation")
	}
	if err := ValidateFileInDirectory(filepath.Join(base, "missing.md"), base); err == nil {
		t.Error("missing file should fail validation")
	}
}

func TestValidateFileInDirectory_SymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on Windows")
	}
	base := t.TempDir()
	outside := createTestFile(t, t.TempDir(), "target.md", "x")
	link := filepath.Join(base, "link.md")
	if err := os.Symlink(outside, link); err != nil {
		t.Fatal(err)
	}

	if err := ValidateFileInDirectory(link, base); err == nil {
		t.Error("symlink resolving outside base should fail validation")
	}
	isLink, err := IsSymlink(link)
	if err != nil || !isLink {
		t.Errorf("IsSymlink(%s) = %v, %v; want true, nil", link, isLink, err)
	}
}

func TestRelativeSlashPath(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name   string
		path   string
		want   string
		wantOK bool
	}{
		{"top level", filepath.Join(root, "CLAUDE.md"), "CLAUDE.md", true},
		{"nested", filepath.Join(root, ".github", "copilot-instructions.md"), ".github/copilot-instructions.md", true},
		{"outside root", filepath.Join(filepath.Dir(root), "elsewhere.md"), "", false},
		{"dot-dot prefixed name stays inside", filepath.Join(root, "..notes.md"), "..notes.md", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RelativeSlashPath(root, tt.path)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("RelativeSlashPath() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		input   string
		max     int
		want    string
		wantErr bool
	}{
		{"go-standards", 100, "go_standards", false},
		{"Coding Standards", 100, "coding_standards", false},
		{"  api/v2//conventions.md ", 100, "api_v2_conventions_md", false},
		{"test-file@#$", 100, "test_file", false},
		{"abcdefghij", 5, "abcde", false},
		{"@@@", 100, "", true},
		{"", 100, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := SanitizeIdentifier(tt.input, tt.max)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SanitizeIdentifier(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("SanitizeIdentifier(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
