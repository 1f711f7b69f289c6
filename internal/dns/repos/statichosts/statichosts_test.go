package statichosts

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
	return path
}

func TestLoadFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hints.yaml", `
apex: example.com
"@":
  A: 192.0.2.1
www:
  A:
    - 192.0.2.2
    - 192.0.2.3
`)

	records, err := LoadFile(path, 300*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for _, rr := range records {
		if !rr.IsAuthoritative() {
			t.Errorf("expected static (non-expiring) record, got expiring: %+v", rr)
		}
	}
}

func TestLoadFile_MissingApex(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hints.yaml", `
"@":
  A: 192.0.2.1
`)
	if _, err := LoadFile(path, 300*time.Second); err == nil {
		t.Fatal("expected error for missing apex, got nil")
	}
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "README.md", "not a hints file")

	records, err := LoadFile(path, 300*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records != nil {
		t.Fatalf("expected nil records for unsupported extension, got %v", records)
	}
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", `
apex: a.example
"@":
  A: 192.0.2.10
`)
	writeFile(t, dir, "b.json", `{"apex": "b.example", "@": {"A": "192.0.2.20"}}`)
	writeFile(t, dir, "README.md", "ignored")

	records, err := LoadDirectory(dir, 60*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records across both files, got %d", len(records))
	}
}

func TestExpandName(t *testing.T) {
	tests := []struct {
		label, apex, want string
	}{
		{"@", "example.com.", "example.com."},
		{"www", "example.com.", "www.example.com."},
		{"sub.example.com.", "example.com.", "sub.example.com."},
	}
	for _, tt := range tests {
		if got := expandName(tt.label, tt.apex); got != tt.want {
			t.Errorf("expandName(%q, %q) = %q, want %q", tt.label, tt.apex, got, tt.want)
		}
	}
}

func TestToStringValues(t *testing.T) {
	if got := toStringValues("  a  "); len(got) != 1 || got[0] != "a" {
		t.Errorf("expected single trimmed value, got %v", got)
	}
	if got := toStringValues([]any{"a", "", 5, " b "}); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("expected filtered/trimmed slice, got %v", got)
	}
	if got := toStringValues(42); got != nil {
		t.Errorf("expected nil for unsupported type, got %v", got)
	}
}
