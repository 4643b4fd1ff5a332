package diskuse

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBestUnit(t *testing.T) {
	const kib = 1024

	tests := []struct {
		name  string
		bytes int64
		value float64
		unit  string
	}{
		{"zero", 0, 0.0, "bytes"},
		{"below threshold", 1023, 1023.0, "bytes"},
		{"exactly one KiB", kib, 1.0, "KiB"},
		{"one and a half KiB", 1536, 1.5, "KiB"},
		{"one MiB", kib * kib, 1.0, "MiB"},
		{"one GiB", kib * kib * kib, 1.0, "GiB"},
		{"one TiB", kib * kib * kib * kib, 1.0, "TiB"},
		{"500 MiB", 500 * kib * kib, 500.0, "MiB"},
		{"one EiB", kib * kib * kib * kib * kib * kib, 1.0, "EiB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BestUnit(tt.bytes)
			if got.Value != tt.value || got.Unit != tt.unit {
				t.Errorf("BestUnit(%d) = %.2f %s, want %.2f %s",
					tt.bytes, got.Value, got.Unit, tt.value, tt.unit)
			}
			if got.Bytes != tt.bytes {
				t.Errorf("BestUnit(%d) lost raw count: got %d", tt.bytes, got.Bytes)
			}
			if got.Value >= 1024 {
				t.Errorf("BestUnit(%d) magnitude %.2f not below 1024", tt.bytes, got.Value)
			}
		})
	}
}

func TestPathInfoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "single.txt")
	if err := os.WriteFile(path, []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}

	size, count, err := PathInfo(path)
	if err != nil {
		t.Fatalf("PathInfo: %v", err)
	}
	if size != 10 {
		t.Errorf("size = %d, want 10", size)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0 for a plain file", count)
	}
}

func TestPathInfoTree(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]int{
		"a.bin":                 100,
		"b.bin":                 200,
		filepath.Join("sub", "c.bin"): 300,
	}
	for name, n := range files {
		if err := os.WriteFile(filepath.Join(dir, name), make([]byte, n), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	size, count, err := PathInfo(dir)
	if err != nil {
		t.Fatalf("PathInfo: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
	// Directory entries themselves contribute, so the total must be at
	// least the sum of the file payloads.
	if size < 600 {
		t.Errorf("size = %d, want >= 600", size)
	}
}

func TestPathInfoMissing(t *testing.T) {
	if _, _, err := PathInfo(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing path")
	}
}
