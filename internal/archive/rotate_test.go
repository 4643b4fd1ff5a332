package archive

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func makeTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "mirror")
	if err := os.MkdirAll(filepath.Join(src, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	for name, content := range map[string]string{
		"top.txt":                      "hello",
		filepath.Join("sub", "nested.txt"): "world",
	} {
		if err := os.WriteFile(filepath.Join(src, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return src
}

func archiveNames(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("snapshot is not valid gzip: %v", err)
	}
	tr := tar.NewReader(gz)

	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("reading tar: %v", err)
		}
		names = append(names, hdr.Name)
	}
	return names
}

func TestRotateCreatesSnapshot(t *testing.T) {
	src := makeTree(t)
	work := t.TempDir()
	now := time.Date(2024, 6, 7, 14, 30, 0, 0, time.UTC) // a Friday

	res, err := Rotate(src, work, now)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}

	base := filepath.Base(res.Created)
	if base != "mirror_07Jun2024_14:30_Fri.tar.gz" {
		t.Errorf("unexpected snapshot name %q", base)
	}
	if len(res.Deleted) != 0 {
		t.Errorf("expected no deletions on first rotation, got %v", res.Deleted)
	}

	names := archiveNames(t, res.Created)
	for _, want := range []string{"mirror/", "mirror/top.txt", "mirror/sub/nested.txt"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("archive missing entry %q (have %v)", want, names)
		}
	}
}

func TestRotateReplacesSameWeekday(t *testing.T) {
	src := makeTree(t)
	work := t.TempDir()

	first, err := Rotate(src, work, time.Date(2024, 6, 7, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("first Rotate: %v", err)
	}
	second, err := Rotate(src, work, time.Date(2024, 6, 14, 11, 15, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("second Rotate: %v", err)
	}

	if len(second.Deleted) != 1 || second.Deleted[0] != first.Created {
		t.Errorf("second rotation deleted %v, want [%s]", second.Deleted, first.Created)
	}

	left, err := filepath.Glob(filepath.Join(work, "mirror*Fri.tar.gz"))
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 1 || left[0] != second.Created {
		t.Errorf("expected only the second snapshot to remain, got %v", left)
	}
}

func TestRotateKeepsOtherWeekdays(t *testing.T) {
	src := makeTree(t)
	work := t.TempDir()

	friday, err := Rotate(src, work, time.Date(2024, 6, 7, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Rotate(src, work, time.Date(2024, 6, 8, 10, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(friday.Created); err != nil {
		t.Errorf("Friday snapshot should survive a Saturday rotation: %v", err)
	}
}

func TestRotateDescribe(t *testing.T) {
	res := &Result{Created: "/work/mirror_07Jun2024_10:00_Fri.tar.gz", Deleted: []string{"/work/old.tar.gz"}}
	lines := res.Describe()
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "Created file:") || !strings.Contains(joined, res.Created) {
		t.Errorf("Describe missing created file: %q", joined)
	}
	if !strings.Contains(joined, "Deleted old file:") || !strings.Contains(joined, "/work/old.tar.gz") {
		t.Errorf("Describe missing deleted file: %q", joined)
	}
}

func TestRotateMissingDir(t *testing.T) {
	work := t.TempDir()
	if _, err := Rotate(filepath.Join(work, "absent"), work, time.Now()); err == nil {
		t.Fatal("expected error for missing source directory")
	}
}
