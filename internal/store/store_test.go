package store

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

// newTestStore creates an in-memory SQLite store for testing
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:", slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(uuid, site string, code int) *MirrorRun {
	status := "success"
	if code != 0 {
		status = "transfer-error"
	}
	return &MirrorRun{
		UUID:       uuid,
		Mode:       "shell",
		Site:       site,
		Remote:     "/pub",
		Local:      "mirror",
		Direction:  "download",
		ExitCode:   code,
		BytesTotal: 1024,
		FileCount:  3,
		Status:     status,
		StartTime:  time.Now().Add(-time.Minute),
		EndTime:    time.Now(),
	}
}

func TestCreateMirrorRun(t *testing.T) {
	s := newTestStore(t)

	run := sampleRun("run-1", "ftp.example.com", 0)
	if err := s.CreateMirrorRun(run); err != nil {
		t.Fatalf("CreateMirrorRun: %v", err)
	}
	if run.ID == 0 {
		t.Error("expected ID to be set after insert")
	}
}

func TestListMirrorRuns(t *testing.T) {
	s := newTestStore(t)

	for i, site := range []string{"a.example.com", "b.example.com", "a.example.com"} {
		run := sampleRun("run-"+string(rune('1'+i)), site, i%2)
		run.StartTime = time.Now().Add(time.Duration(i) * time.Minute)
		if err := s.CreateMirrorRun(run); err != nil {
			t.Fatalf("CreateMirrorRun: %v", err)
		}
	}

	t.Run("all runs newest first", func(t *testing.T) {
		runs, err := s.ListMirrorRuns("", 0)
		if err != nil {
			t.Fatalf("ListMirrorRuns: %v", err)
		}
		if len(runs) != 3 {
			t.Fatalf("got %d runs, want 3", len(runs))
		}
		if runs[0].StartTime.Before(runs[1].StartTime) {
			t.Error("runs not ordered newest first")
		}
	})

	t.Run("filtered by site", func(t *testing.T) {
		runs, err := s.ListMirrorRuns("a.example.com", 0)
		if err != nil {
			t.Fatalf("ListMirrorRuns: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("got %d runs, want 2", len(runs))
		}
		for _, r := range runs {
			if r.Site != "a.example.com" {
				t.Errorf("unexpected site %q", r.Site)
			}
		}
	})

	t.Run("limited", func(t *testing.T) {
		runs, err := s.ListMirrorRuns("", 1)
		if err != nil {
			t.Fatalf("ListMirrorRuns: %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("got %d runs, want 1", len(runs))
		}
	})
}

func TestMigrateIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migrate pass: %v", err)
	}
}
