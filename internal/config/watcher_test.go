package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/looper/internal/logging"
)

func newTestWatcher(t *testing.T, path string) (*Watcher, chan *Config, chan error) {
	t.Helper()

	changes := make(chan *Config, 8)
	errs := make(chan error, 8)
	w, err := NewWatcher(path,
		WithDebounce(20*time.Millisecond),
		WithWatcherLogger(logging.Null),
		WithOnChange(func(c *Config) { changes <- c }),
		WithOnError(func(err error) { errs <- err }),
	)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w, changes, errs
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "looper.toml")
	if err := os.WriteFile(path, []byte("[demo]\nsleep_ms = 100\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, changes, _ := newTestWatcher(t, path)

	if err := os.WriteFile(path, []byte("[demo]\nsleep_ms = 200\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-changes:
		if c.Demo.SleepMS != 200 {
			t.Errorf("SleepMS = %d, want 200", c.Demo.SleepMS)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no reload observed")
	}
}

func TestWatcher_ReloadsOnCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "looper.toml")
	_, changes, _ := newTestWatcher(t, path)

	if err := os.WriteFile(path, []byte("[log]\nlevel = \"error\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-changes:
		if c.Log.Level != "error" {
			t.Errorf("Level = %q, want error", c.Log.Level)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no reload observed")
	}
}

func TestWatcher_ReportsParseErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "looper.toml")
	_, changes, errs := newTestWatcher(t, path)

	if err := os.WriteFile(path, []byte("[demo\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-errs:
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("expected *ParseError, got %v", err)
		}
	case c := <-changes:
		t.Fatalf("unexpected reload: %+v", c)
	case <-time.After(2 * time.Second):
		t.Fatal("no error reported")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "looper.toml")
	_, changes, _ := newTestWatcher(t, path)

	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-changes:
		t.Fatalf("unexpected reload: %+v", c)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_CloseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "looper.toml")
	w, _, _ := newTestWatcher(t, path)

	if w.Path() != path {
		t.Errorf("Path() = %q, want %q", w.Path(), path)
	}
	if err := w.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
