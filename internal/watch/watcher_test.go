// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/skillforge/skillforge/internal/testutil"
)

const testDebounce = 100 * time.Millisecond

// startWatcher runs a watcher on dir and forwards every batch to the
// returned channel. The watcher stops when the test ends.
func startWatcher(t *testing.T, cfg Config) (*Watcher, <-chan []string) {
	t.Helper()

	batches := make(chan []string, 8)
	cfg.Debounce = testDebounce
	cfg.OnChange = func(_ context.Context, changed []string) error {
		batches <- changed
		return nil
	}

	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run() error = %v", err)
		}
	})
	return w, batches
}

func nextBatch(t *testing.T, batches <-chan []string) []string {
	t.Helper()

	select {
	case got := <-batches:
		return got
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a change batch")
		return nil
	}
}

func TestWatcherCoalescesChanges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, batches := startWatcher(t, Config{Dir: dir})

	for _, name := range []string{"SKILL.md", "requirements.txt", "skill.spec.json"} {
		testutil.MustWriteFile(t, filepath.Join(dir, name), "x")
		time.Sleep(10 * time.Millisecond)
	}

	got := nextBatch(t, batches)
	want := []string{"SKILL.md", "requirements.txt", "skill.spec.json"}
	if !slices.Equal(got, want) {
		t.Errorf("batch = %v, want %v", got, want)
	}

	select {
	case extra := <-batches:
		t.Errorf("unexpected second batch %v", extra)
	case <-time.After(3 * testDebounce):
	}
}

func TestWatcherSkipsIgnoredPaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustMkdirAll(t, filepath.Join(dir, "scripts", "__pycache__"))
	_, batches := startWatcher(t, Config{Dir: dir, Ignore: []string{"**/*.log"}})

	testutil.MustWriteFile(t, filepath.Join(dir, "scripts", "__pycache__", "main.cpython-312.pyc"), "x")
	testutil.MustWriteFile(t, filepath.Join(dir, ".SKILL.md.swp"), "x")
	testutil.MustWriteFile(t, filepath.Join(dir, "run.log"), "x")
	testutil.MustWriteFile(t, filepath.Join(dir, "scripts", "main.py"), "print('hi')\n")

	got := nextBatch(t, batches)
	if !slices.Equal(got, []string{"scripts/main.py"}) {
		t.Errorf("batch = %v, want only scripts/main.py", got)
	}
}

func TestWatcherContextCancel(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestWatcherRunTwice(t *testing.T) {
	t.Parallel()

	w, _ := startWatcher(t, Config{Dir: t.TempDir()})
	// the first Run may not have started yet; retry until it has
	deadline := time.Now().Add(5 * time.Second)
	for !w.started.Load() {
		if time.Now().After(deadline) {
			t.Fatal("first Run never started")
		}
		time.Sleep(time.Millisecond)
	}
	if err := w.Run(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Run() error = %v, want ErrAlreadyStarted", err)
	}
}

func TestNewErrors(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "SKILL.md")
	testutil.MustWriteFile(t, file, "x")

	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "no dir", cfg: Config{}},
		{name: "missing dir", cfg: Config{Dir: filepath.Join(t.TempDir(), "gone")}},
		{name: "file", cfg: Config{Dir: file}},
		{name: "bad pattern", cfg: Config{Dir: t.TempDir(), Ignore: []string{"[unclosed"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if w, err := New(tt.cfg); err == nil {
				t.Errorf("New() = %v, want error", w)
			}
		})
	}
}

func TestIgnored(t *testing.T) {
	t.Parallel()

	w := &Watcher{ignores: DefaultIgnores()}
	tests := []struct {
		rel  string
		want bool
	}{
		{rel: ".git", want: true},
		{rel: ".git/HEAD", want: true},
		{rel: "scripts/__pycache__", want: true},
		{rel: "scripts/util.pyc", want: true},
		{rel: "SKILL.md~", want: true},
		{rel: "SKILL.md", want: false},
		{rel: "scripts/main.py", want: false},
		{rel: "references/api.md", want: false},
	}

	for _, tt := range tests {
		if got := w.ignored(tt.rel); got != tt.want {
			t.Errorf("ignored(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
}

func TestDefaultIgnoresIsCopy(t *testing.T) {
	t.Parallel()

	got := DefaultIgnores()
	got[0] = "changed"
	if DefaultIgnores()[0] == "changed" {
		t.Error("DefaultIgnores() exposes the package slice")
	}
}
