package cache

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tagnav/internal/tags"
)

func TestWatcherInvalidatesOnWrite(t *testing.T) {
	dir := t.TempDir()
	tagFile := filepath.Join(dir, "tags")
	if err := os.WriteFile(tagFile, []byte(""), 0644); err != nil {
		t.Fatal(err)
	}

	svc := NewService()
	svc.GetOrCompute(dir, "key", func() (Grouped, error) {
		return Grouped{"s": []tags.Record{{Symbol: "s"}}}, nil
	})

	w, err := NewWatcher(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(tagFile, dir); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(tagFile, []byte("sym\tf.go\t/^sym$/\n"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for svc.Len(dir) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("cache not invalidated after tag file write")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWatcherSurvivesRenameOver(t *testing.T) {
	dir := t.TempDir()
	tagFile := filepath.Join(dir, "tags")
	if err := os.WriteFile(tagFile, []byte(""), 0644); err != nil {
		t.Fatal(err)
	}

	svc := NewService()
	w, err := NewWatcher(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(tagFile, dir); err != nil {
		t.Fatal(err)
	}

	fill := func() {
		svc.GetOrCompute(dir, "key", func() (Grouped, error) {
			return Grouped{"s": []tags.Record{{Symbol: "s"}}}, nil
		})
	}
	renameOver := func(content string) {
		tmp := filepath.Join(dir, "tags.tmp")
		if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if err := os.Rename(tmp, tagFile); err != nil {
			t.Fatal(err)
		}
	}
	waitEmpty := func(round string) {
		t.Helper()
		deadline := time.Now().Add(5 * time.Second)
		for svc.Len(dir) != 0 {
			if time.Now().After(deadline) {
				t.Fatalf("cache not invalidated after %s rename", round)
			}
			time.Sleep(10 * time.Millisecond)
		}
	}

	// Generators rewrite indexes by renaming a temp file over them; the
	// watch must survive the first rename to see the second.
	fill()
	renameOver("a\tf.go\t/^a$/\n")
	waitEmpty("first")

	fill()
	renameOver("b\tf.go\t/^b$/\n")
	waitEmpty("second")
}
