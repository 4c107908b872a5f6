package plugincache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileStore_SaveAndRestore(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	const pluginRel = "github.com/terraform-linters/tflint-ruleset-aws/0.30.0/tflint-ruleset-aws"

	src := filepath.Join(t.TempDir(), "plugins")
	writeFiles(t, src, map[string]string{
		pluginRel: "binary",
		"README":  "hello",
	})
	if err := os.Chmod(filepath.Join(src, pluginRel), 0755); err != nil {
		t.Fatalf("failed to chmod plugin: %v", err)
	}

	id, err := store.Save(ctx, []string{src}, "tflint-plugins-Linux-abc")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if id < 0 {
		t.Errorf("Save() id = %d, want non-negative", id)
	}

	dst := filepath.Join(t.TempDir(), "restored")
	matched, err := store.Restore(ctx, []string{dst}, "tflint-plugins-Linux-abc", []string{"tflint-plugins-Linux"})
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if matched != "tflint-plugins-Linux-abc" {
		t.Errorf("Restore() matched = %q", matched)
	}

	plugin := filepath.Join(dst, pluginRel)
	data, err := os.ReadFile(plugin)
	if err != nil {
		t.Fatalf("failed to read restored plugin: %v", err)
	}
	if string(data) != "binary" {
		t.Errorf("restored plugin content = %q", data)
	}
	info, err := os.Stat(plugin)
	if err != nil {
		t.Fatalf("failed to stat restored plugin: %v", err)
	}
	if info.Mode().Perm()&0100 == 0 {
		t.Errorf("restored plugin mode = %v, want executable", info.Mode())
	}
}

func TestFileStore_RestorePrefixPicksNewest(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	for _, tc := range []struct {
		key     string
		content string
		age     time.Duration
	}{
		{key: "tflint-plugins-Linux-old", content: "old", age: 2 * time.Hour},
		{key: "tflint-plugins-Linux-new", content: "new", age: time.Minute},
		{key: "tflint-plugins-Windows-other", content: "windows", age: 0},
	} {
		src := t.TempDir()
		writeFiles(t, src, map[string]string{"marker": tc.content})
		if _, err := store.Save(ctx, []string{src}, tc.key); err != nil {
			t.Fatalf("Save(%s) error = %v", tc.key, err)
		}
		mtime := time.Now().Add(-tc.age)
		if err := os.Chtimes(store.blobPath(tc.key), mtime, mtime); err != nil {
			t.Fatalf("failed to set mtime: %v", err)
		}
	}

	dst := t.TempDir()
	matched, err := store.Restore(ctx, []string{dst}, "tflint-plugins-Linux-missing", []string{"tflint-plugins-Linux"})
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if matched != "tflint-plugins-Linux-new" {
		t.Errorf("Restore() matched = %q, want newest prefix match", matched)
	}

	data, err := os.ReadFile(filepath.Join(dst, "marker"))
	if err != nil {
		t.Fatalf("failed to read restored marker: %v", err)
	}
	if string(data) != "new" {
		t.Errorf("restored marker = %q", data)
	}
}

func TestFileStore_RestoreMiss(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "does-not-exist"))

	matched, err := store.Restore(context.Background(), []string{t.TempDir()}, "tflint-plugins-Linux-x", []string{"tflint-plugins-Linux"})
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if matched != "" {
		t.Errorf("Restore() matched = %q, want miss", matched)
	}
}

func TestFileStore_SaveExistingKey(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())
	src := t.TempDir()
	writeFiles(t, src, map[string]string{"a": "a"})

	if _, err := store.Save(ctx, []string{src}, "key"); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}

	_, err := store.Save(ctx, []string{src}, "key")
	var reserveErr *ReserveCacheError
	if !errors.As(err, &reserveErr) {
		t.Fatalf("second Save() error = %v, want *ReserveCacheError", err)
	}
	if reserveErr.Key != "key" {
		t.Errorf("ReserveCacheError.Key = %q", reserveErr.Key)
	}
}

func TestFileStore_RestoreSkipsReservation(t *testing.T) {
	root := t.TempDir()
	store := NewFileStore(root)

	// A reservation with no data yet.
	if err := os.WriteFile(store.blobPath("tflint-plugins-Linux-pending"), nil, 0644); err != nil {
		t.Fatalf("failed to write reservation: %v", err)
	}

	matched, err := store.Restore(context.Background(), []string{t.TempDir()}, "tflint-plugins-Linux-pending", []string{"tflint-plugins-Linux"})
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if matched != "" {
		t.Errorf("Restore() matched = %q, want miss", matched)
	}
}

func TestFileStore_SaveCancelled(t *testing.T) {
	store := NewFileStore(t.TempDir())
	src := t.TempDir()
	writeFiles(t, src, map[string]string{"a": "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Save(ctx, []string{src}, "key"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Save() error = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(store.blobPath("key")); !os.IsNotExist(err) {
		t.Error("reservation should be released after a failed save")
	}
}

func TestFileStore_SaveMissingPaths(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())
	missing := filepath.Join(t.TempDir(), "plugins")

	if _, err := store.Save(ctx, []string{missing}, "tflint-plugins-Linux-abc"); err == nil {
		t.Fatal("Save() of a missing directory should fail")
	}
	if _, err := os.Stat(store.blobPath("tflint-plugins-Linux-abc")); !os.IsNotExist(err) {
		t.Fatal("key must not be reserved when nothing was saved")
	}

	// The key stays free for a later save with real content.
	writeFiles(t, missing, map[string]string{"tflint-ruleset-aws": "plugin"})
	if _, err := store.Save(ctx, []string{missing}, "tflint-plugins-Linux-abc"); err != nil {
		t.Fatalf("Save() after the directory exists error = %v", err)
	}

	dst := t.TempDir()
	matched, err := store.Restore(ctx, []string{dst}, "tflint-plugins-Linux-abc", nil)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if matched != "tflint-plugins-Linux-abc" {
		t.Errorf("Restore() matched = %q", matched)
	}
	if _, err := os.Stat(filepath.Join(dst, "tflint-ruleset-aws")); err != nil {
		t.Errorf("plugin not restored: %v", err)
	}
}
