package cache

import (
	"os"
	"path/filepath"
	"testing"
)

type entry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestFilesystemRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project", "project_scenes.json")
	c := NewFilesystem()

	if _, ok := LoadJSON[entry](c, path); ok {
		t.Fatal("expected miss before save")
	}

	if err := SaveJSON(c, path, entry{Name: "scenes", Count: 3}); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	got, ok := LoadJSON[entry](c, path)
	if !ok {
		t.Fatal("expected hit after save")
	}
	if got.Name != "scenes" || got.Count != 3 {
		t.Errorf("loaded %+v, want {scenes 3}", got)
	}
}

func TestFilesystemCorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := LoadJSON[entry](NewFilesystem(), path); ok {
		t.Error("corrupt entry should degrade to a cache miss")
	}
}

func TestFilesystemLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	if err := SaveJSON(NewFilesystem(), path, entry{Name: "x"}); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].Name() != "out.json" {
		names := make([]string, len(files))
		for i, f := range files {
			names[i] = f.Name()
		}
		t.Errorf("directory contains %v, want only out.json", names)
	}
}

func TestNoopAlwaysMisses(t *testing.T) {
	c := NewNoop()

	if err := SaveJSON(c, "anywhere.json", entry{Name: "x"}); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}
	if _, ok := LoadJSON[entry](c, "anywhere.json"); ok {
		t.Error("noop cache must always miss")
	}
}
