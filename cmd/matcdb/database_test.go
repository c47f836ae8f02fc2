package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ce2cdb/matcdb/internal/archive"
)

func TestLoadDatabaseStandaloneJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mat.json")
	data := `{"Version":1,"Objects":[{"ID":"materials/x.mat","Components":[]}]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	idx, db, err := loadDatabase([]string{path})
	if err != nil {
		t.Fatalf("loadDatabase: %v", err)
	}
	if idx != nil {
		t.Error("loadDatabase with only standalone files returned a non-nil Index")
	}
	res := archive.ResourceIDFromPath("materials/x.mat")
	if _, ok := db.FindMaterial(res); !ok {
		t.Error("loadDatabase did not register the JSON material")
	}
}

func TestLoadDatabaseRejectsUnreadableStandaloneFile(t *testing.T) {
	if _, _, err := loadDatabase([]string{"/nonexistent/path.json"}); err == nil {
		t.Fatal("loadDatabase on a missing file succeeded, want error")
	}
}
