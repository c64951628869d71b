package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRelURL(t *testing.T) {
	dir := t.TempDir()
	got, err := relURL(filepath.Join(dir, "out"), filepath.Join(dir, "in", "v1", "a b.png"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "../in/v1/a b.png" {
		t.Errorf("relURL = %q", got)
	}
}

func TestCheckFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.csv")
	if err := os.WriteFile(file, []byte("x\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := checkFiles([]string{file}); err != nil {
		t.Errorf("existing file: %v", err)
	}
	if err := checkFiles([]string{file, filepath.Join(dir, "missing.csv")}); err == nil {
		t.Error("missing file accepted")
	}
	if err := checkFiles([]string{dir}); err == nil {
		t.Error("directory accepted")
	}
}

func TestPickSheetCSV(t *testing.T) {
	file := filepath.Join(t.TempDir(), "a.csv")
	if err := os.WriteFile(file, []byte("id,name\n1,bolt\n"), 0644); err != nil {
		t.Fatal(err)
	}

	name, err := pickSheet(file, "")
	if err != nil {
		t.Fatalf("pickSheet() error = %v", err)
	}
	if _, err := pickSheet(file, name); err != nil {
		t.Errorf("pickSheet(%q) error = %v", name, err)
	}
	if _, err := pickSheet(file, "Nope"); err == nil {
		t.Error("unknown sheet accepted")
	}
}
