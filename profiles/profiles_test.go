package profiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/choomlang/choom/dsl"
	"github.com/choomlang/choom/registry"
)

func writeProfile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListProfiles(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "img-hq.yaml", "defaults:\n  res: 2048x2048\n")
	writeProfile(t, dir, "draft.yml", "defaults:\n  temp: 0.2\n")
	writeProfile(t, dir, "notes.txt", "not a profile\n")

	names, err := List(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 || names[0] != "draft" || names[1] != "img-hq" {
		t.Errorf("expected sorted [draft img-hq], got %v", names)
	}
}

func TestListMissingDirectory(t *testing.T) {
	names, err := List(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("missing directory is not an error: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected no profiles, got %v", names)
	}
}

func TestReadProfile(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "studio.yaml", "description: studio renders\ndefaults:\n  style: studio\n  res: 1024x1024\n")

	profile, err := Read(dir, "studio")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Name != "studio" {
		t.Errorf("expected name studio, got %q", profile.Name)
	}
	if profile.Description != "studio renders" {
		t.Errorf("unexpected description: %q", profile.Description)
	}
	if profile.Defaults["style"] != "studio" {
		t.Errorf("unexpected defaults: %v", profile.Defaults)
	}

	if _, err := Read(dir, "missing"); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestApplyToLineMergesUnderExplicitParams(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "studio.yaml", "defaults:\n  style: studio\n  res: 1024x1024\n  seed: 7\n")

	table := registry.Default()
	parser := dsl.NewParser(table)

	line, err := ApplyToLine(parser, table, dir, "studio", "gen img[2] style=noir", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// explicit style wins, profile fills the rest
	want := "gen img[2] res=1024x1024 seed=7 style=noir"
	if line != want {
		t.Errorf("expected %q, got %q", want, line)
	}
}

func TestApplyRejectsNonScalarDefault(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "bad.yaml", "defaults:\n  nested:\n    a: 1\n")

	table := registry.Default()
	parser := dsl.NewParser(table)
	if _, err := ApplyToLine(parser, table, dir, "bad", "gen txt prompt=hi", false); err == nil {
		t.Error("expected error for non-scalar profile default")
	}
}
