package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMirror_MissingFileFallsBack(t *testing.T) {
	m := Open(filepath.Join(t.TempDir(), "nope.json"), nil)

	if got := m.GetString("theme", "dark"); got != "dark" {
		t.Errorf("GetString() = %q, want fallback %q", got, "dark")
	}
	if got := m.GetBool("sidebar_open", true); got != true {
		t.Errorf("GetBool() = %v, want fallback true", got)
	}
}

func TestMirror_SetThenGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	m := Open(path, nil)

	m.Set("theme", "light")
	m.Set("sidebar_open", false)

	if got := m.GetString("theme", "dark"); got != "light" {
		t.Errorf("GetString() = %q, want %q", got, "light")
	}
	if got := m.GetBool("sidebar_open", true); got != false {
		t.Errorf("GetBool() = %v, want false", got)
	}
}

func TestMirror_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	Open(path, nil).Set("theme", "light")

	reopened := Open(path, nil)
	if got := reopened.GetString("theme", "dark"); got != "light" {
		t.Errorf("GetString() after reopen = %q, want %q", got, "light")
	}
}

func TestMirror_CorruptFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	m := Open(path, nil)
	if got := m.GetString("theme", "dark"); got != "dark" {
		t.Errorf("GetString() = %q, want fallback %q", got, "dark")
	}

	// mirror must still be writable after a corrupt load
	m.Set("theme", "light")
	if got := m.GetString("theme", "dark"); got != "light" {
		t.Errorf("GetString() after Set = %q, want %q", got, "light")
	}
}

func TestMirror_WrongShapeFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	m := Open(path, nil)

	m.Set("theme", 42) // stored as a number

	// decoding into a string fails; default preserved
	if got := m.GetString("theme", "dark"); got != "dark" {
		t.Errorf("GetString() = %q, want fallback %q", got, "dark")
	}
}

func TestMirror_Delete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	m := Open(path, nil)

	m.Set("theme", "light")
	m.Delete("theme")

	if got := m.GetString("theme", "dark"); got != "dark" {
		t.Errorf("GetString() after Delete = %q, want fallback %q", got, "dark")
	}

	m.Delete("theme") // deleting an absent key is a no-op
}

func TestMirror_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "prefs.json")
	m := Open(path, nil)

	m.Set("theme", "light")

	if _, err := os.Stat(path); err != nil {
		t.Errorf("preferences file not created: %v", err)
	}
}
