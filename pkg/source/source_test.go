package source

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadJSONByExtension(t *testing.T) {
	path := writeFile(t, "scores.json", `{"a|b": 0.5, "a|c": 0.9}`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
	if got := m.Get("a", "c"); got != 0.9 {
		t.Errorf("a|c = %v, want 0.9", got)
	}
}

func TestLoadCSVByExtension(t *testing.T) {
	path := writeFile(t, "scores.csv", "a,b,score\nx,y,0.7\n")

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := m.Get("x", "y"); got != 0.7 {
		t.Errorf("x|y = %v, want 0.7", got)
	}
}

func TestLoadSniffsUnknownExtension(t *testing.T) {
	jsonPath := writeFile(t, "scores.txt", "\n  {\"a|b\": 0.4}")
	m, err := Load(jsonPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := m.Get("a", "b"); got != 0.4 {
		t.Errorf("sniffed JSON a|b = %v, want 0.4", got)
	}

	csvPath := writeFile(t, "scores.dat", "x,y,0.6\n")
	m, err = Load(csvPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := m.Get("x", "y"); got != 0.6 {
		t.Errorf("sniffed CSV x|y = %v, want 0.6", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("Load of missing file should fail")
	}
}
