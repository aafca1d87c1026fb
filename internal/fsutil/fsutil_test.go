package fsutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateDirectoryNested(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "a", "b", "c")

	if err := CreateDirectory(path); err != nil {
		t.Fatalf("CreateDirectory failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory", path)
	}

	if err := CreateDirectory(path); err != nil {
		t.Errorf("CreateDirectory on existing path failed: %v", err)
	}
}

func TestCreateIncrementedDirectorySequence(t *testing.T) {
	base := t.TempDir()

	for i, want := range []string{"0001", "0002", "0003"} {
		dir, err := CreateIncrementedDirectory(base)
		if err != nil {
			t.Fatalf("call %d failed: %v", i+1, err)
		}
		if filepath.Base(dir) != want {
			t.Errorf("call %d: got %s, expected %s", i+1, filepath.Base(dir), want)
		}
	}
}

func TestCreateIncrementedDirectoryContinuesFromExisting(t *testing.T) {
	base := t.TempDir()
	if err := os.Mkdir(filepath.Join(base, "0007"), 0o755); err != nil {
		t.Fatal(err)
	}

	dir, err := CreateIncrementedDirectory(base)
	if err != nil {
		t.Fatalf("CreateIncrementedDirectory failed: %v", err)
	}
	if filepath.Base(dir) != "0008" {
		t.Errorf("got %s, expected 0008", filepath.Base(dir))
	}
}

func TestCreateIncrementedDirectoryIgnoresNonNumericSiblings(t *testing.T) {
	base := t.TempDir()
	if err := os.Mkdir(filepath.Join(base, "logs"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "0042"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	dir, err := CreateIncrementedDirectory(base)
	if err != nil {
		t.Fatalf("CreateIncrementedDirectory failed: %v", err)
	}
	if filepath.Base(dir) != "0001" {
		t.Errorf("got %s, expected 0001", filepath.Base(dir))
	}
}

func TestCreateIncrementedDirectoryNeverReusesNumbers(t *testing.T) {
	base := t.TempDir()

	first, err := CreateIncrementedDirectory(base)
	if err != nil {
		t.Fatal(err)
	}
	second, err := CreateIncrementedDirectory(base)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(first); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(second); err != nil {
		t.Fatal(err)
	}

	third, err := CreateIncrementedDirectory(base)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(third) != "0003" {
		t.Errorf("got %s, expected 0003 after earlier directories were removed", filepath.Base(third))
	}
}

func TestCreateIncrementedDirectoryMissingBase(t *testing.T) {
	_, err := CreateIncrementedDirectory(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("expected error for missing base directory")
	}
}

func TestCollectFilesSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"one.conf", "two.conf"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	paths, err := CollectFiles(dir)
	if err != nil {
		t.Fatalf("CollectFiles failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("got %d paths, expected 2: %v", len(paths), paths)
	}
	for _, p := range paths {
		if filepath.Dir(p) != dir {
			t.Errorf("path %s not under %s", p, dir)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	type payload struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	}

	path := filepath.Join(t.TempDir(), "payload.json")
	in := payload{Name: "oscillator", Value: 2.5}

	if err := WriteJSON(in, path); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Error("expected trailing newline")
	}
	if !strings.Contains(string(data), "  \"name\"") {
		t.Error("expected indented output")
	}

	out, err := ReadJSON[payload](path)
	if err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if out != in {
		t.Errorf("got %+v, expected %+v", out, in)
	}
}

func TestReadJSONInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadJSON[map[string]any](path)
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestOutputFileWritesLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")

	out, err := OpenOutput(path)
	if err != nil {
		t.Fatalf("OpenOutput failed: %v", err)
	}

	type record struct {
		Time  float64 `json:"time"`
		State float64 `json:"state"`
	}
	for i := 0; i < 3; i++ {
		if err := out.WriteRecord(record{Time: float64(i), State: float64(i) * 2}); err != nil {
			t.Fatalf("WriteRecord failed: %v", err)
		}
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, expected 3", len(lines))
	}
	for i, line := range lines {
		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", i, err)
		}
		if rec.Time != float64(i) {
			t.Errorf("line %d: got time %v, expected %v", i, rec.Time, float64(i))
		}
	}
}

func TestOutputFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")

	for i := 0; i < 2; i++ {
		out, err := OpenOutput(path)
		if err != nil {
			t.Fatal(err)
		}
		if err := out.WriteRecord(map[string]int{"n": i}); err != nil {
			t.Fatal(err)
		}
		if err := out.Close(); err != nil {
			t.Fatal(err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "\n"); n != 2 {
		t.Errorf("got %d lines, expected 2", n)
	}
}
