package jsonfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "required": ["schema_version", "items"],
  "properties": {
    "schema_version": {"type": "integer", "const": 1},
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {"name": {"type": "string", "minLength": 1}}
      }
    }
  }
}`

type testDoc struct {
	SchemaVersion int        `json:"schema_version"`
	Items         []testItem `json:"items"`
}

type testItem struct {
	Name string `json:"name"`
}

func TestLoadMissingFile(t *testing.T) {
	var doc testDoc
	found, err := Load(filepath.Join(t.TempDir(), "missing.json"), nil, &doc)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if found {
		t.Error("Load() found = true for missing file")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	schema := MustCompileSchema("test.schema.json", testSchema)

	original := testDoc{SchemaVersion: 1, Items: []testItem{{Name: "a"}, {Name: "b"}}}
	if err := Save(path, original, 0o600); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var loaded testDoc
	found, err := Load(path, schema, &loaded)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !found {
		t.Fatal("Load() found = false")
	}
	if len(loaded.Items) != 2 || loaded.Items[1].Name != "b" {
		t.Errorf("Items: got %+v", loaded.Items)
	}

	assertOnlyFiles(t, filepath.Dir(path), "doc.json")
}

func assertOnlyFiles(t *testing.T, dir string, want ...string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.Name())
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("files in %s: got %v, want %v", dir, got, want)
	}
}

func TestSaveFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := Save(path, testDoc{SchemaVersion: 1, Items: []testItem{{Name: "a"}}}, 0o600); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.HasSuffix(content, "\n") {
		t.Error("expected trailing newline")
	}
	if !strings.Contains(content, "\n  \"items\"") {
		t.Errorf("expected 2-space indentation, got:\n%s", content)
	}
}

func TestLoadValidationFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte(`{"schema_version": 2, "items": [{"name": ""}]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	schema := MustCompileSchema("test.schema.json", testSchema)

	var doc testDoc
	_, err := Load(path, schema, &doc)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, ErrStorage) {
		t.Errorf("expected ErrStorage, got %v", err)
	}
	var se *StorageError
	if !errors.As(err, &se) || se.Op != "validate" {
		t.Errorf("expected validate StorageError, got %#v", err)
	}
	if !strings.Contains(err.Error(), "items[0].name") {
		t.Errorf("expected path in error, got %v", err)
	}
}

func TestLoadParseFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0o600); err != nil {
		t.Fatal(err)
	}
	var doc testDoc
	_, err := Load(path, nil, &doc)
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestWriteAtomicFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "doc.json")
	err := WriteAtomic(path, []byte("{}"), 0o600)
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestWriteAtomicReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := WriteAtomic(path, []byte("new"), 0o600); err != nil {
		t.Fatalf("WriteAtomic() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new" {
		t.Errorf("content: got %q, want %q", data, "new")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("mode: got %o, want %o", perm, 0o600)
	}
	assertOnlyFiles(t, dir, "doc.json")
}

func TestWriteAtomicRenameFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	// A non-empty directory cannot be replaced by a file.
	path := filepath.Join(dir, "doc.json")
	if err := os.MkdirAll(filepath.Join(path, "child"), 0o700); err != nil {
		t.Fatal(err)
	}

	err := WriteAtomic(path, []byte("{}"), 0o600)
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	assertOnlyFiles(t, dir, "doc.json")
}

func TestRemoveIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := Remove(path); err != nil {
		t.Fatalf("first Remove() error = %v", err)
	}
	if err := Remove(path); err != nil {
		t.Fatalf("second Remove() error = %v", err)
	}
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	schema := MustCompileSchema("test.schema.json", testSchema)

	found, errs := Check(filepath.Join(dir, "missing.json"), schema)
	if found || len(errs) != 0 {
		t.Errorf("missing file: found=%v errs=%v", found, errs)
	}

	path := filepath.Join(dir, "doc.json")
	if err := os.WriteFile(path, []byte(`{"schema_version": 1}`), 0o600); err != nil {
		t.Fatal(err)
	}
	found, errs = Check(path, schema)
	if !found || len(errs) == 0 {
		t.Errorf("invalid file: found=%v errs=%v", found, errs)
	}
}

func TestJSONPointerToPath(t *testing.T) {
	tests := []struct {
		ptr  string
		want string
	}{
		{"", ""},
		{"#", ""},
		{"/todos/0/title", "todos[0].title"},
		{"#/users/2", "users[2]"},
		{"/a~1b/c~0d", "a/b.c~d"},
	}
	for _, tt := range tests {
		t.Run(tt.ptr, func(t *testing.T) {
			if got := jsonPointerToPath(tt.ptr); got != tt.want {
				t.Errorf("jsonPointerToPath(%q) = %q, want %q", tt.ptr, got, tt.want)
			}
		})
	}
}
