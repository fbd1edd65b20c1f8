// Package jsonfile loads, validates, and rewrites whole JSON data files.
//
// Every file is rewritten in full on each save: the new content is written and
// synced to a temp file in the same directory, which is then renamed over the
// original, so a failed write never leaves a truncated file behind. There is no cross-process
// locking; callers assume a single process owns the data directory.
//
// Files are written with 2-space indentation and a trailing newline.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrStorage is matched by every *StorageError.
var ErrStorage = errors.New("storage failure")

// StorageError reports an I/O, parse, or validation failure on a data file.
type StorageError struct {
	Op   string // "read", "parse", "validate", "write"
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrStorage.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// ValidationError is a single schema violation with its location.
type ValidationError struct {
	Path string // dotted path to the offending value
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Schema is a compiled JSON Schema for one data file.
type Schema struct {
	name   string
	schema *jsonschema.Schema
}

// CompileSchema compiles an in-memory JSON Schema document.
func CompileSchema(name, src string) (*Schema, error) {
	url := "https://github.com/nibzard/todo-cli/schemas/" + name
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource(url, strings.NewReader(src)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	s, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema{name: name, schema: s}, nil
}

// MustCompileSchema is like CompileSchema but panics on error. It is meant
// for schemas embedded in the binary.
func MustCompileSchema(name, src string) *Schema {
	s, err := CompileSchema(name, src)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks raw JSON against the schema and returns every violation.
func (s *Schema) Validate(data []byte) []error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return []error{err}
	}
	err := s.schema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []error{err}
	}
	var errs []error
	collectSchemaErrors(&errs, ve)
	return errs
}

func collectSchemaErrors(errs *[]error, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		*errs = append(*errs, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(errs, cause)
	}
}

func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	path := ""
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			path += fmt.Sprintf("[%d]", idx)
			continue
		}
		if path == "" {
			path = part
		} else {
			path += "." + part
		}
	}
	return path
}

// Load reads path into v. A missing file is not an error: Load reports
// found=false and leaves v untouched. When schema is non-nil the raw content
// must validate before it is decoded.
func Load(path string, schema *Schema, v any) (found bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, &StorageError{Op: "read", Path: path, Err: err}
	}

	if schema != nil {
		if errs := schema.Validate(data); len(errs) > 0 {
			return true, &StorageError{Op: "validate", Path: path, Err: errors.Join(errs...)}
		}
	}

	if err := json.Unmarshal(data, v); err != nil {
		return true, &StorageError{Op: "parse", Path: path, Err: err}
	}
	return true, nil
}

// Check validates the file at path without decoding it. A missing file
// reports found=false.
func Check(path string, schema *Schema) (found bool, errs []error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, []error{err}
	}
	return true, schema.Validate(data)
}

// Save marshals v and atomically replaces path with it.
func Save(path string, v any, perm os.FileMode) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &StorageError{Op: "write", Path: path, Err: fmt.Errorf("marshal: %w", err)}
	}
	data = append(data, '\n')
	return WriteAtomic(path, data, perm)
}

// WriteAtomic writes data to a temp file next to path, syncs it, and renames
// it into place. The temp file is removed on any failure.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return &StorageError{Op: "write", Path: path, Err: err}
	}
	tmpPath := f.Name()

	if err := writeSynced(f, data, perm); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return &StorageError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return &StorageError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &StorageError{Op: "write", Path: path, Err: fmt.Errorf("rename: %w", err)}
	}
	return nil
}

func writeSynced(f *os.File, data []byte, perm os.FileMode) error {
	if err := f.Chmod(perm); err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// Remove deletes path. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &StorageError{Op: "write", Path: path, Err: err}
	}
	return nil
}
