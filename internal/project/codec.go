package project

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/cutline/internal/timeline"
)

func Encode(w io.Writer, d *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}

func Decode(r io.Reader) (*Document, error) {
	var d Document
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty project document")
		}
		return nil, fmt.Errorf("parse project: %w", err)
	}
	if d.Version == "" {
		d.Version = Version
	}
	if d.Version != Version {
		return nil, fmt.Errorf("unsupported project version %q", d.Version)
	}
	return &d, nil
}

// Write stores the document at path, creating parent directories.
func Write(path string, d *Document) error {
	var buf bytes.Buffer
	if err := Encode(&buf, d); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func Read(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Load reads and restores a project file.
func Load(path string, opts ...timeline.Option) (*timeline.Store, *Document, error) {
	d, err := Read(path)
	if err != nil {
		return nil, nil, err
	}
	store, err := Restore(d, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, d, nil
}

// Save writes the current store state under name.
func Save(path, name string, store *timeline.Store) error {
	return Write(path, FromSnapshot(name, store.Snapshot()))
}
