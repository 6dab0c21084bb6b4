package favorites

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Storage persists the favorites mapping as a whole.
type Storage interface {
	// Load returns the stored entries in their stored order.
	Load() ([]Entry, error)

	// Save replaces the stored mapping with entries.
	Save(entries []Entry) error
}

// IsNotExist reports whether err means nothing has been stored yet.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// FileStorage stores favorites as a flat JSON object, {"category": "url", ...},
// keeping key order across rewrites.
type FileStorage struct {
	path string
	mu   sync.Mutex
}

// NewFileStorage returns storage backed by the JSON file at path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the file location.
func (f *FileStorage) Path() string {
	return f.path
}

// Load reads the file, preserving object key order.
func (f *FileStorage) Load() ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	entries, err := decodeOrdered(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", f.path, err)
	}
	return entries, nil
}

// Save rewrites the whole file atomically: a temp file is written and renamed
// over the target.
func (f *FileStorage) Save(entries []Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create favorites directory: %w", err)
		}
	}

	data, err := encodeOrdered(entries)
	if err != nil {
		return err
	}

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write favorites: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace favorites file: %w", err)
	}
	return nil
}

func encodeOrdered(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, e := range entries {
		if i > 0 {
			buf.WriteString(",")
		}
		k, err := json.Marshal(e.Category)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.URL)
		if err != nil {
			return nil, err
		}
		buf.WriteString("\n    ")
		buf.Write(k)
		buf.WriteString(": ")
		buf.Write(v)
	}
	if len(entries) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func decodeOrdered(data []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected a JSON object")
	}

	var entries []Entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string key, got %v", tok)
		}
		var url string
		if err := dec.Decode(&url); err != nil {
			return nil, fmt.Errorf("category %q: %w", key, err)
		}
		entries = append(entries, Entry{Category: key, URL: url})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after favorites object")
	}
	return entries, nil
}

// MemoryStorage keeps favorites in memory. Err, when set, is returned by every call.
type MemoryStorage struct {
	mu      sync.Mutex
	entries []Entry
	stored  bool
	saves   int
	Err     error
}

// NewMemoryStorage returns storage holding entries; nil means nothing stored yet.
func NewMemoryStorage(entries []Entry) *MemoryStorage {
	return &MemoryStorage{entries: append([]Entry(nil), entries...), stored: entries != nil}
}

// Load returns the stored entries or fs.ErrNotExist.
func (m *MemoryStorage) Load() ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if !m.stored {
		return nil, fs.ErrNotExist
	}
	return append([]Entry(nil), m.entries...), nil
}

// Save replaces the stored entries.
func (m *MemoryStorage) Save(entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.entries = append([]Entry(nil), entries...)
	m.stored = true
	m.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (m *MemoryStorage) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
