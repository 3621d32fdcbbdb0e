package local

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Store provides thread-safe JSON file storage laid out as
// <base>/<collection>/<id>.json with optional per-record subdirectories.
type Store struct {
	basePath string
	mu       sync.RWMutex
}

// NewStore creates a new local JSON store
func NewStore(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

// Path returns the store's base directory
func (s *Store) Path() string {
	return s.basePath
}

// Save persists data to a JSON file
func (s *Store) Save(collection, id string, data any) error {
	if err := validateIDs(collection, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return writeJSON(filepath.Join(s.basePath, collection), id, data)
}

// Load reads data from a JSON file
func (s *Store) Load(collection, id string, data any) error {
	if err := validateIDs(collection, id); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return readJSON(filepath.Join(s.basePath, collection, id+".json"), data)
}

// Delete removes a JSON file and any subdirectories stored under the record
func (s *Store) Delete(collection, id string) error {
	if err := validateIDs(collection, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.basePath, collection, id+".json")
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("remove file: %w", err)
	}

	if err := os.RemoveAll(filepath.Join(s.basePath, collection, id)); err != nil {
		return fmt.Errorf("remove record directory: %w", err)
	}

	return nil
}

// List returns all IDs in a collection, sorted
func (s *Store) List(collection string) ([]string, error) {
	if err := validateIDs(collection); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return listJSON(filepath.Join(s.basePath, collection))
}

// Exists checks if a record exists
func (s *Store) Exists(collection, id string) bool {
	if validateIDs(collection, id) != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(filepath.Join(s.basePath, collection, id+".json"))
	return err == nil
}

// SaveDir saves data to a subdirectory within a record
func (s *Store) SaveDir(collection, id, subdir, filename string, data any) error {
	if err := validateIDs(collection, id, subdir, filename); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return writeJSON(filepath.Join(s.basePath, collection, id, subdir), filename, data)
}

// LoadDir loads data from a subdirectory within a record
func (s *Store) LoadDir(collection, id, subdir, filename string, data any) error {
	if err := validateIDs(collection, id, subdir, filename); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return readJSON(filepath.Join(s.basePath, collection, id, subdir, filename+".json"), data)
}

// ListDir lists all files in a record subdirectory, sorted
func (s *Store) ListDir(collection, id, subdir string) ([]string, error) {
	if err := validateIDs(collection, id, subdir); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return listJSON(filepath.Join(s.basePath, collection, id, subdir))
}

// writeJSON writes to a temp file and renames it so readers never see a
// partially written record.
func writeJSON(dir, name string, data any) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		tmp.Close()
		return fmt.Errorf("encode json: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(dir, name+".json")); err != nil {
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}

func readJSON(path string, data any) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(data); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

func listJSON(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read directory: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if filepath.Ext(name) == ".json" {
			names = append(names, strings.TrimSuffix(name, ".json"))
		}
	}
	sort.Strings(names)

	return names, nil
}

func validateIDs(parts ...string) error {
	for _, p := range parts {
		if p == "" || p == "." || p == ".." || strings.ContainsAny(p, `/\`) || strings.HasPrefix(p, ".") {
			return fmt.Errorf("%w: %q", ErrInvalidID, p)
		}
	}
	return nil
}
