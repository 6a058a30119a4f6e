package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/billtopics/internal/adapters/driven/config/values"
	"github.com/custodia-labs/billtopics/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigFile is the name of the configuration file inside the config directory.
const ConfigFile = "config.toml"

// ConfigStore keeps config.toml as a flat map of dotted keys
// ("clustering.epsilon") and writes it back as nested tables.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
}

// NewConfigStore opens config.toml inside configDir, creating the directory
// if needed. An empty configDir means ~/.billtopics.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		configDir = filepath.Join(home, ".billtopics")
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, ConfigFile),
		data:     map[string]any{},
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Keys returns the stored keys, sorted.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetString returns the value of key, or "" when unset or not a string.
func (s *ConfigStore) GetString(key string) string {
	v, _ := s.Get(key)
	str, _ := values.String(v)
	return str
}

// GetInt returns the value of key, or 0 when unset or not a whole number.
func (s *ConfigStore) GetInt(key string) int {
	v, _ := s.Get(key)
	n, _ := values.Int(v)
	return n
}

// GetFloat returns the value of key, or 0 when unset or not numeric.
func (s *ConfigStore) GetFloat(key string) float64 {
	v, _ := s.Get(key)
	f, _ := values.Float(v)
	return f
}

// GetBool returns the value of key, or false when unset or not a boolean.
func (s *ConfigStore) GetBool(key string) bool {
	v, _ := s.Get(key)
	b, _ := values.Bool(v)
	return b
}

// GetStringSlice returns the value of key, or nil when unset or not a list
// of strings.
func (s *ConfigStore) GetStringSlice(key string) []string {
	v, _ := s.Get(key)
	list, _ := values.Strings(v)
	return list
}

// Set stores a value and rewrites the file.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.data[key]
	s.data[key] = value
	if err := s.save(); err != nil {
		if had {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

// Save rewrites the file from the current values.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes to a temporary file and renames it over config.toml, so a
// failed write never truncates the existing file. Caller holds the lock.
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(nest(s.data))
	if err != nil {
		return fmt.Errorf("encoding %s: %w", s.filePath, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.filePath), ConfigFile+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.filePath)
}

// Load replaces the in-memory values with the file's. A missing file
// leaves the store empty.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		s.data = map[string]any{}
		return nil
	}
	if err != nil {
		return err
	}

	var doc map[string]any
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", s.filePath, err)
	}
	s.data = map[string]any{}
	flatten(doc, "", s.data)
	return nil
}

// flatten copies nested tables into dst under dotted keys:
// {"a": {"b": 1}} becomes {"a.b": 1}.
func flatten(doc map[string]any, prefix string, dst map[string]any) {
	for k, v := range doc {
		if prefix != "" {
			k = prefix + "." + k
		}
		if table, ok := v.(map[string]any); ok {
			flatten(table, k, dst)
			continue
		}
		dst[k] = v
	}
}

// nest is the inverse of flatten. When a key is both a value and a table
// prefix, the value wins and the nested keys are dropped.
func nest(flat map[string]any) map[string]any {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	// Shorter keys first, so values are placed before tables could claim them.
	sort.Slice(keys, func(i, j int) bool {
		if di, dj := strings.Count(keys[i], "."), strings.Count(keys[j], "."); di != dj {
			return di < dj
		}
		return keys[i] < keys[j]
	})

	doc := map[string]any{}
	for _, key := range keys {
		parts := strings.Split(key, ".")
		table := doc
		for _, part := range parts[:len(parts)-1] {
			next, isTable := table[part].(map[string]any)
			if !isTable {
				if _, taken := table[part]; taken {
					table = nil
					break
				}
				next = map[string]any{}
				table[part] = next
			}
			table = next
		}
		if table != nil {
			table[parts[len(parts)-1]] = flat[key]
		}
	}
	return doc
}
