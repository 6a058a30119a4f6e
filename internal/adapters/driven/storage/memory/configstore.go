package memory

import (
	"sort"
	"sync"

	"github.com/custodia-labs/billtopics/internal/adapters/driven/config/values"
	"github.com/custodia-labs/billtopics/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore holds configuration values in memory. Nothing is written to
// disk, so Save and Load do nothing.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore creates a new in-memory config store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		values: make(map[string]any),
	}
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

// Keys returns the stored keys, sorted.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetString returns the value of key, or "" when unset or not a string.
func (s *ConfigStore) GetString(key string) string {
	v, _ := values.String(s.value(key))
	return v
}

// GetInt returns the value of key, or 0 when unset or not a whole number.
func (s *ConfigStore) GetInt(key string) int {
	v, _ := values.Int(s.value(key))
	return v
}

// GetFloat returns the value of key, or 0 when unset or not numeric.
func (s *ConfigStore) GetFloat(key string) float64 {
	v, _ := values.Float(s.value(key))
	return v
}

// GetBool returns the value of key, or false when unset or not a boolean.
func (s *ConfigStore) GetBool(key string) bool {
	v, _ := values.Bool(s.value(key))
	return v
}

// GetStringSlice returns the value of key, or nil when unset or not a list
// of strings.
func (s *ConfigStore) GetStringSlice(key string) []string {
	v, _ := values.Strings(s.value(key))
	return v
}

func (s *ConfigStore) value(key string) any {
	v, _ := s.Get(key)
	return v
}

// Set stores a configuration value.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Save persists the current configuration (no-op for memory store).
func (s *ConfigStore) Save() error {
	return nil
}

// Load reads configuration from storage (no-op for memory store).
func (s *ConfigStore) Load() error {
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return ":memory:"
}
