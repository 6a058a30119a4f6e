package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, ConfigFile), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".billtopics", ConfigFile), store.Path())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFile), []byte("this is not valid TOML {{{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("str", "hello"))
	require.NoError(t, store.Set("int", 42))
	require.NoError(t, store.Set("float", 0.25))
	require.NoError(t, store.Set("bool", true))
	require.NoError(t, store.Set("list", []string{"a", "b"}))
	require.NoError(t, store.Set("mixed", []any{"a", 1}))
	require.NoError(t, store.Set("half", 2.5))

	assert.Equal(t, "hello", store.GetString("str"))
	assert.Equal(t, "", store.GetString("int"))
	assert.Equal(t, 42, store.GetInt("int"))
	assert.Equal(t, 0, store.GetInt("str"))
	assert.Equal(t, 0.25, store.GetFloat("float"))
	assert.Equal(t, 42.0, store.GetFloat("int"))
	assert.Equal(t, 0.0, store.GetFloat("str"))
	assert.True(t, store.GetBool("bool"))
	assert.False(t, store.GetBool("str"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("list"))
	assert.Nil(t, store.GetStringSlice("str"))
	assert.Nil(t, store.GetStringSlice("mixed"))
	assert.Equal(t, 0, store.GetInt("half"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 0.0, store.GetFloat("missing"))
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()
	store1, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store1.Set("name", "value1"))
	require.NoError(t, store1.Set("count", 42))
	require.NoError(t, store1.Set("ratio", 3.14))
	require.NoError(t, store1.Set("enabled", true))
	require.NoError(t, store1.Set("words", []string{"x", "y"}))

	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "value1", store2.GetString("name"))
	assert.Equal(t, 42, store2.GetInt("count"))
	assert.InDelta(t, 3.14, store2.GetFloat("ratio"), 1e-12)
	assert.True(t, store2.GetBool("enabled"))
	assert.Equal(t, []string{"x", "y"}, store2.GetStringSlice("words"))
}

func TestConfigStore_DottedKeysWrittenAsTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("clustering.epsilon", 0.5))
	require.NoError(t, store.Set("clustering.reduction", "pca"))
	require.NoError(t, store.Set("workers", 2))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, toml.Unmarshal(raw, &doc))
	clustering, ok := doc["clustering"].(map[string]any)
	require.True(t, ok, "clustering should be a table:\n%s", raw)
	assert.Equal(t, 0.5, clustering["epsilon"])
	assert.Equal(t, "pca", clustering["reduction"])

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 0.5, reloaded.GetFloat("clustering.epsilon"))
	assert.Equal(t, 2, reloaded.GetInt("workers"))
}

func TestFlattenAndNest(t *testing.T) {
	nested := map[string]any{
		"a": map[string]any{"b": 1, "c": map[string]any{"d": "x"}},
		"e": true,
	}

	flat := map[string]any{}
	flatten(nested, "", flat)

	assert.Equal(t, map[string]any{"a.b": 1, "a.c.d": "x", "e": true}, flat)
	assert.Equal(t, nested, nest(flat))
}

func TestNest_ValueWinsOverTable(t *testing.T) {
	assert.Equal(t, map[string]any{"a": 1}, nest(map[string]any{"a": 1, "a.b": 2}))
	assert.Equal(t, map[string]any{"a": 1}, nest(map[string]any{"a.b.c": 3, "a": 1}))
}

func TestConfigStore_FailedSetKeepsPreviousValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("workers", 2))

	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	require.Error(t, store.Set("workers", 8))
	require.Error(t, store.Set("seed", 1))

	assert.Equal(t, 2, store.GetInt("workers"))
	_, ok := store.Get("seed")
	assert.False(t, ok)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("test", "value"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFile), []byte("# Just a comment\n\n"), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	_, ok := store.Get("any_key")
	assert.False(t, ok)
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("test", "value"))

	// Replace the file with a directory.
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("another", "value"))
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("valid", "data"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("invalid toml syntax ][}{"), 0600))

	assert.Error(t, store.Load())
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Set("channel", make(chan int)))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.GetFloat(key)
		}(i)
	}
	wg.Wait()
}
