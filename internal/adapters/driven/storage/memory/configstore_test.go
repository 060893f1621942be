package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("align.window", 8))
	require.NoError(t, store.Set("align.window", 12))

	val, ok := store.Get("align.window")
	assert.True(t, ok)
	assert.Equal(t, 12, val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("s", "text")
	_ = store.Set("i", 3)
	_ = store.Set("i64", int64(5))
	_ = store.Set("f", 0.75)
	_ = store.Set("list", []any{"must", 1, "shall"})

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", store.GetString("s"), "text"},
		{"string wrong type", store.GetString("i"), ""},
		{"int", store.GetInt("i"), 3},
		{"int64", store.GetInt("i64"), 5},
		{"int from float", store.GetInt("f"), 0},
		{"float", store.GetFloat("f"), 0.75},
		{"float from int", store.GetFloat("i"), 3.0},
		{"float missing", store.GetFloat("missing"), 0.0},
		{"slice of any", store.GetStringSlice("list"), []string{"must", "shall"}},
		{"slice missing", store.GetStringSlice("missing"), []string(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConfigStore_KeysAndDelete(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("metrics.weights.bleu", 0.3)
	_ = store.Set("metrics.weights.meteor", 0.7)
	_ = store.Set("metrics.enabled", []string{"meteor", "bleu"})
	_ = store.Set("align.window", 8)

	assert.Equal(t, []string{"metrics.weights.bleu", "metrics.weights.meteor"}, store.Keys("metrics.weights."))
	assert.Len(t, store.Keys(""), 4)

	require.NoError(t, store.Delete("metrics.weights.bleu"))
	require.NoError(t, store.Delete("never.set"))
	assert.Equal(t, []string{"metrics.weights.meteor"}, store.Keys("metrics.weights."))
}

func TestConfigStore_Persistence(t *testing.T) {
	store := NewConfigStore()
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrent(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("run.workers", n)
			_ = store.GetInt("run.workers")
			_ = store.Keys("run.")
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("run.workers")
	assert.True(t, ok)
}
