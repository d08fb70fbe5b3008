package assets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zentheon/respackr/pkg/assets"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already_clean", "assets/icons/home.svg", "assets/icons/home.svg"},
		{"backslashes", "assets\\icons\\home.svg", "assets/icons/home.svg"},
		{"trailing_slash", "assets/icons/", "assets/icons"},
		{"trailing_backslash", "assets\\icons\\", "assets/icons"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, assets.NormalizePath(tt.in))
		})
	}
}

func TestStore(t *testing.T) {
	t.Run("put normalizes keys", func(t *testing.T) {
		store := assets.NewStore()
		store.Put("a\\b.json", []byte("{}"))

		data, ok := store.Get("a/b.json")
		require.True(t, ok)
		assert.Equal(t, []byte("{}"), data)
	})

	t.Run("put replaces existing entries", func(t *testing.T) {
		store := assets.NewStore()
		store.Put("a.txt", []byte("one"))
		store.Put("a.txt", []byte("two"))

		data, _ := store.Get("a.txt")
		assert.Equal(t, []byte("two"), data)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("paths are sorted", func(t *testing.T) {
		store := assets.NewStore()
		store.Put("b.txt", nil)
		store.Put("a.txt", nil)
		store.Put("c/d.txt", nil)

		assert.Equal(t, []string{"a.txt", "b.txt", "c/d.txt"}, store.Paths())
	})

	t.Run("delete", func(t *testing.T) {
		store := assets.NewStore()
		store.Put("a.txt", nil)
		store.Delete("a.txt")
		assert.False(t, store.Has("a.txt"))
	})
}

func TestMatchesPrefix(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		prefix string
		want   bool
	}{
		{"exact_match", "assets", "assets", true},
		{"under_directory", "assets/a.json", "assets", true},
		{"nested", "assets/sub/a.json", "assets", true},
		{"sibling_name_prefix", "assets2/a.json", "assets", false},
		{"unrelated", "other/b.json", "assets", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, assets.MatchesPrefix(tt.path, tt.prefix))
		})
	}
}

func TestResolutionIndex(t *testing.T) {
	ri := assets.NewResolutionIndex()
	ri.Bucket(192).Put("a.png", []byte{1})
	ri.Bucket(96).Put("b.png", []byte{2})
	ri.Bucket(192).Put("c.png", []byte{3})

	assert.Equal(t, []int{96, 192}, ri.DPIs())
	assert.Equal(t, 3, ri.Len())

	bucket, ok := ri.Lookup(192)
	require.True(t, ok)
	assert.Equal(t, 2, bucket.Len())

	_, ok = ri.Lookup(300)
	assert.False(t, ok)
}
