package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTree(t *testing.T) *LocalStore {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"animes/cowboy_bebop/spike.png": "spike-bytes",
		"animes/cowboy_bebop/faye.png":  "faye-bytes",
		"animes/trigun/vash.png":        "vash-bytes",
		"jogos/chrono_trigger/crono.png": "crono-bytes",
	}
	for path, content := range files {
		full := filepath.Join(root, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return NewLocalStore(root)
}

func TestLocalStoreListingsAreSorted(t *testing.T) {
	ctx := context.Background()
	store := newTestTree(t)

	categories, err := store.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"animes", "jogos"}, categories)

	series, err := store.Series(ctx, "animes")
	require.NoError(t, err)
	assert.Equal(t, []string{"cowboy_bebop", "trigun"}, series)

	images, err := store.Images(ctx, "animes", "cowboy_bebop")
	require.NoError(t, err)
	assert.Equal(t, []string{"faye.png", "spike.png"}, images)
}

func TestLocalStoreFetch(t *testing.T) {
	ctx := context.Background()
	store := newTestTree(t)

	data, err := store.Fetch(ctx, "animes", "trigun", "vash.png")
	require.NoError(t, err)
	assert.Equal(t, "vash-bytes", string(data))

	_, err = store.Fetch(ctx, "animes", "trigun", "nope.png")
	assert.Error(t, err)
}

func TestLocalStoreFetchRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	store := newTestTree(t)

	_, err := store.Fetch(ctx, "animes", "..", "secret.png")
	assert.Error(t, err)
	_, err = store.Fetch(ctx, "animes", "trigun", "../../etc/passwd")
	assert.Error(t, err)
}
