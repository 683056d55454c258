package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hashEmbedding is a deterministic stand-in embedder: identical texts
// land on identical vectors, so exact-match queries rank first.
func hashEmbedding(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 8)
	for i, r := range text {
		vec[i%8] += float32(r % 97)
	}
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		inv := 1 / sqrt32(norm)
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec, nil
}

func sqrt32(x float32) float32 {
	guess := x / 2
	for i := 0; i < 20; i++ {
		guess = (guess + x/guess) / 2
	}
	return guess
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(Config{
		Path:      t.TempDir(),
		Embedding: hashEmbedding,
	}, nil)
	require.NoError(t, err)
	return store
}

func TestNewStore_RequiresPath(t *testing.T) {
	t.Parallel()

	_, err := NewStore(Config{}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestStore_AddAndSearch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Add(ctx, []Document{
		{ID: "d1", Content: "瓷砖选购要看吸水率和防滑等级", Metadata: map[string]string{"topic": "tile"}},
		{ID: "d2", Content: "地板分实木、复合、强化三类", Metadata: map[string]string{"topic": "floor"}},
	}))
	assert.Equal(t, 2, store.Count())

	hits, err := store.Search(ctx, "瓷砖选购要看吸水率和防滑等级", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "d1", hits[0].ID)
	assert.Equal(t, "tile", hits[0].Metadata["topic"])
}

func TestStore_SearchClampsK(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Add(ctx, []Document{{ID: "d1", Content: "防水涂料施工"}}))

	hits, err := store.Search(ctx, "防水", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestStore_EmptyCases(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	hits, err := store.Search(ctx, "", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = store.Search(ctx, "任何内容", 5)
	require.NoError(t, err)
	assert.Empty(t, hits, "empty collection yields no hits, not an error")

	assert.NoError(t, store.Add(ctx, nil))
}
