package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lilong555/tradingagent/config"
)

type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if vec, ok := f.vectors[text]; ok {
		return vec, nil
	}
	return nil, fmt.Errorf("no fixture embedding for %q", text)
}

func newFixtureStore(t *testing.T, metric string) *InMemoryStore {
	t.Helper()
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"rates rising":   {1, 0, 0},
		"tech selloff":   {0, 1, 0},
		"oil shock":      {0, 0, 1},
		"rates climbing": {0.9, 0.1, 0},
	}}
	store := NewInMemoryStore(BullMemory, metric, embedder)
	err := store.AddSituations(context.Background(), []Pair{
		{Situation: "rates rising", Recommendation: "favor value over growth"},
		{Situation: "tech selloff", Recommendation: "trim high-multiple positions"},
		{Situation: "oil shock", Recommendation: "hedge energy exposure"},
	})
	require.NoError(t, err)
	return store
}

func TestInMemoryStoreRanksByCosine(t *testing.T) {
	store := newFixtureStore(t, "cosine")

	matches, err := store.Query(context.Background(), "rates climbing", 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "rates rising", matches[0].MatchedSituation)
	assert.Equal(t, "favor value over growth", matches[0].Recommendation)
	assert.Equal(t, "tech selloff", matches[1].MatchedSituation)
	assert.Greater(t, matches[0].SimilarityScore, matches[1].SimilarityScore)
	assert.InDelta(t, 0.9939, matches[0].SimilarityScore, 1e-3)
}

func TestInMemoryStoreInnerProduct(t *testing.T) {
	store := newFixtureStore(t, "inner_product")

	matches, err := store.Query(context.Background(), "rates climbing", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "rates rising", matches[0].MatchedSituation)
	assert.InDelta(t, 0.9, matches[0].SimilarityScore, 1e-6)
}

func TestInMemoryStoreL2(t *testing.T) {
	store := newFixtureStore(t, "l2")

	matches, err := store.Query(context.Background(), "rates climbing", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "rates rising", matches[0].MatchedSituation)
	// score = 1/(1+distance), distance = sqrt(0.1^2 + 0.1^2)
	assert.InDelta(t, 1/(1+0.141421356), matches[0].SimilarityScore, 1e-6)
}

func TestQueryCapsAtAvailableRecords(t *testing.T) {
	store := newFixtureStore(t, "cosine")

	matches, err := store.Query(context.Background(), "rates climbing", 10)
	require.NoError(t, err)
	assert.Len(t, matches, 3)
}

func TestCountGrowsWithAdds(t *testing.T) {
	store := newFixtureStore(t, "cosine")
	ctx := context.Background()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	err = store.AddSituations(ctx, []Pair{{Situation: "oil shock", Recommendation: "revisit hedges"}})
	require.NoError(t, err)

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestSimilarityFromDistance(t *testing.T) {
	assert.InDelta(t, 0.8, similarityFromDistance("cosine", 0.2), 1e-9)
	assert.InDelta(t, 42.0, similarityFromDistance("inner_product", -42), 1e-9)
	assert.InDelta(t, 0.25, similarityFromDistance("l2", 3), 1e-9)
}

func TestOpenBanksInMemory(t *testing.T) {
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	cfg.MemoryBackend = "memory"

	banks, err := OpenBanks(context.Background(), cfg)
	require.NoError(t, err)
	defer banks.Close()

	stores := banks.All()
	require.Len(t, stores, 5)

	want := []string{BullMemory, BearMemory, TraderMemory, InvestJudgeMemory, RiskManagerMemory}
	for i, store := range stores {
		assert.Equal(t, want[i], store.Name())
	}
}

func TestEmbeddingDimensions(t *testing.T) {
	assert.Equal(t, 1536, embeddingDimensions("text-embedding-3-small"))
	assert.Equal(t, 768, embeddingDimensions("nomic-embed-text"))
	assert.Equal(t, 3072, embeddingDimensions("text-embedding-3-large"))
	assert.Equal(t, 1536, embeddingDimensions("anything-else"))
}
