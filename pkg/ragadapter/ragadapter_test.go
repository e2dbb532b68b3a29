package ragadapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_TopKRanksByBM25Relevance(t *testing.T) {
	a, err := New(Config{})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.AddDocument(ctx, "auth.md", "authentication flow uses JWT tokens and refresh tokens", nil))
	require.NoError(t, a.AddDocument(ctx, "billing.md", "billing integrates with stripe for subscription invoices", nil))
	require.NoError(t, a.AddDocument(ctx, "auth2.md", "JWT token validation middleware checks expiry and signature", nil))

	chunks := a.TopK("how does JWT token validation work", 2)
	require.Len(t, chunks, 2)
	assert.Equal(t, "auth2.md", chunks[0].ID)
	assert.Contains(t, []string{"auth.md", "auth2.md"}, chunks[1].ID)
}

func TestAdapter_TopKExcludesZeroScoreDocuments(t *testing.T) {
	a, err := New(Config{})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.AddDocument(ctx, "unrelated.md", "a completely different topic about gardening", nil))

	chunks := a.TopK("JWT authentication", 5)
	assert.Empty(t, chunks)
}

func TestAdapter_ContextTrimsToTokenBudget(t *testing.T) {
	a, err := New(Config{})
	require.NoError(t, err)

	ctx := context.Background()
	long := ""
	for i := 0; i < 2000; i++ {
		long += "authentication token validation middleware "
	}
	require.NoError(t, a.AddDocument(ctx, "big.md", long, nil))
	require.NoError(t, a.AddDocument(ctx, "small.md", "authentication token quick note", nil))

	// big.md ranks first and alone exceeds the 50-token budget, so Context
	// stops before adding any chunk.
	out := a.Context("authentication token", 5, 50)
	assert.Empty(t, out)
	assert.Less(t, a.counter.Count(out), 200)
}

func TestAdapter_ReindexingSameIDReplacesOldTerms(t *testing.T) {
	a, err := New(Config{})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.AddDocument(ctx, "doc.md", "gardening tips for tomatoes", nil))
	require.NoError(t, a.AddDocument(ctx, "doc.md", "authentication token validation", nil))

	chunks := a.TopK("gardening tomatoes", 5)
	assert.Empty(t, chunks, "old content should no longer be indexed after re-adding the same id")

	chunks = a.TopK("authentication token validation", 5)
	require.Len(t, chunks, 1)
	assert.Equal(t, "doc.md", chunks[0].ID)
}
