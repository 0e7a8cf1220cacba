package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackend_GetMissingReturnsNotFound(t *testing.T) {
	m := NewMemoryBackend()

	_, err := m.Get(context.Background(), KindUser, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryBackend_PutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()

	require.NoError(t, m.Put(ctx, KindUser, 1, Document{"coins": 5}))

	doc, err := m.Get(ctx, KindUser, 1)
	require.NoError(t, err)
	coins, ok := numericValue(doc, "coins")
	require.True(t, ok)
	assert.Equal(t, int64(5), coins)
}

func TestMemoryBackend_CopiesIsolateCallers(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()

	original := Document{"job": map[string]any{"title": "Clerk"}}
	require.NoError(t, m.Put(ctx, KindUser, 1, original))

	// Mutating the document we put must not affect the stored copy
	original["job"].(map[string]any)["title"] = "CEO"

	doc, err := m.Get(ctx, KindUser, 1)
	require.NoError(t, err)
	assert.Equal(t, "Clerk", doc["job"].(map[string]any)["title"])

	// Mutating the document we got must not affect the stored copy either
	doc["job"].(map[string]any)["title"] = "Janitor"
	again, err := m.Get(ctx, KindUser, 1)
	require.NoError(t, err)
	assert.Equal(t, "Clerk", again["job"].(map[string]any)["title"])
}

func TestMemoryBackend_KindsAreSeparateNamespaces(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()

	require.NoError(t, m.Put(ctx, KindUser, 1, Document{"coins": 1}))
	require.NoError(t, m.Put(ctx, KindGuild, 1, Document{"settings": map[string]any{}}))

	users, err := m.Count(ctx, KindUser)
	require.NoError(t, err)
	guilds, err := m.Count(ctx, KindGuild)
	require.NoError(t, err)
	assert.Equal(t, int64(1), users)
	assert.Equal(t, int64(1), guilds)

	userDoc, err := m.Get(ctx, KindUser, 1)
	require.NoError(t, err)
	assert.Contains(t, userDoc, "coins")
}

func TestMemoryBackend_AllReturnsEveryDocument(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()

	for id := int64(1); id <= 3; id++ {
		require.NoError(t, m.Put(ctx, KindUser, id, Document{"id": id}))
	}

	docs, err := m.All(ctx, KindUser)
	require.NoError(t, err)
	assert.Len(t, docs, 3)
	for id := int64(1); id <= 3; id++ {
		assert.Contains(t, docs, id)
	}
}

func TestMemoryBackend_OverwriteReplacesDocument(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()

	require.NoError(t, m.Put(ctx, KindUser, 1, Document{"coins": 1, "xp": 2}))
	require.NoError(t, m.Put(ctx, KindUser, 1, Document{"coins": 9}))

	doc, err := m.Get(ctx, KindUser, 1)
	require.NoError(t, err)
	coins, _ := numericValue(doc, "coins")
	assert.Equal(t, int64(9), coins)
	assert.NotContains(t, doc, "xp")
}
