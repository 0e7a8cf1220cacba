package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserRecord_Defaults(t *testing.T) {
	record := NewUserRecord(42)

	assert.Equal(t, int64(42), record.ID)
	assert.Equal(t, StartingCoins, record.Coins)
	assert.Equal(t, int64(1), record.Level)
	assert.Equal(t, int64(0), record.XP)
	assert.Equal(t, int64(0), record.Bank)
	assert.Equal(t, int64(0), record.Cookies)
	assert.False(t, record.CreatedAt.IsZero())
	assert.False(t, record.LastUpdated.IsZero())
	assert.True(t, record.LastDaily.IsZero())
}

func TestNewUserRecord_CollectionsSerializeAsEmptyArrays(t *testing.T) {
	raw, err := json.Marshal(NewUserRecord(1))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	for _, field := range []string{
		"warnings", "pets", "investments", "loans", "credit_cards",
		"temporary_purchases", "temporary_roles", "reminders",
	} {
		value, ok := doc[field]
		require.True(t, ok, "missing %s", field)
		list, ok := value.([]any)
		require.True(t, ok, "%s is not an array", field)
		assert.Empty(t, list)
	}
}

func TestNewGuildRecord_Defaults(t *testing.T) {
	record := NewGuildRecord(7)

	assert.Equal(t, int64(7), record.ID)
	assert.Equal(t, int64(3), record.Settings.StarboardThreshold)
	assert.True(t, record.Settings.LevelUpMessages)
	assert.True(t, record.Settings.EconomyEnabled)
	assert.NotNil(t, record.StarboardMessages)
	assert.Empty(t, record.StarboardMessages)
}
