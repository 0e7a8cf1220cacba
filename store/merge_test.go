package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFields_TopLevelReplacesWholesale(t *testing.T) {
	doc := Document{"coins": 500, "pets": []any{"a", "b"}}

	applyFields(doc, map[string]any{"pets": []any{"c"}})

	assert.Equal(t, []any{"c"}, doc["pets"])
	assert.Equal(t, 500, doc["coins"])
	assert.Contains(t, doc, "last_updated")
}

func TestApplyFields_DottedPathCreatesIntermediateMaps(t *testing.T) {
	doc := Document{}

	applyFields(doc, map[string]any{"job.title": "Nurse"})

	job, ok := doc["job"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Nurse", job["title"])
}

func TestApplyFields_DottedPathPreservesSiblings(t *testing.T) {
	doc := Document{"job": map[string]any{"career_path": "healthcare"}}

	applyFields(doc, map[string]any{"job.title": "Nurse"})

	job := doc["job"].(map[string]any)
	assert.Equal(t, "healthcare", job["career_path"])
	assert.Equal(t, "Nurse", job["title"])
}

func TestApplyFields_DottedPathThroughNonMapReplaces(t *testing.T) {
	doc := Document{"job": "unemployed"}

	applyFields(doc, map[string]any{"job.title": "Clerk"})

	job, ok := doc["job"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Clerk", job["title"])
}

func TestValidateUserFields_RejectsNonNumericForNumericField(t *testing.T) {
	err := validateUserFields(map[string]any{"coins": "many"})
	assert.ErrorIs(t, err, ErrInvalidField)

	err = validateUserFields(map[string]any{"job.work_xp": true})
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestValidateUserFields_AcceptsNumericShapes(t *testing.T) {
	assert.NoError(t, validateUserFields(map[string]any{"coins": 5}))
	assert.NoError(t, validateUserFields(map[string]any{"coins": int64(5)}))
	assert.NoError(t, validateUserFields(map[string]any{"coins": 5.0}))
	assert.NoError(t, validateUserFields(map[string]any{"job.performance_rating": 4.5}))
}

func TestValidateUserFields_UnknownPathsRejected(t *testing.T) {
	// A typo'd path must fail the whole update, not persist a junk subtree
	err := validateUserFields(map[string]any{"jobs.title": "Nurse"})
	assert.ErrorIs(t, err, ErrInvalidField)

	err = validateUserFields(map[string]any{"favorite_color": "red"})
	assert.ErrorIs(t, err, ErrInvalidField)

	err = validateUserFields(map[string]any{"job.seniority": 3})
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestValidateUserFields_KnownPathsPass(t *testing.T) {
	assert.NoError(t, validateUserFields(map[string]any{"job.title": "Nurse"}))
	assert.NoError(t, validateUserFields(map[string]any{"pets": []any{}}))
	assert.NoError(t, validateUserFields(map[string]any{"job": map[string]any{}}))
}

func TestValidateUserFields_FractionalCountersRejected(t *testing.T) {
	err := validateUserFields(map[string]any{"coins": 10.5})
	assert.ErrorIs(t, err, ErrInvalidField)

	// Float-typed fields still accept fractional values
	assert.NoError(t, validateUserFields(map[string]any{"job.performance_rating": 4.5}))
}

func TestNumericValue_HandlesJSONAndNativeNumbers(t *testing.T) {
	doc := Document{"a": float64(7), "b": int64(8), "c": 9, "d": "ten"}

	v, ok := numericValue(doc, "a")
	assert.True(t, ok)
	assert.Equal(t, int64(7), v)

	v, ok = numericValue(doc, "b")
	assert.True(t, ok)
	assert.Equal(t, int64(8), v)

	v, ok = numericValue(doc, "c")
	assert.True(t, ok)
	assert.Equal(t, int64(9), v)

	_, ok = numericValue(doc, "d")
	assert.False(t, ok)

	_, ok = numericValue(doc, "missing")
	assert.False(t, ok)
}
