package store

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	// ErrInvalidID is returned when an operation is given a non-positive id.
	ErrInvalidID = errors.New("invalid record id")

	// ErrInvalidField is returned when an update supplies a value of the
	// wrong type for a recognized field, or addresses an unknown
	// leaderboard field.
	ErrInvalidField = errors.New("invalid field")

	// ErrInsufficientBalance is returned when a debit would take a counter
	// below zero. The record is left untouched.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// numericUserFields are the recognized numeric leaf paths of a user record.
// Updates addressing one of these must carry a numeric value.
var numericUserFields = map[string]bool{
	"coins":                  true,
	"bank":                   true,
	"xp":                     true,
	"level":                  true,
	"daily_streak":           true,
	"work_streak":            true,
	"work_count":             true,
	"cookies":                true,
	"job.current_level":      true,
	"job.work_xp":            true,
	"job.performance_rating": true,
	"economy.total_earned":   true,
	"economy.total_spent":    true,
	"stats.commands_used":    true,
	"stats.games_played":     true,
	"stats.games_won":        true,
	"stats.messages_seen":    true,
	"social.reputation":      true,
	"social.partner_id":      true,
}

// counterFields are the top-level counters addressable by the increment
// operations and the leaderboard.
var counterFields = map[string]bool{
	"coins":        true,
	"bank":         true,
	"xp":           true,
	"level":        true,
	"daily_streak": true,
	"work_streak":  true,
	"work_count":   true,
	"cookies":      true,
}

// floatUserFields are the numeric fields that may carry fractional values.
// Every other numeric field is an integer counter.
var floatUserFields = map[string]bool{
	"job.performance_rating": true,
}

// validUserFields enumerates every addressable path of a user record: the
// top-level fields plus the dotted leaf paths of the nested sub-documents.
var validUserFields = func() map[string]bool {
	valid := map[string]bool{
		"id":            true,
		"last_daily":    true,
		"last_work":     true,
		"last_interest": true,
		"created_at":    true,
		"last_updated":  true,
		"last_seen":     true,

		"job":     true,
		"economy": true,
		"stats":   true,
		"social":  true,

		"job.career_path": true,
		"job.title":       true,

		"warnings":            true,
		"pets":                true,
		"investments":         true,
		"loans":               true,
		"credit_cards":        true,
		"temporary_purchases": true,
		"temporary_roles":     true,
		"reminders":           true,
	}
	for path := range numericUserFields {
		valid[path] = true
	}
	return valid
}()

// validateUserFields checks an update's paths and values against the known
// schema before anything is mutated. Paths outside the schema are rejected so
// a typo'd field never persists a junk subtree the typed reader would ignore.
func validateUserFields(fields map[string]any) error {
	for path, value := range fields {
		if !validUserFields[path] {
			return fmt.Errorf("%w: unknown field %s", ErrInvalidField, path)
		}
		if !numericUserFields[path] {
			continue
		}
		if !isNumeric(value) {
			return fmt.Errorf("%w: %s requires a numeric value, got %T", ErrInvalidField, path, value)
		}
		if !floatUserFields[path] && !isIntegral(value) {
			return fmt.Errorf("%w: %s requires an integer value, got %v", ErrInvalidField, path, value)
		}
	}
	return nil
}

// isNumeric reports whether a value is one of the numeric shapes an update
// may carry, either native Go integers or JSON-decoded float64.
func isNumeric(value any) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	default:
		return false
	}
}

// isIntegral reports whether a numeric value carries no fractional part.
// Integer counters reject fractional input instead of truncating it later.
func isIntegral(value any) bool {
	switch v := value.(type) {
	case float32:
		return float64(v) == math.Trunc(float64(v))
	case float64:
		return v == math.Trunc(v)
	default:
		return true
	}
}

// applyFields merges a set of updates into a document. Dotted keys address
// nested fields, creating intermediate objects as needed; plain keys replace
// the top-level value wholesale (including whole-array replacement for list
// fields). A last_updated stamp is part of the same merge.
func applyFields(doc Document, fields map[string]any) {
	for path, value := range fields {
		if !strings.Contains(path, ".") {
			doc[path] = value
			continue
		}
		setNested(doc, strings.Split(path, "."), value)
	}
	doc["last_updated"] = time.Now().UTC().Format(time.RFC3339Nano)
}

// setNested walks a dotted path through map-of-maps, creating intermediate
// maps where the path doesn't exist yet or crosses a non-map value.
func setNested(doc Document, path []string, value any) {
	current := doc
	for _, key := range path[:len(path)-1] {
		next, ok := current[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[key] = next
		}
		current = next
	}
	current[path[len(path)-1]] = value
}

// numericValue extracts a top-level numeric field from a document. Values
// arrive as float64 after a JSON round trip but may still be native integers
// when freshly converted from a typed record.
func numericValue(doc Document, field string) (int64, bool) {
	switch v := doc[field].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}
