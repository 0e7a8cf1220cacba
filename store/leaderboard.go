package store

import (
	"context"
	"fmt"
	"sort"
)

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	Rank   int   `json:"rank"`
	UserID int64 `json:"user_id"`
	Value  int64 `json:"value"`
}

// LeaderboardPage is one page of a descending leaderboard.
type LeaderboardPage struct {
	Field      string             `json:"field"`
	Entries    []LeaderboardEntry `json:"entries"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalUsers int                `json:"total_users"`
	TotalPages int                `json:"total_pages"`
}

// DefaultPageSize is used when a caller passes a non-positive page size.
const DefaultPageSize = 10

// QueryLeaderboard ranks users by a counter field, descending, excluding
// zero and negative values. Ties are broken by id ascending so pagination is
// deterministic regardless of backend iteration order.
func (s *RecordStore) QueryLeaderboard(ctx context.Context, field string, page, pageSize int) (*LeaderboardPage, error) {
	if !counterFields[field] {
		return nil, fmt.Errorf("%w: %s is not a leaderboard field", ErrInvalidField, field)
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	docs, err := s.allDocuments(ctx, KindUser)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(docs))
	for id, doc := range docs {
		value, ok := numericValue(doc, field)
		if !ok || value <= 0 {
			continue
		}
		entries = append(entries, LeaderboardEntry{UserID: id, Value: value})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].UserID < entries[j].UserID
	})

	total := len(entries)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	pageEntries := make([]LeaderboardEntry, 0, end-start)
	for i := start; i < end; i++ {
		entry := entries[i]
		entry.Rank = i + 1
		pageEntries = append(pageEntries, entry)
	}

	opsTotal.WithLabelValues("leaderboard", string(KindUser), "ok").Inc()
	return &LeaderboardPage{
		Field:      field,
		Entries:    pageEntries,
		Page:       page,
		PageSize:   pageSize,
		TotalUsers: total,
		TotalPages: totalPages,
	}, nil
}
