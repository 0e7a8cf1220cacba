package models

import (
	"time"
)

// GuildRecord is the persisted state for a guild, keyed by guild id.
type GuildRecord struct {
	ID                int64                       `json:"id"`
	Settings          GuildSettings               `json:"settings"`
	StarboardMessages map[string]StarboardMessage `json:"starboard_messages"`
	CreatedAt         time.Time                   `json:"created_at"`
	LastUpdated       time.Time                   `json:"last_updated"`
}

// GuildSettings holds per-guild channel ids and feature toggles.
type GuildSettings struct {
	WelcomeChannelID   int64 `json:"welcome_channel_id"`
	LogChannelID       int64 `json:"log_channel_id"`
	StarboardChannelID int64 `json:"starboard_channel_id"`
	StarboardThreshold int64 `json:"starboard_threshold"`
	LevelUpMessages    bool  `json:"level_up_messages"`
	EconomyEnabled     bool  `json:"economy_enabled"`
}

// StarboardMessage records a message that was posted to the starboard,
// keyed in GuildRecord by the source message id.
type StarboardMessage struct {
	StarboardMessageID int64 `json:"starboard_message_id"`
	AuthorID           int64 `json:"author_id"`
	ChannelID          int64 `json:"channel_id"`
	Stars              int64 `json:"stars"`
}

// NewGuildRecord creates the default record for a guild seen for the first time.
func NewGuildRecord(id int64) *GuildRecord {
	now := time.Now().UTC()
	return &GuildRecord{
		ID: id,
		Settings: GuildSettings{
			StarboardThreshold: 3,
			LevelUpMessages:    true,
			EconomyEnabled:     true,
		},
		StarboardMessages: map[string]StarboardMessage{},
		CreatedAt:         now,
		LastUpdated:       now,
	}
}
