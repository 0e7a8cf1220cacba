package models

import (
	"time"
)

// StartingCoins is the balance a brand-new user record starts with.
const StartingCoins int64 = 1000

// UserRecord is the persisted state for a single user, keyed by their
// platform id. Records are never absent: any lookup for an unknown id
// synthesizes one via NewUserRecord, so callers never branch on "not found".
type UserRecord struct {
	ID int64 `json:"id"`

	// Scalar counters
	Coins       int64 `json:"coins"`
	Bank        int64 `json:"bank"`
	XP          int64 `json:"xp"`
	Level       int64 `json:"level"`
	DailyStreak int64 `json:"daily_streak"`
	WorkStreak  int64 `json:"work_streak"`
	WorkCount   int64 `json:"work_count"`
	Cookies     int64 `json:"cookies"`

	// Timestamps
	LastDaily    time.Time `json:"last_daily"`
	LastWork     time.Time `json:"last_work"`
	LastInterest time.Time `json:"last_interest"`
	CreatedAt    time.Time `json:"created_at"`
	LastUpdated  time.Time `json:"last_updated"`
	LastSeen     time.Time `json:"last_seen"`

	// Nested sub-documents
	Job     Job           `json:"job"`
	Economy EconomyTotals `json:"economy"`
	Stats   Stats         `json:"stats"`
	Social  Social        `json:"social"`

	// Ordered collections
	Warnings           []Warning           `json:"warnings"`
	Pets               []Pet               `json:"pets"`
	Investments        []Investment        `json:"investments"`
	Loans              []Loan              `json:"loans"`
	CreditCards        []CreditCard        `json:"credit_cards"`
	TemporaryPurchases []TemporaryPurchase `json:"temporary_purchases"`
	TemporaryRoles     []TemporaryRole     `json:"temporary_roles"`
	Reminders          []Reminder          `json:"reminders"`
}

// Job tracks a user's career progression.
type Job struct {
	CareerPath        string  `json:"career_path"`
	CurrentLevel      int64   `json:"current_level"`
	Title             string  `json:"title"`
	WorkXP            int64   `json:"work_xp"`
	PerformanceRating float64 `json:"performance_rating"`
}

// EconomyTotals tracks lifetime earn/spend totals.
type EconomyTotals struct {
	TotalEarned int64 `json:"total_earned"`
	TotalSpent  int64 `json:"total_spent"`
}

// Stats tracks activity counters used by profile displays.
type Stats struct {
	CommandsUsed int64 `json:"commands_used"`
	GamesPlayed  int64 `json:"games_played"`
	GamesWon     int64 `json:"games_won"`
	MessagesSeen int64 `json:"messages_seen"`
}

// Social tracks social standing.
type Social struct {
	Reputation int64 `json:"reputation"`
	PartnerID  int64 `json:"partner_id"`
}

// Warning is a moderation warning entry.
type Warning struct {
	ModeratorID int64     `json:"moderator_id"`
	Reason      string    `json:"reason"`
	IssuedAt    time.Time `json:"issued_at"`
}

// Pet is an adopted pet.
type Pet struct {
	Name      string    `json:"name"`
	Species   string    `json:"species"`
	Level     int64     `json:"level"`
	XP        int64     `json:"xp"`
	Hunger    int64     `json:"hunger"`
	Happiness int64     `json:"happiness"`
	AdoptedAt time.Time `json:"adopted_at"`
}

// Investment is a stock position.
type Investment struct {
	Symbol     string    `json:"symbol"`
	Shares     int64     `json:"shares"`
	BuyPrice   int64     `json:"buy_price"`
	InvestedAt time.Time `json:"invested_at"`
}

// Loan is an outstanding loan.
type Loan struct {
	Amount       int64     `json:"amount"`
	Remaining    int64     `json:"remaining"`
	InterestRate float64   `json:"interest_rate"`
	TakenAt      time.Time `json:"taken_at"`
	DueAt        time.Time `json:"due_at"`
}

// CreditCard is an issued credit card.
type CreditCard struct {
	Tier     string    `json:"tier"`
	Limit    int64     `json:"limit"`
	Balance  int64     `json:"balance"`
	IssuedAt time.Time `json:"issued_at"`
}

// TemporaryPurchase is a shop purchase that expires.
type TemporaryPurchase struct {
	Item      string    `json:"item"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TemporaryRole is a role grant that expires.
type TemporaryRole struct {
	RoleID    int64     `json:"role_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Reminder is a scheduled reminder.
type Reminder struct {
	Message   string    `json:"message"`
	ChannelID int64     `json:"channel_id"`
	RemindAt  time.Time `json:"remind_at"`
}

// NewUserRecord creates the default record for a user seen for the first
// time. Collections are initialized non-nil so they serialize as empty
// arrays rather than null.
func NewUserRecord(id int64) *UserRecord {
	now := time.Now().UTC()
	return &UserRecord{
		ID:                 id,
		Coins:              StartingCoins,
		Level:              1,
		CreatedAt:          now,
		LastUpdated:        now,
		Warnings:           []Warning{},
		Pets:               []Pet{},
		Investments:        []Investment{},
		Loans:              []Loan{},
		CreditCards:        []CreditCard{},
		TemporaryPurchases: []TemporaryPurchase{},
		TemporaryRoles:     []TemporaryRole{},
		Reminders:          []Reminder{},
	}
}
