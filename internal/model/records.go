// Package model defines domain types for gemledger records and derived series.
package model

import (
	"errors"
	"fmt"
	"time"
)

// BannerCategory identifies which wish banner a pull was made on.
type BannerCategory string

// Known banner categories.
const (
	BannerCharacter  BannerCategory = "character"
	BannerWeapon     BannerCategory = "weapon"
	BannerChronicled BannerCategory = "chronicled"
	BannerStandard   BannerCategory = "standard"
	BannerBeginner   BannerCategory = "beginner"
)

// BannerCategories lists every category in display order.
var BannerCategories = []BannerCategory{
	BannerCharacter, BannerWeapon, BannerChronicled, BannerStandard, BannerBeginner,
}

// Source tags where a ledger entry's currency came from or went to.
type Source string

// Ledger sources.
const (
	SourceDailyCommission Source = "daily_commission"
	SourceWelkin          Source = "welkin"
	SourceEvent           Source = "event"
	SourceExploration     Source = "exploration"
	SourceAbyss           Source = "abyss"
	SourceQuest           Source = "quest"
	SourceAchievement     Source = "achievement"
	SourceMaintenance     Source = "maintenance"
	SourceCodes           Source = "codes"
	SourceBattlePass      Source = "battle_pass"
	SourcePurchase        Source = "purchase"
	SourceWishConversion  Source = "wish_conversion"
	SourceCosmetic        Source = "cosmetic"
	SourceOther           Source = "other"
)

// Sources lists every ledger source in display order.
var Sources = []Source{
	SourceDailyCommission, SourceWelkin, SourceEvent, SourceExploration,
	SourceAbyss, SourceQuest, SourceAchievement, SourceMaintenance,
	SourceCodes, SourceBattlePass, SourcePurchase, SourceWishConversion,
	SourceCosmetic, SourceOther,
}

// IsSpending reports whether entries from this source represent non-pull spend.
func (s Source) IsSpending() bool {
	return s == SourceCosmetic
}

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	for _, known := range Sources {
		if s == known {
			return true
		}
	}
	return false
}

// Snapshot is a user-entered, exact record of holdings at one moment.
type Snapshot struct {
	ID              string
	Timestamp       time.Time
	Primogems       int64
	GenesisCrystals int64
	Intertwined     int64
	Acquaint        int64
	Starglitter     int64
	Stardust        int64
	CreatedAt       time.Time
}

// PullRecord is one wish result.
type PullRecord struct {
	ID        string
	Banner    BannerCategory
	Timestamp time.Time
	ItemType  string // "Character" or "Weapon"
	ItemKey   string
	Rarity    int
}

// PurchaseEntry is one row in the manual ledger. Positive amounts are
// purchases or gains, negative amounts are non-pull spend.
type PurchaseEntry struct {
	ID        string
	Timestamp time.Time
	Amount    int64
	Source    Source
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Dataset is one consistent copy of every stored record.
type Dataset struct {
	Snapshots []Snapshot
	Pulls     []PullRecord
	Purchases []PurchaseEntry
}

// Validation errors returned at the store and import boundary.
var (
	ErrNegativeBalance = errors.New("balances must not be negative")
	ErrInvalidAmount   = errors.New("amount must be non-zero")
	ErrInvalidSource   = errors.New("unknown ledger source")
	ErrInvalidBanner   = errors.New("unknown banner category")
	ErrMissingTime     = errors.New("timestamp is required")
)

// Validate checks a snapshot before it is stored.
func (s Snapshot) Validate() error {
	if s.Timestamp.IsZero() {
		return ErrMissingTime
	}
	for _, v := range []int64{s.Primogems, s.GenesisCrystals, s.Intertwined, s.Acquaint, s.Starglitter, s.Stardust} {
		if v < 0 {
			return ErrNegativeBalance
		}
	}
	return nil
}

// Validate checks a ledger entry before it is stored.
func (p PurchaseEntry) Validate() error {
	if p.Timestamp.IsZero() {
		return ErrMissingTime
	}
	if p.Amount == 0 {
		return ErrInvalidAmount
	}
	if !p.Source.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSource, p.Source)
	}
	return nil
}

// Validate checks a pull record before it is stored.
func (p PullRecord) Validate() error {
	if p.Timestamp.IsZero() {
		return ErrMissingTime
	}
	for _, c := range BannerCategories {
		if p.Banner == c {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidBanner, p.Banner)
}
