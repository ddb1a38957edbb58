package config

import (
	"fmt"
	"time"

	"github.com/theirongolddev/gemledger/internal/model"
)

// Economy holds the game constants every engine call is parameterized by.
// Treat it as immutable once resolved.
type Economy struct {
	CurrencyPerPull   int64
	CostingCategories []model.BannerCategory
	BannerReference   time.Time
	BannerPeriodDays  int
	PityPulls         int
	ManualDailyRate   *float64
}

// EconomyConfig holds user overrides for the default economy.
type EconomyConfig struct {
	CurrencyPerPull   *int64   `toml:"currency_per_pull,omitempty"`
	CostingCategories []string `toml:"costing_categories,omitempty"`
	BannerReference   string   `toml:"banner_reference,omitempty"`
	BannerPeriodDays  *int     `toml:"banner_period_days,omitempty"`
	ManualDailyRate   *float64 `toml:"manual_daily_rate,omitempty"`
}

// DefaultEconomy returns the stock game economy: 160 primogems per fate,
// limited banners draw on intertwined fates, standard and beginner
// banners draw on acquaint fates.
func DefaultEconomy() Economy {
	return Economy{
		CurrencyPerPull: 160,
		CostingCategories: []model.BannerCategory{
			model.BannerCharacter, model.BannerWeapon, model.BannerChronicled,
		},
		BannerReference:  time.Date(2024, 8, 28, 0, 0, 0, 0, time.UTC),
		BannerPeriodDays: 21,
		PityPulls:        90,
	}
}

// ResolveEconomy applies the overrides in cfg on top of DefaultEconomy.
func ResolveEconomy(cfg EconomyConfig) (Economy, error) {
	econ := DefaultEconomy()

	if cfg.CurrencyPerPull != nil {
		if *cfg.CurrencyPerPull <= 0 {
			return econ, fmt.Errorf("currency_per_pull must be positive, got %d", *cfg.CurrencyPerPull)
		}
		econ.CurrencyPerPull = *cfg.CurrencyPerPull
	}
	if len(cfg.CostingCategories) > 0 {
		cats := make([]model.BannerCategory, 0, len(cfg.CostingCategories))
		for _, c := range cfg.CostingCategories {
			cat := model.BannerCategory(c)
			if err := (model.PullRecord{Banner: cat, Timestamp: econ.BannerReference}).Validate(); err != nil {
				return econ, fmt.Errorf("costing_categories: %w", err)
			}
			cats = append(cats, cat)
		}
		econ.CostingCategories = cats
	}
	if cfg.BannerReference != "" {
		ref, err := time.Parse("2006-01-02", cfg.BannerReference)
		if err != nil {
			return econ, fmt.Errorf("parsing banner_reference: %w", err)
		}
		econ.BannerReference = ref
	}
	if cfg.BannerPeriodDays != nil {
		if *cfg.BannerPeriodDays <= 0 {
			return econ, fmt.Errorf("banner_period_days must be positive, got %d", *cfg.BannerPeriodDays)
		}
		econ.BannerPeriodDays = *cfg.BannerPeriodDays
	}
	if cfg.ManualDailyRate != nil {
		rate := *cfg.ManualDailyRate
		econ.ManualDailyRate = &rate
	}
	return econ, nil
}

// IsCosting reports whether pulls on banner draw on the primary currency.
func (e Economy) IsCosting(banner model.BannerCategory) bool {
	for _, c := range e.CostingCategories {
		if c == banner {
			return true
		}
	}
	return false
}

// WithManualRate returns a copy of e with the manual daily rate set.
func (e Economy) WithManualRate(rate float64) Economy {
	e.ManualDailyRate = &rate
	return e
}
