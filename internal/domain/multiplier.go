package domain

import (
	"math"
	"time"
)

// Multiplier is a temporary scalar applied to point gains before they
// reach the ledger. Amount is kept in hundredths.
type Multiplier struct {
	Hundredths  int        `json:"hundredths"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Description string     `json:"description"`
}

// Amount returns the multiplier as a rational number
func (m Multiplier) Amount() float64 {
	return float64(m.Hundredths) / MultiplierScale
}

// Expired reports whether the multiplier has an expiry at or before now
func (m Multiplier) Expired(now time.Time) bool {
	return m.ExpiresAt != nil && !m.ExpiresAt.After(now)
}

// HundredthsFromAmount rounds a rational amount to two decimals
func HundredthsFromAmount(amount float64) (int, bool) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, false
	}
	h := int(math.Round(amount * MultiplierScale))
	if h < MinMultiplierHundredths || h > MaxMultiplierHundredths {
		return 0, false
	}
	return h, true
}
