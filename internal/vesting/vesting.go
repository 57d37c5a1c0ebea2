// Package vesting models token holdings that unlock over time after a cliff.
package vesting

import (
	"errors"
	"fmt"
	"math"
)

// ErrInsufficientBalance is returned when a spend exceeds the spendable balance.
var ErrInsufficientBalance = errors.New("insufficient balance")

// log(0.2)/log(0.5): the number of halflives until 80% is unlocked.
const halflivesTo80p = 2.321928094887362

// Curve returns the unlocked fraction at ageDays for a cliff/halflife
// schedule. It is negative before the cliff; callers clamp.
func Curve(ageDays, cliffDays, halflifeDays float64) float64 {
	return 1 - math.Pow(0.5, (ageDays-cliffDays)/halflifeDays)
}

// Convert80p turns "days until 80% unlocked" into a cliff and halflife.
// vRatio is cliff/halflife.
func Convert80p(days, vRatio float64) (cliffDays, halflifeDays float64) {
	halflifeDays = days / (halflivesTo80p + vRatio)
	cliffDays = vRatio * halflifeDays
	return cliffDays, halflifeDays
}

// Options describes a vesting schedule. The zero value means always unlocked.
type Options struct {
	CliffDays    float64 `yaml:"cliff_days" json:"cliff_days"`
	HalflifeDays float64 `yaml:"halflife_days" json:"halflife_days"`
}

// TokenBatch holds one participant's tokens.
type TokenBatch struct {
	Vesting      float64 `yaml:"vesting" json:"vesting"`
	Nonvesting   float64 `yaml:"nonvesting" json:"nonvesting"`
	VestingSpent float64 `yaml:"vesting_spent" json:"vesting_spent"`
	AgeDays      int     `yaml:"age_days" json:"age_days"`
	Options      `yaml:",inline"`
}

// NewTokenBatch creates a batch of age zero.
func NewTokenBatch(vesting, nonvesting float64, opts Options) *TokenBatch {
	return &TokenBatch{Vesting: vesting, Nonvesting: nonvesting, Options: opts}
}

// Total is everything the batch still holds, locked or not.
func (b *TokenBatch) Total() float64 {
	return (b.Vesting - b.VestingSpent) + b.Nonvesting
}

// VestingRemaining is the unspent part of the vesting tokens.
func (b *TokenBatch) VestingRemaining() float64 {
	return b.Vesting - b.VestingSpent
}

// UpdateAge advances the batch by days and returns the new age.
func (b *TokenBatch) UpdateAge(days int) int {
	b.AgeDays += days
	return b.AgeDays
}

// UnlockedFraction is the share of the vesting tokens unlocked to date.
func (b *TokenBatch) UnlockedFraction() float64 {
	if b.CliffDays == 0 || b.HalflifeDays == 0 {
		return 1.0
	}
	u := Curve(float64(b.AgeDays), b.CliffDays, b.HalflifeDays)
	if u > 0 {
		return u
	}
	return 0
}

// Spendable accounts for vesting tokens already spent.
func (b *TokenBatch) Spendable() float64 {
	return ((b.UnlockedFraction() * b.Vesting) - b.VestingSpent) + b.Nonvesting
}

// Spend draws x from the nonvesting tokens first and the unlocked vesting
// tokens after that.
func (b *TokenBatch) Spend(x float64) error {
	if x > b.Spendable() {
		return fmt.Errorf("spend %v of %v spendable at age %d: %w", x, b.Spendable(), b.AgeDays, ErrInsufficientBalance)
	}
	y := x - b.Nonvesting
	if y > 0 {
		b.VestingSpent += y
		b.Nonvesting = 0
	} else {
		b.Nonvesting = math.Abs(y)
	}
	return nil
}

// IncreaseHoldings adds freely spendable tokens.
func (b *TokenBatch) IncreaseHoldings(x float64) {
	b.Nonvesting += x
}

// Clone returns an independent copy.
func (b *TokenBatch) Clone() *TokenBatch {
	c := *b
	return &c
}

// CreateTokenBatches splits the hatch supply among hatchers in proportion to
// their contributions. Hatchers receive vesting tokens only.
func CreateTokenBatches(contributions []float64, desiredPrice float64, opts Options) ([]*TokenBatch, float64) {
	raise := 0.0
	for _, c := range contributions {
		raise += c
	}
	supply := raise / desiredPrice

	batches := make([]*TokenBatch, len(contributions))
	for i, c := range contributions {
		batches[i] = NewTokenBatch((c/raise)*supply, 0, opts)
	}
	return batches, supply
}
