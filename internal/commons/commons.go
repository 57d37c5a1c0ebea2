// Package commons holds the token economy's ledger: the collateral pool
// behind the bonding curve, the funding pool that pays out grants, and the
// token supply.
package commons

import (
	"errors"
	"fmt"

	"CommonsSim/internal/abcurve"
)

// ErrInsufficientFundingPool is returned when a spend would overdraw the
// funding pool.
var ErrInsufficientFundingPool = errors.New("insufficient funding pool")

// Commons mediates every deposit, burn and spend. It is not safe for
// concurrent use.
type Commons struct {
	hatchTribute float64
	exitTribute  float64

	collateralPool float64
	fundingPool    float64
	tokenSupply    float64
	hatchTokens    float64

	curve abcurve.Curve
}

// Pools is a point-in-time view of the ledger.
type Pools struct {
	FundingPool    float64 `json:"funding_pool" yaml:"funding_pool"`
	CollateralPool float64 `json:"collateral_pool" yaml:"collateral_pool"`
	TokenSupply    float64 `json:"token_supply" yaml:"token_supply"`
	TokenPrice     float64 `json:"token_price" yaml:"token_price"`
}

// New splits the hatch raise between the collateral and funding pools and
// fixes the bonding curve from the resulting collateral and supply.
func New(totalHatchRaise, tokenSupply, hatchTribute, exitTribute, kappa float64) *Commons {
	collateral := (1 - hatchTribute) * totalHatchRaise
	return &Commons{
		hatchTribute:   hatchTribute,
		exitTribute:    exitTribute,
		collateralPool: collateral,
		fundingPool:    hatchTribute * totalHatchRaise,
		tokenSupply:    tokenSupply,
		hatchTokens:    tokenSupply,
		curve:          abcurve.New(collateral, tokenSupply, kappa),
	}
}

func (c *Commons) FundingPool() float64    { return c.fundingPool }
func (c *Commons) CollateralPool() float64 { return c.collateralPool }
func (c *Commons) TokenSupply() float64    { return c.tokenSupply }
func (c *Commons) HatchTokens() float64    { return c.hatchTokens }
func (c *Commons) HatchTribute() float64   { return c.hatchTribute }
func (c *Commons) ExitTribute() float64    { return c.exitTribute }
func (c *Commons) Curve() abcurve.Curve    { return c.curve }

// Pools returns the current balances and spot price.
func (c *Commons) Pools() Pools {
	return Pools{
		FundingPool:    c.fundingPool,
		CollateralPool: c.collateralPool,
		TokenSupply:    c.tokenSupply,
		TokenPrice:     c.TokenPrice(),
	}
}

// Deposit mints tokens against dai. All of it goes to the collateral pool.
func (c *Commons) Deposit(dai float64) (tokens, price float64) {
	tokens, price = c.curve.Mint(dai, c.collateralPool, c.tokenSupply)
	c.tokenSupply += tokens
	c.collateralPool += dai
	return tokens, price
}

// Burn redeems tokens. When an exit tribute is set, that share of the
// withdrawn collateral moves to the funding pool and only the remainder is
// returned.
func (c *Commons) Burn(tokens float64) (returned, price float64) {
	dai, price := c.curve.Withdraw(tokens, c.collateralPool, c.tokenSupply)
	c.tokenSupply -= tokens
	c.collateralPool -= dai
	returned = dai

	if c.exitTribute != 0 {
		c.fundingPool += c.exitTribute * dai
		returned = (1 - c.exitTribute) * dai
	}
	return returned, price
}

// Spend pays amount out of the funding pool. The pool is left untouched if
// it cannot cover the amount.
func (c *Commons) Spend(amount float64) error {
	if c.fundingPool-amount < 0 {
		return fmt.Errorf("%v requested but funding pool holds %v: %w", amount, c.fundingPool, ErrInsufficientFundingPool)
	}
	c.fundingPool -= amount
	return nil
}

// AddFunding injects dai from outside the bonding curve.
func (c *Commons) AddFunding(dai float64) error {
	if dai < 0 {
		return fmt.Errorf("add funding: negative amount %v", dai)
	}
	c.fundingPool += dai
	return nil
}

// TokenPrice is the spot price at the current collateral pool.
func (c *Commons) TokenPrice() float64 {
	return c.curve.SpotPrice(c.collateralPool)
}

// DaiToTokens is how many tokens dai buys at the spot price.
func (c *Commons) DaiToTokens(dai float64) float64 {
	return dai / c.TokenPrice()
}

// Clone returns an independent copy of the ledger.
func (c *Commons) Clone() *Commons {
	cp := *c
	return &cp
}
