// Package abcurve implements the augmented bonding curve that relates the
// collateral reserve, the token supply and the spot price through a power-law
// invariant.
package abcurve

import "math"

// Invariant returns supply^kappa / reserve.
func Invariant(reserve, supply, kappa float64) float64 {
	return math.Pow(supply, kappa) / reserve
}

// Curve is immutable once created. Only the reserve and supply held outside
// of it change over time.
type Curve struct {
	kappa     float64
	invariant float64
}

// New fixes the invariant from the initial reserve and supply.
func New(initialReserve, initialSupply, kappa float64) Curve {
	return Curve{
		kappa:     kappa,
		invariant: Invariant(initialReserve, initialSupply, kappa),
	}
}

// Invariant returns the fixed invariant of the curve.
func (c Curve) Invariant() float64 { return c.invariant }

// SupplyFor returns the token supply matching the given reserve.
func (c Curve) SupplyFor(reserve float64) float64 {
	return math.Pow(c.invariant*reserve, 1/c.kappa)
}

// ReserveFor returns the reserve matching the given supply.
func (c Curve) ReserveFor(supply float64) float64 {
	return math.Pow(supply, c.kappa) / c.invariant
}

// SpotPrice returns the marginal token price at the given reserve.
func (c Curve) SpotPrice(reserve float64) float64 {
	return c.kappa * math.Pow(reserve, (c.kappa-1)/c.kappa) / math.Pow(c.invariant, 1/c.kappa)
}

// Mint returns the tokens minted for depositing deltaReserve and the realized
// price. A zero mint yields a non-finite price.
func (c Curve) Mint(deltaReserve, reserve, supply float64) (deltaSupply, price float64) {
	deltaSupply = math.Pow(c.invariant*(reserve+deltaReserve), 1/c.kappa) - supply
	price = deltaReserve / deltaSupply
	return deltaSupply, price
}

// Withdraw returns the reserve released by burning deltaSupply tokens and the
// realized price.
func (c Curve) Withdraw(deltaSupply, reserve, supply float64) (deltaReserve, price float64) {
	deltaReserve = reserve - math.Pow(supply-deltaSupply, c.kappa)/c.invariant
	price = deltaReserve / deltaSupply
	return deltaReserve, price
}
