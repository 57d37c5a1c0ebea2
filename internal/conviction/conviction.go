// Package conviction holds the conviction voting formulas: the funding
// trigger threshold and the per-edge conviction recurrence.
package conviction

import "math"

// TriggerThreshold returns the conviction a proposal asking fundsRequested
// out of fundingPool needs before it passes. Requests at or above the
// maxProposalRequest share of the pool can never pass and get +Inf.
func TriggerThreshold(fundsRequested, fundingPool, tokenSupply, maxProposalRequest float64) float64 {
	rho := 0.5 * (maxProposalRequest * maxProposalRequest)
	fraction := fundsRequested / fundingPool
	if fraction < maxProposalRequest {
		d := maxProposalRequest - fraction
		return rho * tokenSupply / (d * d)
	}
	return math.Inf(1)
}

// Alpha is the per-step decay that lets a constant stake reach 80% of its
// maximum conviction after daysTo80p steps.
func Alpha(daysTo80p float64) float64 {
	return math.Pow(0.2, 1/daysTo80p)
}

// Next advances one edge's conviction by one step.
func Next(tokens, alpha, prior float64) float64 {
	return tokens + float64(alpha*prior)
}

// Passes reports whether conviction meets threshold. NaN never passes.
func Passes(conviction, threshold float64) bool {
	return conviction >= threshold
}
