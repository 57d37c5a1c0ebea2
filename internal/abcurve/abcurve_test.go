package abcurve

import (
	"math"
	"testing"
)

func TestSpotPrice(t *testing.T) {
	c := New(1, 1, 2)
	if got := c.SpotPrice(2); got != 2.8284271247461903 {
		t.Errorf("SpotPrice(2) = %v, want 2.8284271247461903", got)
	}
}

func TestWithdraw(t *testing.T) {
	c := New(1, 1, 2)
	dai, price := c.Withdraw(0.5, 1, 1)
	if dai != 0.75 {
		t.Errorf("dai = %v, want 0.75", dai)
	}
	if price != 1.5 {
		t.Errorf("price = %v, want 1.5", price)
	}
}

func TestMint(t *testing.T) {
	c := New(800, 1000, 2)
	tokens, price := c.Mint(4000, 800, 1000)
	if tokens != 1449.489742783178 {
		t.Errorf("tokens = %v, want 1449.489742783178", tokens)
	}
	if price != 2.7595917942265427 {
		t.Errorf("price = %v, want 2.7595917942265427", price)
	}
}

func TestMint_ZeroDepositIsNaN(t *testing.T) {
	c := New(1, 1, 2)
	tokens, price := c.Mint(0, 1, 1)
	if tokens != 0 {
		t.Fatalf("tokens = %v, want 0", tokens)
	}
	if !math.IsNaN(price) {
		t.Errorf("price = %v, want NaN", price)
	}
}

func TestInvariantRoundTrip(t *testing.T) {
	tests := []struct {
		reserve, supply, kappa float64
	}{
		{1, 1, 2},
		{70000, 1e6, 2},
		{800, 1000, 3},
		{12345.678, 98765.4321, 1.5},
		{5, 500, 6},
	}
	for _, tt := range tests {
		c := New(tt.reserve, tt.supply, tt.kappa)
		for _, r := range []float64{tt.reserve, tt.reserve * 2, tt.reserve / 3} {
			got := Invariant(r, c.SupplyFor(r), tt.kappa)
			if math.Abs(got-c.Invariant()) > 1e-9*math.Abs(c.Invariant()) {
				t.Errorf("kappa=%v reserve=%v: invariant %v, want %v", tt.kappa, r, got, c.Invariant())
			}
		}
	}
}

func TestReserveForInvertsSupplyFor(t *testing.T) {
	c := New(70000, 1e6, 2)
	r := c.ReserveFor(c.SupplyFor(123456))
	if math.Abs(r-123456) > 1e-6 {
		t.Errorf("ReserveFor(SupplyFor(123456)) = %v", r)
	}
}

func TestMintThenWithdrawReturnsDeposit(t *testing.T) {
	c := New(70000, 1e6, 2)
	reserve, supply := 70000.0, 1e6
	minted, _ := c.Mint(2500, reserve, supply)
	back, _ := c.Withdraw(minted, reserve+2500, supply+minted)
	if math.Abs(back-2500) > 1e-6 {
		t.Errorf("withdraw returned %v, want 2500", back)
	}
}
