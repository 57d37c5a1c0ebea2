package calculator

import (
	"math"
	"testing"
)

func TestSMA(t *testing.T) {
	got, err := SMA([]float64{1, 2, 3, 4, 5}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got != 4.5 {
		t.Errorf("SMA = %v, want 4.5", got)
	}
	if _, err := SMA([]float64{1}, 2); err == nil {
		t.Error("expected error for short series")
	}
	if _, err := SMA([]float64{1}, 0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestRangeAndPosition(t *testing.T) {
	high, low, err := Range([]float64{0.14, 0.2, 0.11, 0.16})
	if err != nil {
		t.Fatal(err)
	}
	if high != 0.2 || low != 0.11 {
		t.Errorf("Range = %v, %v", high, low)
	}
	tests := []struct {
		current, high, low, want float64
	}{
		{5, 10, 0, 0.5},
		{-1, 10, 0, 0},
		{11, 10, 0, 1},
		{3, 3, 3, 0.5},
	}
	for _, tt := range tests {
		got, err := Position(tt.current, tt.high, tt.low)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("Position(%v, %v, %v) = %v, want %v", tt.current, tt.high, tt.low, got, tt.want)
		}
	}
	if _, err := Position(1, 0, 1); err == nil {
		t.Error("expected error for inverted range")
	}
	if _, _, err := Range(nil); err == nil {
		t.Error("expected error for empty series")
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		values []float64
		want   float64
	}{
		{[]float64{3, 1, 2}, 2},
		{[]float64{4, 1, 3, 2}, 2.5},
		{[]float64{0.7}, 0.7},
	}
	for _, tt := range tests {
		got, err := Median(tt.values)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("Median(%v) = %v, want %v", tt.values, got, tt.want)
		}
	}
	in := []float64{3, 1, 2}
	Median(in)
	if in[0] != 3 {
		t.Error("Median must not reorder its input")
	}
	if _, err := Median(nil); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestMeanAndStdDev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	mean, err := Mean(values)
	if err != nil {
		t.Fatal(err)
	}
	if mean != 5 {
		t.Errorf("Mean = %v, want 5", mean)
	}
	sd, err := StdDev(values)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(sd-math.Sqrt(32.0/7.0)) > 1e-12 {
		t.Errorf("StdDev = %v, want sample deviation %v", sd, math.Sqrt(32.0/7.0))
	}
	if _, err := StdDev([]float64{1}); err == nil {
		t.Error("expected error for a single value")
	}
}
