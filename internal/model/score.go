package model

// FactorScore is one named component of a run's score. Factors that came out
// NaN or infinite are reported with Counted false and left out of the sum.
type FactorScore struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Counted    bool    `json:"counted"`
	Commentary string  `json:"commentary"`
}

// RunScore is the scaled sum of a run's factors and the grade it maps to.
type RunScore struct {
	Factors []FactorScore `json:"factors"`
	Sum     float64       `json:"sum"`
	Total   float64       `json:"total"`
	Grade   string        `json:"grade"`
}
