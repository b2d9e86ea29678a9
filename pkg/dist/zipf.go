package dist

import (
	"math"
	"math/rand/v2"
	"sort"
)

// Zipf is the discrete Zipf distribution on {1, ..., N} with exponent S.
type Zipf struct {
	S float64
	N int

	cum []float64 // cum[k-1] = P(X <= k)
}

// NewZipf validates the parameters and precomputes the cumulative table.
func NewZipf(s float64, n int) (*Zipf, error) {
	if s <= 0 {
		return nil, &ParamError{Dist: "Zipf", Reason: "s should be >0"}
	}
	if n < 1 {
		return nil, &ParamError{Dist: "Zipf", Reason: "n should be ≥1"}
	}
	z := &Zipf{S: s, N: n, cum: make([]float64, n)}
	h := harmonic(n, s)
	acc := 0.0
	for k := 1; k <= n; k++ {
		acc += math.Pow(float64(k), -s) / h
		z.cum[k-1] = acc
	}
	z.cum[n-1] = 1
	return z, nil
}

func (z *Zipf) Name() string { return "Zipf" }

// PDF is the probability mass at x; non-integers and values outside 1..N have none.
func (z *Zipf) PDF(x float64) float64 {
	k := int(x)
	if float64(k) != x || k < 1 || k > z.N {
		return 0
	}
	return math.Pow(float64(k), -z.S) / harmonic(z.N, z.S)
}

func (z *Zipf) CDF(x float64) float64 {
	k := int(math.Floor(x))
	switch {
	case k < 1:
		return 0
	case k >= z.N:
		return 1
	}
	return z.cum[k-1]
}

// Quantile returns the smallest k with P(X <= k) >= p.
func (z *Zipf) Quantile(p float64) float64 {
	p = clampProb(p)
	i := sort.SearchFloat64s(z.cum, p)
	if i >= z.N {
		i = z.N - 1
	}
	return float64(i + 1)
}

func (z *Zipf) Mean() float64 {
	return harmonic(z.N, z.S-1) / harmonic(z.N, z.S)
}

func (z *Zipf) Variance() float64 {
	h := harmonic(z.N, z.S)
	m := harmonic(z.N, z.S-1) / h
	return harmonic(z.N, z.S-2)/h - m*m
}

func (z *Zipf) Sample(r *rand.Rand) float64 {
	return z.Quantile(r.Float64())
}

// harmonic is the generalized harmonic number H(n, s) = sum_{k=1..n} k^-s.
func harmonic(n int, s float64) float64 {
	h := 0.0
	for k := n; k >= 1; k-- {
		h += math.Pow(float64(k), -s)
	}
	return h
}
