package dist

import (
	"math"
	"math/rand/v2"
)

// HalfNormal is the distribution of |X| for X ~ Normal(0, Sigma).
type HalfNormal struct {
	Sigma float64
}

// NewHalfNormal validates sigma.
func NewHalfNormal(sigma float64) (*HalfNormal, error) {
	if sigma <= 0 {
		return nil, &ParamError{Dist: "HalfNorm", Reason: "σ should be >0"}
	}
	return &HalfNormal{Sigma: sigma}, nil
}

func (h *HalfNormal) Name() string { return "HalfNorm" }

func (h *HalfNormal) PDF(x float64) float64 {
	if x < 0 {
		return 0
	}
	pre := math.Sqrt2 / (h.Sigma * math.Sqrt(math.Pi))
	return pre * math.Exp(-(x*x)/(2*h.Sigma*h.Sigma))
}

func (h *HalfNormal) CDF(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return math.Erf(x / (h.Sigma * math.Sqrt2))
}

func (h *HalfNormal) Quantile(p float64) float64 {
	return h.Sigma * math.Sqrt2 * math.Erfinv(clampProb(p))
}

func (h *HalfNormal) Mean() float64 {
	return h.Sigma * math.Sqrt(2/math.Pi)
}

func (h *HalfNormal) Variance() float64 {
	return h.Sigma * h.Sigma * (1 - 2/math.Pi)
}

// Sample draws by inverting the CDF at a uniform variate.
func (h *HalfNormal) Sample(r *rand.Rand) float64 {
	return math.Abs(h.Quantile(r.Float64()))
}
