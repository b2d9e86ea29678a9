package dist

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/aretw0/cohort/pkg/domain"
)

// Distribution is the evaluate/sample contract shared by all distributions.
type Distribution interface {
	Name() string
	PDF(x float64) float64
	CDF(x float64) float64
	Quantile(p float64) float64
	Mean() float64
	Sample(r *rand.Rand) float64
}

// ParamError reports an invalid distribution parameter.
type ParamError struct {
	Dist   string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Dist, e.Reason)
}

// FromSpec builds the distribution described by a parameter's DistSpec.
func FromSpec(spec *domain.DistSpec) (Distribution, error) {
	if spec == nil {
		return nil, fmt.Errorf("nil distribution spec")
	}
	p := func(key string) (float64, error) {
		v, ok := spec.Params[key]
		if !ok {
			return 0, &ParamError{Dist: spec.Type, Reason: fmt.Sprintf("missing parameter %q", key)}
		}
		return v, nil
	}

	switch strings.ToLower(spec.Type) {
	case "fixed", "constant":
		v, err := p("value")
		if err != nil {
			return nil, err
		}
		return Fixed(v), nil
	case "uniform":
		lo, err := p("min")
		if err != nil {
			return nil, err
		}
		hi, err := p("max")
		if err != nil {
			return nil, err
		}
		return NewUniform(lo, hi)
	case "normal", "norm":
		mu, err := p("mu")
		if err != nil {
			return nil, err
		}
		sigma, err := p("sigma")
		if err != nil {
			return nil, err
		}
		return NewNormal(mu, sigma)
	case "halfnormal", "halfnorm":
		sigma, err := p("sigma")
		if err != nil {
			return nil, err
		}
		return NewHalfNormal(sigma)
	case "zipf":
		s, err := p("s")
		if err != nil {
			return nil, err
		}
		n, err := p("n")
		if err != nil {
			return nil, err
		}
		return NewZipf(s, int(n))
	default:
		return nil, fmt.Errorf("unknown distribution %q", spec.Type)
	}
}

// Fixed is a degenerate distribution that always yields the same value.
type Fixed float64

func (f Fixed) Name() string { return "Fixed" }

func (f Fixed) PDF(x float64) float64 {
	if x == float64(f) {
		return 1
	}
	return 0
}

func (f Fixed) CDF(x float64) float64 {
	if x < float64(f) {
		return 0
	}
	return 1
}

func (f Fixed) Quantile(float64) float64 { return float64(f) }
func (f Fixed) Mean() float64            { return float64(f) }
func (f Fixed) Sample(*rand.Rand) float64 {
	return float64(f)
}

// Uniform is the continuous uniform distribution on [Min, Max].
type Uniform struct {
	Min, Max float64
}

// NewUniform validates the bounds.
func NewUniform(lo, hi float64) (*Uniform, error) {
	if !(lo < hi) {
		return nil, &ParamError{Dist: "Unif", Reason: "a should be <b"}
	}
	return &Uniform{Min: lo, Max: hi}, nil
}

func (u *Uniform) Name() string { return "Unif" }

func (u *Uniform) PDF(x float64) float64 {
	if x < u.Min || x > u.Max {
		return 0
	}
	return 1 / (u.Max - u.Min)
}

func (u *Uniform) CDF(x float64) float64 {
	switch {
	case x <= u.Min:
		return 0
	case x >= u.Max:
		return 1
	}
	return (x - u.Min) / (u.Max - u.Min)
}

func (u *Uniform) Quantile(p float64) float64 { return u.Min + clampProb(p)*(u.Max-u.Min) }
func (u *Uniform) Mean() float64              { return (u.Min + u.Max) / 2 }
func (u *Uniform) Sample(r *rand.Rand) float64 {
	return u.Quantile(r.Float64())
}

// Normal is the Gaussian distribution.
type Normal struct {
	Mu, Sigma float64
}

// NewNormal validates sigma.
func NewNormal(mu, sigma float64) (*Normal, error) {
	if sigma <= 0 {
		return nil, &ParamError{Dist: "Norm", Reason: "σ should be >0"}
	}
	return &Normal{Mu: mu, Sigma: sigma}, nil
}

func (n *Normal) Name() string { return "Norm" }

func (n *Normal) PDF(x float64) float64 {
	z := (x - n.Mu) / n.Sigma
	return math.Exp(-z*z/2) / (n.Sigma * math.Sqrt(2*math.Pi))
}

func (n *Normal) CDF(x float64) float64 {
	return 0.5 * math.Erfc(-(x-n.Mu)/(n.Sigma*math.Sqrt2))
}

func (n *Normal) Quantile(p float64) float64 {
	return n.Mu + n.Sigma*math.Sqrt2*math.Erfinv(2*clampProb(p)-1)
}

func (n *Normal) Mean() float64 { return n.Mu }

func (n *Normal) Sample(r *rand.Rand) float64 {
	return n.Quantile(r.Float64())
}

func clampProb(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
