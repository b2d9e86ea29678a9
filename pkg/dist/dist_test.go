package dist_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/aretw0/cohort/pkg/dist"
	"github.com/aretw0/cohort/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHalfNormal(t *testing.T) {
	h, err := dist.NewHalfNormal(2)
	require.NoError(t, err)

	assert.Equal(t, 0.0, h.PDF(-1))
	assert.Equal(t, 0.0, h.CDF(0))
	assert.InDelta(t, 2*math.Sqrt(2/math.Pi), h.Mean(), 1e-12)
	assert.InDelta(t, math.Sqrt2/(2*math.Sqrt(math.Pi)), h.PDF(0), 1e-12)

	// Quantile inverts the CDF.
	for _, p := range []float64{0.1, 0.5, 0.9} {
		assert.InDelta(t, p, h.CDF(h.Quantile(p)), 1e-9)
	}

	_, err = dist.NewHalfNormal(0)
	var perr *dist.ParamError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "HalfNorm: σ should be >0", err.Error())
}

func TestHalfNormal_SampleMean(t *testing.T) {
	h, err := dist.NewHalfNormal(1.5)
	require.NoError(t, err)

	r := rand.New(rand.NewPCG(7, 11))
	const n = 20000
	sum := 0.0
	for i := 0; i < n; i++ {
		v := h.Sample(r)
		require.GreaterOrEqual(t, v, 0.0)
		sum += v
	}
	assert.InDelta(t, h.Mean(), sum/n, 0.05)
}

func TestZipf(t *testing.T) {
	z, err := dist.NewZipf(1, 4)
	require.NoError(t, err)

	h := 1 + 1.0/2 + 1.0/3 + 1.0/4
	assert.InDelta(t, 1/h, z.PDF(1), 1e-12)
	assert.InDelta(t, 0.25/h, z.PDF(4), 1e-12)
	assert.Equal(t, 0.0, z.PDF(2.5))
	assert.Equal(t, 0.0, z.PDF(5))
	assert.InDelta(t, 1.5/h, z.CDF(2), 1e-12)
	assert.Equal(t, 1.0, z.CDF(10))
	assert.InDelta(t, 4/h, z.Mean(), 1e-12)

	assert.Equal(t, 1.0, z.Quantile(0))
	assert.Equal(t, 4.0, z.Quantile(1))

	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		k := z.Sample(r)
		require.True(t, k >= 1 && k <= 4 && k == math.Floor(k))
	}

	_, err = dist.NewZipf(0, 4)
	assert.EqualError(t, err, "Zipf: s should be >0")
	_, err = dist.NewZipf(1, 0)
	assert.EqualError(t, err, "Zipf: n should be ≥1")
}

func TestFromSpec(t *testing.T) {
	tests := []struct {
		name    string
		spec    domain.DistSpec
		mean    float64
		wantErr bool
	}{
		{name: "fixed", spec: domain.DistSpec{Type: "fixed", Params: map[string]float64{"value": 3}}, mean: 3},
		{name: "uniform", spec: domain.DistSpec{Type: "uniform", Params: map[string]float64{"min": 1, "max": 3}}, mean: 2},
		{name: "normal", spec: domain.DistSpec{Type: "Normal", Params: map[string]float64{"mu": 5, "sigma": 1}}, mean: 5},
		{name: "halfnormal", spec: domain.DistSpec{Type: "halfnormal", Params: map[string]float64{"sigma": 1}}, mean: math.Sqrt(2 / math.Pi)},
		{name: "missing param", spec: domain.DistSpec{Type: "normal", Params: map[string]float64{"mu": 5}}, wantErr: true},
		{name: "bad uniform", spec: domain.DistSpec{Type: "uniform", Params: map[string]float64{"min": 3, "max": 1}}, wantErr: true},
		{name: "unknown", spec: domain.DistSpec{Type: "weibull"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := dist.FromSpec(&tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.mean, d.Mean(), 1e-12)
		})
	}
}

func TestSample_Deterministic(t *testing.T) {
	n, err := dist.NewNormal(0, 1)
	require.NoError(t, err)

	a := rand.New(rand.NewPCG(42, 42))
	b := rand.New(rand.NewPCG(42, 42))
	for i := 0; i < 100; i++ {
		assert.Equal(t, n.Sample(a), n.Sample(b))
	}
}
