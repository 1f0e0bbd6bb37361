package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogDepthCoefficient(t *testing.T) {
	c, err := LogDepthCoefficient(0.1, 1000)
	require.NoError(t, err)
	assert.InDelta(t, 2/math.Log(10000), c, 1e-6)

	enhanced, err := EnhancedLogDepthCoefficient(0.1, 1e21)
	require.NoError(t, err)
	assert.False(t, math.IsInf(enhanced, 0) || math.IsNaN(enhanced))
	assert.Greater(t, enhanced, 0.0)
}

func TestDepthCoefficientSelectsForm(t *testing.T) {
	tests := []struct {
		name      string
		near, far float64
		enhanced  bool
	}{
		{"ordinary ratio", 0.1, 1000, false},
		{"at the threshold", 1, EnhancedDepthRatio, false},
		{"extreme ratio", 0.1, 1e21, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DepthCoefficient(tt.near, tt.far)
			require.NoError(t, err)

			want, _ := LogDepthCoefficient(tt.near, tt.far)
			if tt.enhanced {
				want, _ = EnhancedLogDepthCoefficient(tt.near, tt.far)
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestDepthCoefficientErrors(t *testing.T) {
	tests := []struct {
		name      string
		near, far float64
		field     string
		reason    string
	}{
		{"zero near", 0, 1000, "near plane", "must be strictly positive"},
		{"negative near", -0.1, 1000, "near plane", "must be strictly positive"},
		{"nan near", math.NaN(), 1000, "near plane", "must be finite"},
		{"zero far", 0.1, 0, "far plane", "must be strictly positive"},
		{"infinite far", 0.1, math.Inf(1), "far plane", "must be finite"},
		{"far equals near", 1, 1, "far plane", "must exceed the near plane"},
		{"far below near", 10, 1, "far plane", "must exceed the near plane"},
	}
	calculators := map[string]func(near, far float64) (float64, error){
		"standard": LogDepthCoefficient,
		"enhanced": EnhancedLogDepthCoefficient,
		"selected": DepthCoefficient,
	}
	for _, tt := range tests {
		for name, calc := range calculators {
			t.Run(tt.name+"/"+name, func(t *testing.T) {
				c, err := calc(tt.near, tt.far)
				var cfg ConfigurationError
				require.ErrorAs(t, err, &cfg)
				assert.Equal(t, tt.field, cfg.Field)
				assert.Equal(t, tt.reason, cfg.Reason)
				assert.Zero(t, c)
			})
		}
	}
}

func TestLogDepth(t *testing.T) {
	near, far := 0.1, 1e21
	c, err := LogDepthCoefficient(near, far)
	require.NoError(t, err)

	assert.InDelta(t, 0, LogDepth(near, near, c), 1e-12)
	assert.InDelta(t, 1, LogDepth(far, near, c), 1e-12)

	prev := LogDepth(near, near, c)
	for d := 1.0; d < far; d *= 1000 {
		cur := LogDepth(d, near, c)
		assert.Greater(t, cur, prev, "depth must grow with distance")
		prev = cur
	}
}
