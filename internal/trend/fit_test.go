package trend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(days []int, values ...float64) []Observation {
	obs := make([]Observation, len(days))
	for i, d := range days {
		obs[i] = Observation{Day: d, Value: values[i], OK: true}
	}
	return obs
}

func TestFitSeries_ExactLine(t *testing.T) {
	out := FitSeries(series([]int{0, 2, 4}, 3, 2, 1))
	require.True(t, out.OK(), out.String())
	assert.Equal(t, -0.5, out.Fit.Slope)
	assert.Equal(t, 3.0, out.Fit.Intercept)
	assert.Equal(t, 1.0, out.Fit.Last)
	assert.Equal(t, 2.0, out.Fit.At(2))
}

func TestFitSeries_ThreeMonthDecline(t *testing.T) {
	out := FitSeries(series([]int{0, 31, 59}, 1.0, 0.8, 0.6))
	require.True(t, out.OK())
	assert.InDelta(t, -0.0067738, out.Fit.Slope, 1e-7)
	assert.InDelta(t, 1.0032147, out.Fit.Intercept, 1e-7)
	assert.Equal(t, 0.6, out.Fit.Last)
}

func TestFitSeries_ConstantSeries(t *testing.T) {
	out := FitSeries(series([]int{0, 10, 20}, 0.7, 0.7, 0.7))
	require.True(t, out.OK())
	assert.Equal(t, 0.0, out.Fit.Slope)
	assert.Equal(t, 0.7, out.Fit.Intercept)
}

func TestFitSeries_Exclusions(t *testing.T) {
	cases := []struct {
		name   string
		obs    []Observation
		reason ExclusionReason
	}{
		{"empty", nil, ReasonTooFewPoints},
		{"single", series([]int{0}, 1), ReasonTooFewPoints},
		{"missing value", []Observation{{Day: 0, Value: 1, OK: true}, {Day: 5, OK: false}}, ReasonMissingValue},
		{"same day", series([]int{3, 3}, 1, 2), ReasonTooFewPoints},
		{"overflow", series([]int{0, 1}, -math.MaxFloat64, math.MaxFloat64), ReasonMissingValue},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out := FitSeries(c.obs)
			assert.False(t, out.OK())
			assert.Nil(t, out.Fit)
			assert.Equal(t, c.reason, out.Reason)
			assert.Contains(t, out.String(), "excluded")
		})
	}
}

func TestFitSeries_IgnoresSlicePositionForDays(t *testing.T) {
	// uneven spacing must weigh by day offset, not index
	even := FitSeries(series([]int{0, 1, 2}, 0, 1, 2))
	uneven := FitSeries(series([]int{0, 1, 10}, 0, 1, 2))
	require.True(t, even.OK())
	require.True(t, uneven.OK())
	assert.NotEqual(t, even.Fit.Slope, uneven.Fit.Slope)
}
