package pathloss

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromDistance_LogDistanceFormula(t *testing.T) {
	cases := []struct {
		name     string
		distance float64
		exp      float64
		want     float64
	}{
		{"1m exp2", 1, 2, FreqConstant},
		{"2m exp2", 2, 2, 2*10*math.Log10(2) + FreqConstant},
		{"3m exp2", 3, 2, 2*10*math.Log10(3) + FreqConstant},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FromDistance(tc.distance, tc.exp)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestFromDistance_FloorsAtTwentyDB(t *testing.T) {
	ResetNearFieldWarning()
	got := FromDistance(0.0001, DefaultDistanceExp)
	assert.Equal(t, Floor, got)
}

func TestFromDistance_ZeroAndNegativeClampToEpsilon(t *testing.T) {
	zero := FromDistance(0, DefaultDistanceExp)
	negative := FromDistance(-5, DefaultDistanceExp)
	assert.Equal(t, zero, negative)
}
