package constants

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultBandingDividesSignature(t *testing.T) {
	assert.Zero(t, DefaultNumPerm%DefaultNumBands)
}

func TestDefaultThresholdNearCurveMidpoint(t *testing.T) {
	rows := DefaultNumPerm / DefaultNumBands
	approx := math.Pow(1.0/DefaultNumBands, 1.0/float64(rows))

	assert.InDelta(t, approx, DefaultThreshold, 0.05)
	assert.Greater(t, DefaultThreshold, 0.0)
	assert.Less(t, DefaultThreshold, 1.0)
}

func TestDefaultColumnsDiffer(t *testing.T) {
	assert.NotEqual(t, DefaultIDColumn, DefaultTextColumn)
}

func TestCurveSamplesAscending(t *testing.T) {
	for i := 1; i < len(CurveSamples); i++ {
		assert.Less(t, CurveSamples[i-1], CurveSamples[i])
	}
}
