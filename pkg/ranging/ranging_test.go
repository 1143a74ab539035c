package ranging

import (
	"testing"

	"github.com/sigobj/beaconfence/pkg/fence"
	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	t.Run("NoMeasurement", func(t *testing.T) {
		assert.Equal(t, -1.0, Distance(0, -59))
	})

	t.Run("AtMeasuredPowerIsAboutOneMeter", func(t *testing.T) {
		assert.InDelta(t, 1.0, Distance(-59, -59), 0.02)
	})

	t.Run("StrongerSignalIsCloser", func(t *testing.T) {
		assert.Less(t, Distance(-40, -59), Distance(-59, -59))
	})

	t.Run("WeakerSignalIsFurther", func(t *testing.T) {
		assert.Greater(t, Distance(-80, -59), Distance(-59, -59))
	})

	t.Run("ZeroMeasuredPowerUsesDefault", func(t *testing.T) {
		assert.Equal(t, Distance(-70, DefaultMeasuredPower), Distance(-70, 0))
	})

	t.Run("NonNegativeDBmIsUnranged", func(t *testing.T) {
		tests := []struct {
			name          string
			rssi          int
			measuredPower int
		}{
			{"PositiveRSSI", 5, -59},
			{"PositiveMeasuredPower", -70, 4},
			{"MaxMeasuredPower", -59, 20},
			{"BothPositive", 3, 3},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, -1.0, Distance(tt.rssi, tt.measuredPower))
				p, d := Estimate(tt.rssi, tt.measuredPower)
				assert.Equal(t, fence.ProximityUnknown, p)
				assert.Equal(t, -1.0, d)
			})
		}
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		distance float64
		want     fence.Proximity
	}{
		{-1, fence.ProximityUnknown},
		{0, fence.ProximityImmediate},
		{0.49, fence.ProximityImmediate},
		{0.5, fence.ProximityNear},
		{3.0, fence.ProximityNear},
		{3.01, fence.ProximityFar},
		{40, fence.ProximityFar},
	}

	for _, tt := range tests {
		if got := Classify(tt.distance); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.distance, got, tt.want)
		}
	}
}

func TestEstimate(t *testing.T) {
	p, d := Estimate(-30, -59)
	assert.Equal(t, fence.ProximityImmediate, p)
	assert.Less(t, d, ImmediateThreshold)

	p, _ = Estimate(-90, -59)
	assert.Equal(t, fence.ProximityFar, p)

	p, d = Estimate(0, -59)
	assert.Equal(t, fence.ProximityUnknown, p)
	assert.Equal(t, -1.0, d)
}

func TestEstimatorSmoothing(t *testing.T) {
	e := NewEstimator(0.5)

	_, first := e.Observe("b", -60, -59)
	_, second := e.Observe("b", -80, -59)

	// Averaged RSSI is -70, so the estimate must sit between the raw ones.
	assert.Greater(t, second, first)
	assert.Less(t, second, Distance(-80, -59))
	assert.InDelta(t, Distance(-70, -59), second, 1e-9)
}

func TestEstimatorForget(t *testing.T) {
	e := NewEstimator(0.5)
	e.Observe("b", -60, -59)
	e.Forget("b")

	_, d := e.Observe("b", -80, -59)
	assert.InDelta(t, Distance(-80, -59), d, 1e-9)
}

func TestEstimatorZeroRSSI(t *testing.T) {
	e := NewEstimator(0)
	p, d := e.Observe("b", 0, -59)
	assert.Equal(t, fence.ProximityUnknown, p)
	assert.Equal(t, -1.0, d)
}
