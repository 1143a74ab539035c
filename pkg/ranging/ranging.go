// Package ranging estimates beacon distance from received signal strength.
//
// The model is the log-distance curve commonly used for iBeacon-style
// transmitters: the beacon advertises its measured power (RSSI at 1 m) and
// the ratio between that and the received RSSI maps to meters. Distances are
// then bucketed into the proximity classes of package fence.
package ranging

import (
	"math"
	"sync"

	"github.com/sigobj/beaconfence/pkg/fence"
)

// Defaults.
const (
	// DefaultMeasuredPower is the typical RSSI at one meter for a phone-class transmitter.
	DefaultMeasuredPower = -59

	// DefaultAlpha is the smoothing factor of the RSSI moving average.
	DefaultAlpha = 0.3

	// ImmediateThreshold is the upper bound (exclusive) of the immediate class in meters.
	ImmediateThreshold = 0.5

	// NearThreshold is the upper bound (inclusive) of the near class in meters.
	NearThreshold = 3.0
)

// Distance estimates the distance in meters for a received RSSI.
// It returns -1 when rssi is 0 (no measurement) and for non-negative dBm
// values, which the model cannot range. A zero measuredPower selects
// DefaultMeasuredPower.
func Distance(rssi, measuredPower int) float64 {
	if measuredPower == 0 {
		measuredPower = DefaultMeasuredPower
	}
	if rssi >= 0 || measuredPower > 0 {
		return -1
	}

	ratio := float64(rssi) / float64(measuredPower)
	if ratio < 1.0 {
		return math.Pow(ratio, 10)
	}
	return 0.89976*math.Pow(ratio, 7.7095) + 0.111
}

// Classify maps a distance estimate to a proximity class.
func Classify(distance float64) fence.Proximity {
	switch {
	case distance < 0 || math.IsNaN(distance):
		return fence.ProximityUnknown
	case distance < ImmediateThreshold:
		return fence.ProximityImmediate
	case distance <= NearThreshold:
		return fence.ProximityNear
	default:
		return fence.ProximityFar
	}
}

// Estimate returns the proximity class and distance for a received RSSI.
func Estimate(rssi, measuredPower int) (fence.Proximity, float64) {
	d := Distance(rssi, measuredPower)
	return Classify(d), d
}

// Estimator smooths RSSI per beacon before estimating distance.
// It is safe for concurrent use.
type Estimator struct {
	alpha float64

	mu       sync.Mutex
	smoothed map[string]float64
}

// NewEstimator creates an Estimator with the given smoothing factor.
// Alpha outside (0, 1] selects DefaultAlpha.
func NewEstimator(alpha float64) *Estimator {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultAlpha
	}
	return &Estimator{
		alpha:    alpha,
		smoothed: make(map[string]float64),
	}
}

// Observe folds rssi into the moving average for key and returns the estimate.
// A zero rssi is not folded in and yields an unknown reading.
func (e *Estimator) Observe(key string, rssi, measuredPower int) (fence.Proximity, float64) {
	if rssi == 0 {
		return fence.ProximityUnknown, -1
	}

	e.mu.Lock()
	prev, ok := e.smoothed[key]
	next := float64(rssi)
	if ok {
		next = e.alpha*float64(rssi) + (1-e.alpha)*prev
	}
	e.smoothed[key] = next
	e.mu.Unlock()

	return Estimate(int(math.Round(next)), measuredPower)
}

// Forget drops the moving average for key.
func (e *Estimator) Forget(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.smoothed, key)
}
