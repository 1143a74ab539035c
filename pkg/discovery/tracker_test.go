package discovery

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sigobj/beaconfence/pkg/fence"
	"github.com/sigobj/beaconfence/pkg/ranging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observedEvent struct {
	kind     string
	readings []fence.Reading
}

type recordingObserver struct {
	events []observedEvent
}

func (r *recordingObserver) OnReadingsUpdated(_ fence.Identity, readings []fence.Reading) {
	r.events = append(r.events, observedEvent{kind: "readings", readings: readings})
}

func (r *recordingObserver) OnRegionEntered(fence.Identity) {
	r.events = append(r.events, observedEvent{kind: "enter"})
}

func (r *recordingObserver) OnRegionExited(fence.Identity) {
	r.events = append(r.events, observedEvent{kind: "exit"})
}

func (r *recordingObserver) kinds() []string {
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.kind
	}
	return out
}

func newTestTracker(obs fence.Observer) *beaconTracker {
	tr := newBeaconTracker(testIdentity(), obs, ranging.NewEstimator(1))
	tr.now = func() time.Time { return time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC) }
	return tr
}

func beaconService(instance string, id fence.Identity, signal int, addrs ...string) *BeaconService {
	return &BeaconService{
		InstanceName:  instance,
		Addresses:     addrs,
		Identity:      id,
		MeasuredPower: -59,
		Signal:        signal,
	}
}

func TestTrackerEnterReadingsExit(t *testing.T) {
	obs := &recordingObserver{}
	tr := newTestTracker(obs)

	tr.add(beaconService("lobby", testIdentity(), -59, "10.0.0.5"))
	require.Equal(t, []string{"enter", "readings"}, obs.kinds())

	readings := obs.events[1].readings
	require.Len(t, readings, 1)
	assert.True(t, testIdentity().Matches(readings[0]))
	assert.Equal(t, fence.ProximityNear, readings[0].Proximity)
	assert.InDelta(t, ranging.Distance(-59, -59), readings[0].Distance, 1e-9)
	assert.Equal(t, -59, readings[0].RSSI)

	tr.remove("lobby", []string{"10.0.0.5"})
	assert.Equal(t, []string{"enter", "readings", "exit", "readings"}, obs.kinds())
	assert.Empty(t, obs.events[3].readings)
}

func TestTrackerIgnoresOtherRegions(t *testing.T) {
	obs := &recordingObserver{}
	tr := newTestTracker(obs)

	tr.add(beaconService("other", fence.NewIdentity("x", uuid.New(), 501, 201), -60, "10.0.0.9"))
	assert.Empty(t, obs.events)
}

func TestTrackerSameRegionOtherBeaconDoesNotEnter(t *testing.T) {
	obs := &recordingObserver{}
	tr := newTestTracker(obs)

	sibling := fence.NewIdentity("sibling", testRegion, 777, 201)
	tr.add(beaconService("sibling", sibling, -70, "10.0.0.7"))

	require.Equal(t, []string{"readings"}, obs.kinds())
	assert.False(t, testIdentity().Matches(obs.events[0].readings[0]))

	tr.remove("sibling", nil)
	assert.Equal(t, []string{"readings", "readings"}, obs.kinds())
}

func TestTrackerMergesAddresses(t *testing.T) {
	obs := &recordingObserver{}
	tr := newTestTracker(obs)

	tr.add(beaconService("lobby", testIdentity(), -60, "10.0.0.5"))
	tr.add(beaconService("lobby", testIdentity(), -61, "fe80::1"))
	assert.ElementsMatch(t, []string{"10.0.0.5", "fe80::1"}, tr.services["lobby"].Addresses)

	// Only one interface gone: still visible, no exit.
	tr.remove("lobby", []string{"10.0.0.5"})
	assert.NotContains(t, obs.kinds(), "exit")
	assert.Equal(t, []string{"fe80::1"}, tr.services["lobby"].Addresses)

	tr.remove("lobby", []string{"fe80::1"})
	assert.Contains(t, obs.kinds(), "exit")
}

func TestTrackerRemoveWithoutAddressesDropsInstance(t *testing.T) {
	obs := &recordingObserver{}
	tr := newTestTracker(obs)

	tr.add(beaconService("lobby", testIdentity(), -60, "10.0.0.5"))
	tr.remove("lobby", nil)

	assert.Equal(t, []string{"enter", "readings", "exit", "readings"}, obs.kinds())
}

func TestTrackerUnknownProximityWithoutSignal(t *testing.T) {
	obs := &recordingObserver{}
	tr := newTestTracker(obs)

	tr.add(beaconService("lobby", testIdentity(), 0, "10.0.0.5"))

	readings := obs.events[len(obs.events)-1].readings
	require.Len(t, readings, 1)
	assert.Equal(t, fence.ProximityUnknown, readings[0].Proximity)
	assert.Equal(t, -1.0, readings[0].Distance)
}

func TestTrackerSnapshotOrdered(t *testing.T) {
	obs := &recordingObserver{}
	tr := newTestTracker(obs)

	tr.add(beaconService("b", fence.NewIdentity("b", testRegion, 2, 2), -60, "10.0.0.2"))
	tr.add(beaconService("a", fence.NewIdentity("a", testRegion, 1, 1), -60, "10.0.0.1"))

	last := obs.events[len(obs.events)-1].readings
	require.Len(t, last, 2)
	assert.Equal(t, uint16(1), last[0].Major)
	assert.Equal(t, uint16(2), last[1].Major)
}

func TestRemoveUnknownInstanceIsNoop(t *testing.T) {
	obs := &recordingObserver{}
	tr := newTestTracker(obs)
	tr.remove("ghost", nil)
	assert.Empty(t, obs.events)
}

func TestMDNSBrowserStopWithoutStart(t *testing.T) {
	b, err := NewMDNSBrowser(DefaultBrowserConfig())
	require.NoError(t, err)
	assert.NoError(t, b.Stop())
}
