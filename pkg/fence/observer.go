package fence

// Observer receives scan events for a monitored identity.
// Implementations are called from the scanner's delivery goroutine.
type Observer interface {
	// OnReadingsUpdated delivers the beacons seen in the latest ranging pass.
	// The slice may contain readings of other beacons and may be empty.
	OnReadingsUpdated(id Identity, readings []Reading)

	// OnRegionEntered is called when the beacon becomes visible.
	OnRegionEntered(id Identity)

	// OnRegionExited is called when the beacon is no longer visible.
	OnRegionExited(id Identity)
}

// ObserverFuncs adapts plain functions to the Observer interface.
// Nil fields are skipped.
type ObserverFuncs struct {
	ReadingsUpdated func(id Identity, readings []Reading)
	RegionEntered   func(id Identity)
	RegionExited    func(id Identity)
}

// OnReadingsUpdated calls ReadingsUpdated if set.
func (o ObserverFuncs) OnReadingsUpdated(id Identity, readings []Reading) {
	if o.ReadingsUpdated != nil {
		o.ReadingsUpdated(id, readings)
	}
}

// OnRegionEntered calls RegionEntered if set.
func (o ObserverFuncs) OnRegionEntered(id Identity) {
	if o.RegionEntered != nil {
		o.RegionEntered(id)
	}
}

// OnRegionExited calls RegionExited if set.
func (o ObserverFuncs) OnRegionExited(id Identity) {
	if o.RegionExited != nil {
		o.RegionExited(id)
	}
}

// MultiObserver forwards every event to each observer in order.
type MultiObserver []Observer

// OnReadingsUpdated forwards to all observers.
func (m MultiObserver) OnReadingsUpdated(id Identity, readings []Reading) {
	for _, o := range m {
		o.OnReadingsUpdated(id, readings)
	}
}

// OnRegionEntered forwards to all observers.
func (m MultiObserver) OnRegionEntered(id Identity) {
	for _, o := range m {
		o.OnRegionEntered(id)
	}
}

// OnRegionExited forwards to all observers.
func (m MultiObserver) OnRegionExited(id Identity) {
	for _, o := range m {
		o.OnRegionExited(id)
	}
}

// Compile-time interface satisfaction checks.
var (
	_ Observer = ObserverFuncs{}
	_ Observer = MultiObserver(nil)
)
