package fence

// Proximity is a coarse distance class derived from signal strength.
type Proximity uint8

const (
	// ProximityUnknown means the distance could not be estimated.
	ProximityUnknown Proximity = iota

	// ProximityImmediate means the beacon is very close (centimeters).
	ProximityImmediate

	// ProximityNear means the beacon is within a few meters.
	ProximityNear

	// ProximityFar means the beacon is detected but further away.
	ProximityFar
)

// String returns the display label for the proximity class.
func (p Proximity) String() string {
	switch p {
	case ProximityImmediate:
		return "Immediate"
	case ProximityNear:
		return "Near"
	case ProximityFar:
		return "Far"
	default:
		return "Unknown"
	}
}

// Valid reports whether p is one of the four defined classes.
func (p Proximity) Valid() bool {
	return p <= ProximityFar
}
