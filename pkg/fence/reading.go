package fence

import (
	"time"

	"github.com/google/uuid"
)

// Reading is one observation of a beacon delivered by a scanner.
type Reading struct {
	// RegionID, Major and Minor identify the observed beacon.
	RegionID uuid.UUID
	Major    uint16
	Minor    uint16

	// Proximity is the distance class of the observation.
	Proximity Proximity

	// Distance is the estimated distance in meters.
	// Only meaningful when Proximity is not ProximityUnknown.
	Distance float64

	// RSSI is the received signal strength in dBm, 0 when not measured.
	RSSI int

	// SeenAt is when the observation was made.
	SeenAt time.Time
}

// ReadingFor returns a reading of the given identity.
func ReadingFor(id Identity, proximity Proximity, distance float64) Reading {
	return Reading{
		RegionID:  id.regionID,
		Major:     id.major,
		Minor:     id.minor,
		Proximity: proximity,
		Distance:  distance,
	}
}
