package fence

import (
	"fmt"

	"github.com/google/uuid"
)

// Identity is the advertised identity of a beacon.
// It is a value type; its fields cannot change after construction.
type Identity struct {
	name     string
	regionID uuid.UUID
	major    uint16
	minor    uint16
}

// NewIdentity creates an Identity from already validated values.
func NewIdentity(name string, regionID uuid.UUID, major, minor uint16) Identity {
	return Identity{
		name:     name,
		regionID: regionID,
		major:    major,
		minor:    minor,
	}
}

// ParseIdentity creates an Identity from configuration values.
// The region id must be a UUID string; major and minor must fit in 16 bits.
func ParseIdentity(name, regionID string, major, minor int) (Identity, error) {
	id, err := uuid.Parse(regionID)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %q: %v", ErrInvalidRegionID, regionID, err)
	}
	if major < 0 || major > 0xFFFF {
		return Identity{}, fmt.Errorf("%w: %d", ErrInvalidMajor, major)
	}
	if minor < 0 || minor > 0xFFFF {
		return Identity{}, fmt.Errorf("%w: %d", ErrInvalidMinor, minor)
	}
	return NewIdentity(name, id, uint16(major), uint16(minor)), nil
}

// Name returns the display name.
func (i Identity) Name() string { return i.name }

// RegionID returns the region UUID.
func (i Identity) RegionID() uuid.UUID { return i.regionID }

// Major returns the major value.
func (i Identity) Major() uint16 { return i.major }

// Minor returns the minor value.
func (i Identity) Minor() uint16 { return i.minor }

// Matches reports whether the reading was produced by this beacon.
// Only the (region, major, minor) triple is compared.
func (i Identity) Matches(r Reading) bool {
	return r.RegionID == i.regionID &&
		r.Major == i.major &&
		r.Minor == i.minor
}

// Equal reports whether both identities carry the same four fields.
func (i Identity) Equal(other Identity) bool {
	return i == other
}

// Key returns the canonical "<UUID>:<major>:<minor>" form of the triple.
func (i Identity) Key() string {
	return fmt.Sprintf("%s:%d:%d", i.regionID, i.major, i.minor)
}

// String returns a human-readable representation.
func (i Identity) String() string {
	if i.name == "" {
		return i.Key()
	}
	return fmt.Sprintf("%s (%s)", i.name, i.Key())
}
