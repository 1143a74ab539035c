package fence

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// CBOR map keys of the persisted identity form.
const (
	keyName     = 1
	keyRegionID = 2
	keyMajor    = 3
	keyMinor    = 4
)

// identityWire is the persisted form. Pointer fields detect missing keys.
type identityWire struct {
	Name     *string `cbor:"1,keyasint"`
	RegionID []byte  `cbor:"2,keyasint"`
	Major    *uint16 `cbor:"3,keyasint"`
	Minor    *uint16 `cbor:"4,keyasint"`
}

var (
	identityEncMode cbor.EncMode
	identityDecMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
	}
	identityEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create identity CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		IndefLength:       cbor.IndefLengthForbidden,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}
	identityDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create identity CBOR decoder mode: %v", err))
	}
}

// MarshalBinary encodes the identity into its opaque persisted form.
// The reading state of a Fence is never part of it.
func (i Identity) MarshalBinary() ([]byte, error) {
	name := i.name
	major := i.major
	minor := i.minor
	return identityEncMode.Marshal(identityWire{
		Name:     &name,
		RegionID: i.regionID[:],
		Major:    &major,
		Minor:    &minor,
	})
}

// UnmarshalIdentity decodes a persisted identity.
// Any malformed or incomplete payload yields a *CorruptDataError.
func UnmarshalIdentity(data []byte) (Identity, error) {
	var w identityWire
	if err := identityDecMode.Unmarshal(data, &w); err != nil {
		return Identity{}, &CorruptDataError{Cause: err}
	}

	if w.Name == nil {
		return Identity{}, &CorruptDataError{Field: "name"}
	}
	regionID, err := uuid.FromBytes(w.RegionID)
	if err != nil {
		return Identity{}, &CorruptDataError{Field: "region_id", Cause: err}
	}
	if w.Major == nil {
		return Identity{}, &CorruptDataError{Field: "major"}
	}
	if w.Minor == nil {
		return Identity{}, &CorruptDataError{Field: "minor"}
	}

	return NewIdentity(*w.Name, regionID, *w.Major, *w.Minor), nil
}

// UnmarshalIdentityLenient decodes a persisted identity without failing.
// Fields that cannot be recovered fall back to an empty name, a new random
// region id, and zero major/minor.
func UnmarshalIdentityLenient(data []byte) Identity {
	if id, err := UnmarshalIdentity(data); err == nil {
		return id
	}

	id := Identity{regionID: uuid.New()}

	var fields map[int]cbor.RawMessage
	if err := cbor.Unmarshal(data, &fields); err != nil {
		return id
	}

	if raw, ok := fields[keyName]; ok {
		_ = cbor.Unmarshal(raw, &id.name)
	}
	if raw, ok := fields[keyRegionID]; ok {
		var b []byte
		if cbor.Unmarshal(raw, &b) == nil {
			if parsed, err := uuid.FromBytes(b); err == nil {
				id.regionID = parsed
			}
		}
	}
	if raw, ok := fields[keyMajor]; ok {
		var v uint16
		if cbor.Unmarshal(raw, &v) == nil {
			id.major = v
		}
	}
	if raw, ok := fields[keyMinor]; ok {
		var v uint16
		if cbor.Unmarshal(raw, &v) == nil {
			id.minor = v
		}
	}
	return id
}
