// Package fence implements beacon identity matching and proximity tracking.
//
// An Identity describes the beacon a region is built around: a region UUID
// shared by a beacon family, a 16 bit major value for the deployment group
// and a 16 bit minor value for the individual transmitter. A Fence wraps one
// Identity together with the most recent matching Reading.
//
// # Matching
//
// A Reading matches an Identity only when all three of region UUID, major
// and minor are equal. There are no wildcards. Proximity and distance never
// take part in matching.
//
// # Concurrency
//
// A Fence has a single writer (the component delivering scan results) and any
// number of readers. The last reading is swapped as an immutable snapshot, so
// Describe never observes a proximity from one reading paired with the
// distance of another.
//
// # Persistence
//
// Only the Identity is persisted. MarshalBinary produces an opaque CBOR form;
// UnmarshalIdentity rejects corrupt payloads with a *CorruptDataError.
// UnmarshalIdentityLenient restores the legacy behavior of substituting
// defaults for anything it cannot decode.
package fence
