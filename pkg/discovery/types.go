package discovery

import (
	"errors"
	"time"

	"github.com/sigobj/beaconfence/pkg/fence"
)

// Service constants for mDNS.
const (
	// ServiceType is the DNS-SD service type for beacons.
	ServiceType = "_ibeacon._udp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is published in the SRV record. Beacons accept no
	// connections, so the value is nominal.
	DefaultPort = 7474
)

// TXT record key constants.
const (
	TXTKeyRegion        = "U"  // Region UUID
	TXTKeyMajor         = "MA" // Major value
	TXTKeyMinor         = "MI" // Minor value
	TXTKeyName          = "N"  // Display name (optional)
	TXTKeyMeasuredPower = "MP" // RSSI at 1 m in dBm (optional)
	TXTKeySignal        = "RS" // Observed signal in dBm (optional)
	TXTKeyVersion       = "V"  // Record format version (optional, absent means 1.0)
)

// Timing constants.
const (
	// DefaultTTL is the DNS record TTL used when none is configured.
	DefaultTTL = 120 * time.Second

	// BrowseTimeout is the default timeout for one-shot browsing.
	BrowseTimeout = 10 * time.Second
)

// Limits.
const (
	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63

	// MinSignal and MaxSignal bound the MP and RS values in dBm.
	MinSignal = -127
	MaxSignal = -1
)

// Discovery errors.
var (
	ErrInvalidTXTRecord    = errors.New("invalid TXT record format")
	ErrMissingRequired     = errors.New("missing required field")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrInvalidSignal       = errors.New("signal value out of range")
	ErrNotAdvertising      = errors.New("not advertising")
	ErrAlreadyStarted      = errors.New("already started")
	ErrNotStarted          = errors.New("not started")
)

// EmitterState represents the advertising state of an Emitter.
type EmitterState uint8

const (
	// StateIdle - not advertising.
	StateIdle EmitterState = iota

	// StateAdvertising - the beacon identity is being published.
	StateAdvertising
)

// String returns the state name.
func (s EmitterState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateAdvertising:
		return "ADVERTISING"
	default:
		return "UNKNOWN"
	}
}

// BeaconInfo contains information for advertising a beacon.
type BeaconInfo struct {
	// Identity is the advertised beacon identity.
	Identity fence.Identity

	// MeasuredPower is the calibrated RSSI at one meter in dBm.
	// Zero means the default of -59.
	MeasuredPower int

	// Signal is an observed RSSI to publish, 0 to omit.
	// Only simulated emitters set this.
	Signal int

	// Port is the nominal service port. Zero means DefaultPort.
	Port uint16
}

// BeaconService represents a beacon found via mDNS.
type BeaconService struct {
	// InstanceName is the mDNS instance name (e.g., "BeaconRegion01-501-201").
	InstanceName string

	// Host is the hostname.
	Host string

	// Port is the service port.
	Port uint16

	// Addresses contains resolved IP addresses.
	Addresses []string

	// Identity is the decoded beacon identity.
	Identity fence.Identity

	// MeasuredPower is the RSSI at one meter (from TXT "MP").
	MeasuredPower int

	// Signal is the published RSSI (from TXT "RS"), 0 if absent.
	Signal int
}
