package log

import "time"

// Event is one captured fence or emitter event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// Source names the component that produced the event.
	Source Source `cbor:"2,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// Region is the beacon key "<uuid>:<major>:<minor>".
	Region string `cbor:"4,keyasint,omitempty"`

	// Name is the display name of the fence or beacon.
	Name string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Reading     *ReadingEvent     `cbor:"10,keyasint,omitempty"`
	Transition  *TransitionEvent  `cbor:"11,keyasint,omitempty"`
	Advertising *AdvertisingEvent `cbor:"12,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"`
}

// Source identifies the producer of an event.
type Source uint8

const (
	// SourceMonitor is the fence monitor.
	SourceMonitor Source = 0
	// SourceEmitter is the beacon emitter.
	SourceEmitter Source = 1
	// SourceScanner is the scanning transport.
	SourceScanner Source = 2
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceMonitor:
		return "MONITOR"
	case SourceEmitter:
		return "EMITTER"
	case SourceScanner:
		return "SCANNER"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryReading is a beacon reading.
	CategoryReading Category = 0
	// CategoryRegion is a region enter or exit.
	CategoryRegion Category = 1
	// CategoryAdvertising is an advertising state change.
	CategoryAdvertising Category = 2
	// CategoryError is an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryReading:
		return "READING"
	case CategoryRegion:
		return "REGION"
	case CategoryAdvertising:
		return "ADVERTISING"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ReadingEvent captures one observed reading.
type ReadingEvent struct {
	// Proximity is the fence.Proximity value.
	Proximity uint8 `cbor:"1,keyasint"`

	// Distance is the estimated distance in meters.
	Distance float64 `cbor:"2,keyasint"`

	// RSSI is the received signal strength, 0 if unmeasured.
	RSSI int `cbor:"3,keyasint,omitempty"`

	// Matched is true when the reading was recorded by the fence.
	Matched bool `cbor:"4,keyasint"`

	// Location is the fence status line after processing the reading.
	Location string `cbor:"5,keyasint,omitempty"`
}

// Transition is a region boundary crossing.
type Transition uint8

const (
	// TransitionEnter means the beacon became visible.
	TransitionEnter Transition = 0
	// TransitionExit means the beacon was lost.
	TransitionExit Transition = 1
)

// String returns the transition name.
func (t Transition) String() string {
	switch t {
	case TransitionEnter:
		return "ENTER"
	case TransitionExit:
		return "EXIT"
	default:
		return "UNKNOWN"
	}
}

// TransitionEvent captures a region enter or exit.
type TransitionEvent struct {
	// Transition is the direction of the crossing.
	Transition Transition `cbor:"1,keyasint"`

	// Reason explains what triggered it (e.g. "scanner", "timeout").
	Reason string `cbor:"2,keyasint,omitempty"`
}

// AdvertisingEvent captures an emitter or monitor state change.
type AdvertisingEvent struct {
	OldState string `cbor:"1,keyasint"`
	NewState string `cbor:"2,keyasint"`

	// RSSI is the advertised signal value, if any.
	RSSI int `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures an error.
type ErrorEventData struct {
	// Message is the error text.
	Message string `cbor:"1,keyasint"`

	// Context describes the operation that failed.
	Context string `cbor:"2,keyasint,omitempty"`
}
