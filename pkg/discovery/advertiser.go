package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/sigobj/beaconfence/pkg/log"
)

// Advertiser publishes a single beacon identity.
type Advertiser interface {
	// Advertise starts publishing the beacon. Calling it while already
	// advertising replaces the published record.
	Advertise(ctx context.Context, info *BeaconInfo) error

	// Update replaces the TXT record of the running advertisement.
	// Returns ErrNotAdvertising when nothing is published.
	Update(info *BeaconInfo) error

	// Stop withdraws the advertisement. Stopping an idle advertiser is a no-op.
	Stop() error

	// IsAdvertising reports whether a record is currently published.
	IsAdvertising() bool
}

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// TTL is the DNS record TTL.
	// Default: 120 seconds.
	TTL time.Duration
}

// DefaultAdvertiserConfig returns the default advertiser configuration.
func DefaultAdvertiserConfig() AdvertiserConfig {
	return AdvertiserConfig{
		Interface: "",
		TTL:       DefaultTTL,
	}
}

// Emitter manages the advertising state of one beacon.
type Emitter struct {
	mu sync.Mutex

	state      EmitterState
	advertiser Advertiser
	info       BeaconInfo
	logger     log.Logger

	// Callback for state changes
	onStateChange func(old, new EmitterState)
}

// NewEmitter creates an idle emitter for the given beacon.
func NewEmitter(advertiser Advertiser, info BeaconInfo) *Emitter {
	return &Emitter{
		state:      StateIdle,
		advertiser: advertiser,
		info:       info,
		logger:     log.NoopLogger{},
	}
}

// SetLogger sets the event logger. Nil disables event capture.
func (e *Emitter) SetLogger(l log.Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l == nil {
		l = log.NoopLogger{}
	}
	e.logger = l
}

// OnStateChange sets a callback for state changes.
// The callback runs after the emitter lock is released.
func (e *Emitter) OnStateChange(fn func(old, new EmitterState)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onStateChange = fn
}

// State returns the current advertising state.
func (e *Emitter) State() EmitterState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Info returns the advertised beacon information.
func (e *Emitter) Info() BeaconInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.info
}

// IsAdvertising reports whether the underlying advertiser is publishing.
func (e *Emitter) IsAdvertising() bool {
	return e.advertiser.IsAdvertising()
}

// Start begins advertising. Starting while advertising is a no-op.
func (e *Emitter) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.state == StateAdvertising {
		e.mu.Unlock()
		return nil
	}

	info := e.info
	if err := e.advertiser.Advertise(ctx, &info); err != nil {
		e.logError(err, "advertise")
		e.mu.Unlock()
		return err
	}

	notify := e.transitionLocked(StateAdvertising)
	e.mu.Unlock()

	notify()
	return nil
}

// Stop withdraws the advertisement. Stopping while idle is a no-op.
func (e *Emitter) Stop() error {
	e.mu.Lock()
	if e.state == StateIdle {
		e.mu.Unlock()
		return nil
	}

	if err := e.advertiser.Stop(); err != nil {
		e.logError(err, "stop")
		e.mu.Unlock()
		return err
	}

	notify := e.transitionLocked(StateIdle)
	e.mu.Unlock()

	notify()
	return nil
}

// SetSignal changes the published RSSI value. Zero removes it.
// While advertising the record is updated in place.
func (e *Emitter) SetSignal(rssi int) error {
	if rssi != 0 {
		if err := ValidateSignal(rssi); err != nil {
			return err
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.info.Signal = rssi
	if e.state != StateAdvertising {
		return nil
	}

	info := e.info
	if err := e.advertiser.Update(&info); err != nil {
		e.logError(err, "update")
		return err
	}
	return nil
}

// transitionLocked changes state, logs the change, and returns the callback
// invocation to run once the lock is released.
func (e *Emitter) transitionLocked(next EmitterState) func() {
	old := e.state
	e.state = next

	e.logger.Log(log.Event{
		Timestamp: time.Now(),
		Source:    log.SourceEmitter,
		Category:  log.CategoryAdvertising,
		Region:    e.info.Identity.Key(),
		Name:      e.info.Identity.Name(),
		Advertising: &log.AdvertisingEvent{
			OldState: old.String(),
			NewState: next.String(),
			RSSI:     e.info.Signal,
		},
	})

	fn := e.onStateChange
	return func() {
		if fn != nil && old != next {
			fn(old, next)
		}
	}
}

func (e *Emitter) logError(err error, op string) {
	e.logger.Log(log.Event{
		Timestamp: time.Now(),
		Source:    log.SourceEmitter,
		Category:  log.CategoryError,
		Region:    e.info.Identity.Key(),
		Name:      e.info.Identity.Name(),
		Error:     &log.ErrorEventData{Message: err.Error(), Context: op},
	})
}
