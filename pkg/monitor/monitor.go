package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sigobj/beaconfence/pkg/fence"
	"github.com/sigobj/beaconfence/pkg/log"
	"github.com/sigobj/beaconfence/pkg/metrics"
)

// Transition reasons recorded in the event log.
const (
	ReasonScanner = "scanner"
	ReasonTimeout = "timeout"
	ReasonReading = "reading"
	ReasonStopped = "stopped"
)

// ErrNoScanner is returned by StartMonitoring when the monitor has no scanner.
var ErrNoScanner = errors.New("monitor: no scanner configured")

// Scanner delivers readings and region events for one identity.
// Implementations call the observer from a single goroutine.
type Scanner interface {
	// Start begins scanning until ctx is cancelled or Stop is called.
	Start(ctx context.Context, id fence.Identity, observer fence.Observer) error

	// Stop ends scanning and waits for in-flight deliveries.
	Stop() error
}

// State is the monitoring lifecycle state.
type State uint8

const (
	// StateStopped - not monitoring.
	StateStopped State = iota

	// StateMonitoring - the scanner is running.
	StateMonitoring
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "STOPPED"
	case StateMonitoring:
		return "MONITORING"
	default:
		return "UNKNOWN"
	}
}

// Config holds monitor configuration. All fields are optional.
type Config struct {
	// Observer receives de-duplicated events.
	Observer fence.Observer

	// ExitTimeout signals exit when no matching reading arrives for this
	// long while inside. Zero disables the timeout.
	ExitTimeout time.Duration

	// EventLogger captures protocol-level fence events.
	EventLogger log.Logger

	// Metrics receives counters and gauges.
	Metrics *metrics.Metrics

	// Logger is used for operational messages.
	Logger *slog.Logger
}

// Monitor owns a fence and keeps it up to date from a Scanner.
// Observer callbacks run on the scanner goroutine, or on a timer goroutine
// for timeout exits.
type Monitor struct {
	fence   *fence.Fence
	scanner Scanner
	config  Config

	mu        sync.Mutex
	state     State
	inside    bool
	timedOut  bool
	exitTimer *time.Timer
	timerGen  uint64

	onStateChange func(old, new State)
}

// New creates a stopped monitor for f.
func New(f *fence.Fence, scanner Scanner, config Config) *Monitor {
	if config.EventLogger == nil {
		config.EventLogger = log.NoopLogger{}
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Monitor{
		fence:   f,
		scanner: scanner,
		config:  config,
	}
}

// Fence returns the monitored fence.
func (m *Monitor) Fence() *fence.Fence {
	return m.fence
}

// OnStateChange sets a callback for lifecycle changes.
func (m *Monitor) OnStateChange(fn func(old, new State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStateChange = fn
}

// State returns the lifecycle state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Monitoring reports whether the scanner is running.
func (m *Monitor) Monitoring() bool {
	return m.State() == StateMonitoring
}

// Inside reports whether the beacon is currently considered in range.
func (m *Monitor) Inside() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inside
}

// Describe returns the fence's location status line.
func (m *Monitor) Describe() string {
	return m.fence.Describe()
}

// StartMonitoring starts the scanner. Starting while monitoring is a no-op.
func (m *Monitor) StartMonitoring(ctx context.Context) error {
	if m.scanner == nil {
		return ErrNoScanner
	}

	m.mu.Lock()
	if m.state == StateMonitoring {
		m.mu.Unlock()
		return nil
	}
	// Set before Start so that deliveries racing with the return are accepted.
	m.state = StateMonitoring
	fn := m.onStateChange
	m.mu.Unlock()

	id := m.fence.Identity()
	if err := m.scanner.Start(ctx, id, m); err != nil {
		m.mu.Lock()
		m.state = StateStopped
		m.mu.Unlock()
		m.logError(err, "start")
		return err
	}

	m.config.Logger.Info("monitoring started", "region", id.Key(), "name", id.Name())
	if fn != nil {
		fn(StateStopped, StateMonitoring)
	}
	return nil
}

// StopMonitoring stops the scanner. If the beacon was inside, an exit is
// signalled. Stopping while stopped is a no-op.
func (m *Monitor) StopMonitoring() error {
	m.mu.Lock()
	if m.state == StateStopped {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	err := m.scanner.Stop()
	if err != nil {
		m.logError(err, "stop")
	}

	m.mu.Lock()
	m.state = StateStopped
	m.stopTimerLocked()
	wasInside := m.inside
	m.inside = false
	m.timedOut = false
	fn := m.onStateChange
	m.mu.Unlock()

	if wasInside {
		m.exited(ReasonStopped)
	}

	m.config.Logger.Info("monitoring stopped", "region", m.fence.Identity().Key())
	if fn != nil {
		fn(StateMonitoring, StateStopped)
	}
	return err
}

// OnReadingsUpdated records the matching reading and forwards the batch.
func (m *Monitor) OnReadingsUpdated(id fence.Identity, readings []fence.Reading) {
	if !m.accepts(id) {
		return
	}

	monitored := m.fence.Identity()
	matchedAny := false
	for _, r := range readings {
		matched := m.fence.RecordIfMatching(r)
		m.config.Metrics.ObserveReading(matched)
		if matched {
			matchedAny = true
			m.config.Metrics.SetDistance(r.Distance)
		}
		m.config.EventLogger.Log(log.Event{
			Timestamp: time.Now(),
			Source:    log.SourceMonitor,
			Category:  log.CategoryReading,
			Region:    monitored.Key(),
			Name:      monitored.Name(),
			Reading: &log.ReadingEvent{
				Proximity: uint8(r.Proximity),
				Distance:  r.Distance,
				RSSI:      r.RSSI,
				Matched:   matched,
				Location:  locationIf(matched, m.fence),
			},
		})
	}

	if matchedAny {
		m.mu.Lock()
		reenter := !m.inside && m.timedOut
		if m.inside || reenter {
			m.armTimerLocked()
		}
		if reenter {
			m.inside = true
			m.timedOut = false
		}
		m.mu.Unlock()

		if reenter {
			m.entered(ReasonReading)
		}
	}

	if m.config.Observer != nil {
		m.config.Observer.OnReadingsUpdated(id, readings)
	}
}

// OnRegionEntered marks the beacon inside. Repeated enters are dropped.
func (m *Monitor) OnRegionEntered(id fence.Identity) {
	if !m.accepts(id) {
		return
	}

	m.mu.Lock()
	if m.inside {
		m.mu.Unlock()
		return
	}
	m.inside = true
	m.timedOut = false
	m.armTimerLocked()
	m.mu.Unlock()

	m.entered(ReasonScanner)
}

// OnRegionExited marks the beacon outside. Repeated exits are dropped.
func (m *Monitor) OnRegionExited(id fence.Identity) {
	if !m.accepts(id) {
		return
	}

	m.mu.Lock()
	m.timedOut = false
	if !m.inside {
		m.mu.Unlock()
		return
	}
	m.inside = false
	m.stopTimerLocked()
	m.mu.Unlock()

	m.exited(ReasonScanner)
}

// accepts reports whether events for id should be processed.
func (m *Monitor) accepts(id fence.Identity) bool {
	if !id.Equal(m.fence.Identity()) {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateMonitoring
}

func (m *Monitor) entered(reason string) {
	id := m.fence.Identity()
	m.config.Metrics.RecordEnter()
	m.logTransition(log.TransitionEnter, reason)
	m.config.Logger.Info("region entered", "region", id.Key(), "name", id.Name(), "reason", reason)
	if m.config.Observer != nil {
		m.config.Observer.OnRegionEntered(id)
	}
}

func (m *Monitor) exited(reason string) {
	id := m.fence.Identity()
	m.config.Metrics.RecordExit()
	m.logTransition(log.TransitionExit, reason)
	m.config.Logger.Info("region exited", "region", id.Key(), "name", id.Name(), "reason", reason)
	if m.config.Observer != nil {
		m.config.Observer.OnRegionExited(id)
	}
}

// armTimerLocked (re)starts the exit timer. Caller must hold mu.
func (m *Monitor) armTimerLocked() {
	if m.config.ExitTimeout <= 0 {
		return
	}
	m.stopTimerLocked()
	m.timerGen++
	gen := m.timerGen
	m.exitTimer = time.AfterFunc(m.config.ExitTimeout, func() {
		m.handleTimeout(gen)
	})
}

// stopTimerLocked cancels a pending exit timer. Caller must hold mu.
func (m *Monitor) stopTimerLocked() {
	if m.exitTimer != nil {
		m.exitTimer.Stop()
		m.exitTimer = nil
	}
	m.timerGen++
}

func (m *Monitor) handleTimeout(gen uint64) {
	m.mu.Lock()
	if gen != m.timerGen || !m.inside || m.state != StateMonitoring {
		m.mu.Unlock()
		return
	}
	m.inside = false
	m.timedOut = true
	m.exitTimer = nil
	m.mu.Unlock()

	m.exited(ReasonTimeout)
}

func (m *Monitor) logTransition(t log.Transition, reason string) {
	id := m.fence.Identity()
	m.config.EventLogger.Log(log.Event{
		Timestamp:  time.Now(),
		Source:     log.SourceMonitor,
		Category:   log.CategoryRegion,
		Region:     id.Key(),
		Name:       id.Name(),
		Transition: &log.TransitionEvent{Transition: t, Reason: reason},
	})
}

func (m *Monitor) logError(err error, op string) {
	id := m.fence.Identity()
	m.config.Logger.Error("scanner error", "op", op, "error", err)
	m.config.EventLogger.Log(log.Event{
		Timestamp: time.Now(),
		Source:    log.SourceMonitor,
		Category:  log.CategoryError,
		Region:    id.Key(),
		Name:      id.Name(),
		Error:     &log.ErrorEventData{Message: err.Error(), Context: op},
	})
}

func locationIf(matched bool, f *fence.Fence) string {
	if !matched {
		return ""
	}
	return f.Describe()
}

// Compile-time interface satisfaction check.
var _ fence.Observer = (*Monitor)(nil)
