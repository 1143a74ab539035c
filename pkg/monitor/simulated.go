package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sigobj/beaconfence/pkg/fence"
	"github.com/sigobj/beaconfence/pkg/ranging"
)

// DefaultWalk approaches the beacon from out of range, passes it and leaves.
// Zero entries mean the beacon is not visible.
var DefaultWalk = []int{0, -88, -80, -72, -65, -59, -50, -42, -50, -62, -75, -90, 0, 0}

// DefaultStepInterval is the time between simulated scan passes.
const DefaultStepInterval = time.Second

// Simulator errors.
var (
	ErrScannerRunning = errors.New("scanner already running")
	ErrNoSteps        = errors.New("no simulation steps")
)

// SimulatedConfig configures a SimulatedScanner.
type SimulatedConfig struct {
	// Beacon is the simulated transmitter. Nil uses the
	// monitored identity passed to Start.
	Beacon *fence.Identity

	// MeasuredPower is the RSSI at one meter. Zero uses the ranging default.
	MeasuredPower int

	// Steps lists one RSSI per scan pass. Zero means out of range.
	Steps []int

	// Interval is the time between passes.
	Interval time.Duration

	// Loop restarts from the first step after the last one.
	Loop bool

	// Smoothing is the RSSI moving-average factor; zero uses the default.
	Smoothing float64
}

// DefaultSimulatedConfig returns a config walking DefaultWalk once per second in a loop.
func DefaultSimulatedConfig() SimulatedConfig {
	return SimulatedConfig{
		MeasuredPower: ranging.DefaultMeasuredPower,
		Steps:         DefaultWalk,
		Interval:      DefaultStepInterval,
		Loop:          true,
		Smoothing:     1,
	}
}

// SimulatedScanner produces a deterministic sequence of readings without radio access.
type SimulatedScanner struct {
	config SimulatedConfig

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSimulatedScanner creates a simulated scanner.
func NewSimulatedScanner(config SimulatedConfig) *SimulatedScanner {
	if config.Interval <= 0 {
		config.Interval = DefaultStepInterval
	}
	return &SimulatedScanner{config: config}
}

// Start begins replaying the configured steps to observer.
func (s *SimulatedScanner) Start(ctx context.Context, id fence.Identity, observer fence.Observer) error {
	if len(s.config.Steps) == 0 {
		return ErrNoSteps
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrScannerRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	beacon := id
	if s.config.Beacon != nil {
		beacon = *s.config.Beacon
	}

	w := &walker{
		monitored: id,
		beacon:    beacon,
		observer:  observer,
		estimator: ranging.NewEstimator(s.config.Smoothing),
		power:     s.config.MeasuredPower,
	}
	go s.run(ctx, w, s.done)
	return nil
}

// Stop ends the replay and waits for the delivery goroutine.
func (s *SimulatedScanner) Stop() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

// Done returns a channel closed when the current replay finishes.
// It returns nil when the scanner is not running.
func (s *SimulatedScanner) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *SimulatedScanner) run(ctx context.Context, w *walker, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	i := 0
	for {
		w.step(s.config.Steps[i])

		i++
		if i == len(s.config.Steps) {
			if !s.config.Loop {
				return
			}
			i = 0
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// walker converts RSSI steps into observer callbacks.
type walker struct {
	monitored fence.Identity
	beacon    fence.Identity
	observer  fence.Observer
	estimator *ranging.Estimator
	power     int
	visible   bool
}

func (w *walker) step(rssi int) {
	key := w.beacon.Key()
	isMonitored := w.beacon.Equal(w.monitored)

	if rssi == 0 {
		if w.visible {
			w.visible = false
			w.estimator.Forget(key)
			if isMonitored {
				w.observer.OnRegionExited(w.monitored)
			}
		}
		w.observer.OnReadingsUpdated(w.monitored, nil)
		return
	}

	if !w.visible {
		w.visible = true
		if isMonitored {
			w.observer.OnRegionEntered(w.monitored)
		}
	}

	proximity, distance := w.estimator.Observe(key, rssi, w.power)
	r := fence.ReadingFor(w.beacon, proximity, distance)
	r.RSSI = rssi
	r.SeenAt = time.Now()
	w.observer.OnReadingsUpdated(w.monitored, []fence.Reading{r})
}

// Compile-time interface satisfaction check.
var _ Scanner = (*SimulatedScanner)(nil)
