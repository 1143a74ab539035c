package discovery

import (
	"context"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
	"github.com/sigobj/beaconfence/pkg/fence"
	"github.com/sigobj/beaconfence/pkg/ranging"
)

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// Smoothing is the RSSI moving-average factor in (0, 1].
	// Zero selects ranging.DefaultAlpha.
	Smoothing float64
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Interface: "",
		Smoothing: ranging.DefaultAlpha,
	}
}

// MDNSBrowser scans for beacons of one region using zeroconf.
// It satisfies monitor.Scanner.
type MDNSBrowser struct {
	config BrowserConfig

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMDNSBrowser creates a new mDNS browser.
func NewMDNSBrowser(config BrowserConfig) (*MDNSBrowser, error) {
	return &MDNSBrowser{config: config}, nil
}

// Start browses for beacons sharing id's region UUID and reports them to
// observer from a single goroutine until ctx is cancelled or Stop is called.
func (b *MDNSBrowser) Start(ctx context.Context, id fence.Identity, observer fence.Observer) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	b.cancel = cancel
	b.done = done

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)
	tracker := newBeaconTracker(id, observer, ranging.NewEstimator(b.config.Smoothing))
	opts := b.browserOptions()

	go func() {
		defer close(done)

		gone := removed
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				if svc := entryToBeacon(entry); svc != nil {
					tracker.add(svc)
				}

			case entry, ok := <-gone:
				if !ok {
					gone = nil
					continue
				}
				tracker.remove(entry.Instance, entryAddresses(entry))

			case <-ctx.Done():
				return
			}
		}
	}()

	// Start browsing in background
	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, opts...)
	}()

	return nil
}

// Stop ends browsing and waits for the delivery goroutine to exit.
// Stopping a browser that is not running is a no-op.
func (b *MDNSBrowser) Stop() error {
	b.mu.Lock()
	cancel, done := b.cancel, b.done
	b.cancel, b.done = nil, nil
	b.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

// browserOptions returns zeroconf client options based on config.
func (b *MDNSBrowser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	// Select specific interface if configured
	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}

	return opts
}

// entryToBeacon converts a zeroconf entry to BeaconService.
// Entries with an unusable TXT record are dropped.
func entryToBeacon(entry *zeroconf.ServiceEntry) *BeaconService {
	info, err := DecodeBeaconTXT(StringsToTXTRecords(entry.Text))
	if err != nil {
		return nil
	}

	return &BeaconService{
		InstanceName:  entry.Instance,
		Host:          entry.HostName,
		Port:          uint16(entry.Port),
		Addresses:     entryAddresses(entry),
		Identity:      info.Identity,
		MeasuredPower: info.MeasuredPower,
		Signal:        info.Signal,
	}
}

// entryAddresses collects the IPv4 and IPv6 addresses of an entry.
func entryAddresses(entry *zeroconf.ServiceEntry) []string {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return addrs
}

// beaconTracker turns add/remove notifications into observer callbacks.
// It is owned by a single goroutine.
type beaconTracker struct {
	id        fence.Identity
	observer  fence.Observer
	estimator *ranging.Estimator
	now       func() time.Time

	services map[string]*BeaconService
	readings map[string]fence.Reading
	inside   bool
}

func newBeaconTracker(id fence.Identity, observer fence.Observer, estimator *ranging.Estimator) *beaconTracker {
	return &beaconTracker{
		id:        id,
		observer:  observer,
		estimator: estimator,
		now:       time.Now,
		services:  make(map[string]*BeaconService),
		readings:  make(map[string]fence.Reading),
	}
}

// add records a new or updated beacon instance.
func (t *beaconTracker) add(svc *BeaconService) {
	if svc.Identity.RegionID() != t.id.RegionID() {
		return
	}

	if existing, found := t.services[svc.InstanceName]; found {
		svc.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
	}
	t.services[svc.InstanceName] = svc

	proximity, distance := t.estimator.Observe(svc.InstanceName, svc.Signal, svc.MeasuredPower)
	t.readings[svc.InstanceName] = fence.Reading{
		RegionID:  svc.Identity.RegionID(),
		Major:     svc.Identity.Major(),
		Minor:     svc.Identity.Minor(),
		Proximity: proximity,
		Distance:  distance,
		RSSI:      svc.Signal,
		SeenAt:    t.now(),
	}

	if !t.inside && t.monitoredVisible() {
		t.inside = true
		t.observer.OnRegionEntered(t.id)
	}
	t.observer.OnReadingsUpdated(t.id, t.snapshot())
}

// remove drops addresses of an instance. When none remain, or the removal
// carries no addresses, the instance is gone.
func (t *beaconTracker) remove(instance string, addrs []string) {
	existing, found := t.services[instance]
	if !found {
		return
	}

	if len(addrs) > 0 {
		existing.Addresses = removeAddresses(existing.Addresses, addrs)
		if len(existing.Addresses) > 0 {
			return
		}
	}

	delete(t.services, instance)
	delete(t.readings, instance)
	t.estimator.Forget(instance)

	if t.inside && !t.monitoredVisible() {
		t.inside = false
		t.observer.OnRegionExited(t.id)
	}
	t.observer.OnReadingsUpdated(t.id, t.snapshot())
}

// monitoredVisible reports whether any tracked instance is the monitored beacon.
func (t *beaconTracker) monitoredVisible() bool {
	for _, r := range t.readings {
		if t.id.Matches(r) {
			return true
		}
	}
	return false
}

// snapshot returns current readings ordered by instance name.
func (t *beaconTracker) snapshot() []fence.Reading {
	names := make([]string, 0, len(t.readings))
	for name := range t.readings {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]fence.Reading, 0, len(names))
	for _, name := range names {
		out = append(out, t.readings[name])
	}
	return out
}

// mergeAddresses adds new addresses to existing list, avoiding duplicates.
func mergeAddresses(existing, new []string) []string {
	seen := make(map[string]bool, len(existing))
	merged := append([]string(nil), existing...)
	for _, addr := range existing {
		seen[addr] = true
	}

	for _, addr := range new {
		if !seen[addr] {
			merged = append(merged, addr)
			seen[addr] = true
		}
	}
	return merged
}

// removeAddresses filters gone out of addresses.
func removeAddresses(addresses, gone []string) []string {
	toRemove := make(map[string]bool, len(gone))
	for _, addr := range gone {
		toRemove[addr] = true
	}

	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}
