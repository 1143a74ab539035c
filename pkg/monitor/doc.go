// Package monitor drives region monitoring for a single beacon identity.
//
// A Monitor connects a Scanner (mDNS browser or simulator) to a fence.Fence.
// It is the only writer of the fence: readings delivered by the scanner are
// filtered through fence.Fence.RecordIfMatching, and enter/exit events are
// de-duplicated before being forwarded to the application observer.
//
// Usage:
//
//	f := fence.New(id)
//	m := monitor.New(f, scanner, monitor.Config{
//	    Observer: monitor.NewNotifier(os.Stdout, slog.Default()),
//	})
//	if err := m.StartMonitoring(ctx); err != nil {
//	    return err
//	}
//	defer m.StopMonitoring()
//
// Optional ExitTimeout makes the monitor signal exit by itself when no
// matching reading arrived for that long while inside the region.
package monitor
