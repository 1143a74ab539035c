package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/sigobj/beaconfence/pkg/discovery"
	"github.com/sigobj/beaconfence/pkg/monitor"
)

// runSignalWalk cycles the published signal through monitor.DefaultWalk.
// Zero steps remove the signal from the record.
func runSignalWalk(ctx context.Context, emitter *discovery.Emitter, logger *slog.Logger) {
	ticker := time.NewTicker(monitor.DefaultStepInterval)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		rssi := monitor.DefaultWalk[i]
		i = (i + 1) % len(monitor.DefaultWalk)

		if err := emitter.SetSignal(rssi); err != nil {
			logger.Warn("simulated signal", "rssi", rssi, "error", err)
			continue
		}
		logger.Debug("simulated signal", "rssi", rssi)
	}
}
