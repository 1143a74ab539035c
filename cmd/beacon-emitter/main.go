// Command beacon-emitter advertises a beacon identity over mDNS.
//
// The advertised record carries the region UUID, major, minor, display name
// and measured power. In simulation mode the published signal strength walks
// through a fixed approach/leave pattern so a beacon-fence instance on the
// same network sees changing distances.
//
// Usage:
//
//	beacon-emitter [flags]
//
// Flags:
//
//	-config string          Configuration file path (YAML)
//	-name string            Beacon display name
//	-uuid string            Region UUID
//	-major int              Major value (0-65535)
//	-minor int              Minor value (0-65535)
//	-measured-power int     RSSI at one meter in dBm
//	-interface string       Network interface to advertise on
//	-simulate               Publish a simulated signal strength
//	-interactive            Interactive console
//	-http string            Serve /metrics on this address
//	-log-level string       Log level: debug, info, warn, error
//	-event-log string       File path for event logging (CBOR format)
//
// Examples:
//
//	# Advertise the default beacon
//	beacon-emitter
//
//	# Advertise a custom minor with simulated signal and an event log
//	beacon-emitter -minor 202 -simulate -event-log emitter.cbor
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sigobj/beaconfence/cmd/beacon-emitter/interactive"
	"github.com/sigobj/beaconfence/pkg/api"
	"github.com/sigobj/beaconfence/pkg/config"
	"github.com/sigobj/beaconfence/pkg/discovery"
	"github.com/sigobj/beaconfence/pkg/log"
	"github.com/sigobj/beaconfence/pkg/metrics"
)

var (
	configFile    = flag.String("config", "", "Configuration file path (YAML)")
	name          = flag.String("name", "", "Beacon display name")
	regionUUID    = flag.String("uuid", "", "Region UUID")
	major         = flag.Int("major", 0, "Major value (0-65535)")
	minor         = flag.Int("minor", 0, "Minor value (0-65535)")
	measuredPower = flag.Int("measured-power", 0, "RSSI at one meter in dBm")
	iface         = flag.String("interface", "", "Network interface to advertise on")
	simulate      = flag.Bool("simulate", false, "Publish a simulated signal strength")
	interactiveF  = flag.Bool("interactive", false, "Interactive console")
	httpAddr      = flag.String("http", "", "Serve /metrics on this address")
	logLevel      = flag.String("log-level", "", "Log level: debug, info, warn, error")
	eventLog      = flag.String("event-log", "", "File path for event logging (CBOR format)")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("beacon-emitter failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flags that were set explicitly.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(*configFile)
	if err != nil {
		return nil, err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			cfg.Fence.Name = *name
		case "uuid":
			cfg.Fence.UUID = *regionUUID
		case "major":
			cfg.Fence.Major = *major
		case "minor":
			cfg.Fence.Minor = *minor
		case "measured-power":
			cfg.Advertising.MeasuredPower = *measuredPower
		case "interface":
			cfg.Advertising.Interface = *iface
		case "http":
			cfg.HTTP.Listen = *httpAddr
		case "log-level":
			cfg.Logging.Level = *logLevel
		case "event-log":
			cfg.Logging.EventLog = *eventLog
		}
	})

	return cfg, cfg.Validate()
}

func run(cfg *config.Config) error {
	id, err := cfg.Identity()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	advertiser, err := discovery.NewMDNSAdvertiser(discovery.AdvertiserConfig{
		Interface: cfg.Advertising.Interface,
		TTL:       cfg.Advertising.TTL,
	})
	if err != nil {
		return err
	}

	emitter := discovery.NewEmitter(advertiser, discovery.BeaconInfo{
		Identity:      id,
		MeasuredPower: cfg.Advertising.MeasuredPower,
		Port:          uint16(cfg.Advertising.Port),
	})

	// In interactive mode all output goes through readline so the prompt stays intact.
	var console *interactive.Console
	var logOut io.Writer = os.Stderr
	if *interactiveF {
		console, err = interactive.New(emitter)
		if err != nil {
			return err
		}
		logOut = console.Stderr()
	}

	level, _ := config.ParseLevel(cfg.Logging.Level)
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Event logging
	var eventLogger log.Logger = log.NewSlogAdapter(logger)
	if cfg.Logging.EventLog != "" {
		fileLogger, err := log.NewFileLogger(cfg.Logging.EventLog)
		if err != nil {
			return fmt.Errorf("event log: %w", err)
		}
		defer fileLogger.Close()
		eventLogger = log.NewMultiLogger(eventLogger, fileLogger)
		logger.Info("event logging enabled", "path", cfg.Logging.EventLog)
	}
	emitter.SetLogger(eventLogger)

	// Metrics
	reg := prometheus.NewRegistry()
	met := metrics.New(reg)
	emitter.OnStateChange(func(_, next discovery.EmitterState) {
		met.SetAdvertising(next == discovery.StateAdvertising)
	})

	logger.Info("beacon configured",
		"instance", discovery.InstanceName(id),
		"region", id.RegionID().String(),
		"major", id.Major(),
		"minor", id.Minor(),
		"name", id.Name(),
	)

	if cfg.HTTP.Listen != "" {
		srv := &http.Server{
			Addr:              cfg.HTTP.Listen,
			Handler:           api.NewMetricsRouter(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server failed", "error", err)
			}
		}()
		defer srv.Close()
		logger.Info("metrics listening", "addr", cfg.HTTP.Listen)
	}

	if console == nil {
		if err := emitter.Start(ctx); err != nil {
			return err
		}
	}

	if *simulate {
		go runSignalWalk(ctx, emitter, logger)
	}
	go reportStatus(ctx, emitter, cfg.Monitor.RefreshInterval, logger)

	if console != nil {
		console.Run(ctx, cancel)
	} else {
		waitForSignal(ctx, logger)
	}

	if err := emitter.Stop(); err != nil {
		logger.Warn("stop advertising", "error", err)
	}
	logger.Info("goodbye")
	return nil
}

// reportStatus logs the advertising state every interval.
func reportStatus(ctx context.Context, emitter *discovery.Emitter, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logger.Info("status",
				"advertising", emitter.IsAdvertising(),
				"state", emitter.State().String(),
			)
		}
	}
}

func waitForSignal(ctx context.Context, logger *slog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("received signal", "signal", sig.String())
	case <-ctx.Done():
	}
}
