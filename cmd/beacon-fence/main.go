// Command beacon-fence monitors a beacon region and reports the location
// of the matching beacon.
//
// It browses mDNS for beacons advertised by beacon-emitter, keeps the last
// matching reading in a fence, prints the location line whenever it changes,
// and alerts on region enter and exit.
//
// Usage:
//
//	beacon-fence [flags]
//
// Flags:
//
//	-config string          Configuration file path (YAML)
//	-name string            Fence display name
//	-uuid string            Region UUID
//	-major int              Major value (0-65535)
//	-minor int              Minor value (0-65535)
//	-interface string       Network interface to browse on
//	-simulate               Use a simulated scanner instead of mDNS
//	-interactive            Interactive console
//	-http string            Serve /status, /healthz and /metrics on this address
//	-state string           Fence state file (JSON)
//	-lenient-state          Recover readable fields from a corrupt state file
//	-exit-timeout duration  Signal exit after this long without a reading
//	-log-level string       Log level: debug, info, warn, error
//	-event-log string       File path for event logging (CBOR format)
//
// Examples:
//
//	# Monitor the default region
//	beacon-fence
//
//	# Demo without a network, with a status endpoint
//	beacon-fence -simulate -http :8080
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
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sigobj/beaconfence/cmd/beacon-fence/interactive"
	"github.com/sigobj/beaconfence/pkg/api"
	"github.com/sigobj/beaconfence/pkg/config"
	"github.com/sigobj/beaconfence/pkg/discovery"
	"github.com/sigobj/beaconfence/pkg/fence"
	"github.com/sigobj/beaconfence/pkg/log"
	"github.com/sigobj/beaconfence/pkg/metrics"
	"github.com/sigobj/beaconfence/pkg/monitor"
	"github.com/sigobj/beaconfence/pkg/persistence"
)

var (
	configFile   = flag.String("config", "", "Configuration file path (YAML)")
	name         = flag.String("name", "", "Fence display name")
	regionUUID   = flag.String("uuid", "", "Region UUID")
	major        = flag.Int("major", 0, "Major value (0-65535)")
	minor        = flag.Int("minor", 0, "Minor value (0-65535)")
	iface        = flag.String("interface", "", "Network interface to browse on")
	simulate     = flag.Bool("simulate", false, "Use a simulated scanner instead of mDNS")
	interactiveF = flag.Bool("interactive", false, "Interactive console")
	httpAddr     = flag.String("http", "", "Serve /status, /healthz and /metrics on this address")
	stateFile    = flag.String("state", "", "Fence state file (JSON)")
	lenientState = flag.Bool("lenient-state", false, "Recover readable fields from a corrupt state file")
	exitTimeout  = flag.Duration("exit-timeout", 0, "Signal exit after this long without a reading")
	logLevel     = flag.String("log-level", "", "Log level: debug, info, warn, error")
	eventLog     = flag.String("event-log", "", "File path for event logging (CBOR format)")
)

// Compile-time check that the mDNS browser can drive a monitor.
var _ monitor.Scanner = (*discovery.MDNSBrowser)(nil)

func main() {
	flag.Parse()

	cfg, identityOverridden, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, !identityOverridden); err != nil {
		slog.Error("beacon-fence failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flags that were set explicitly.
// It reports whether the identity came from the command line or a file.
func loadConfig() (*config.Config, bool, error) {
	cfg, err := config.LoadOrDefault(*configFile)
	if err != nil {
		return nil, false, err
	}

	overridden := *configFile != ""
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			cfg.Fence.Name = *name
			overridden = true
		case "uuid":
			cfg.Fence.UUID = *regionUUID
			overridden = true
		case "major":
			cfg.Fence.Major = *major
			overridden = true
		case "minor":
			cfg.Fence.Minor = *minor
			overridden = true
		case "interface":
			cfg.Advertising.Interface = *iface
		case "http":
			cfg.HTTP.Listen = *httpAddr
		case "state":
			cfg.StateFile = *stateFile
		case "exit-timeout":
			cfg.Monitor.ExitTimeout = *exitTimeout
		case "log-level":
			cfg.Logging.Level = *logLevel
		case "event-log":
			cfg.Logging.EventLog = *eventLog
		}
	})

	return cfg, overridden, cfg.Validate()
}

func run(cfg *config.Config, preferStored bool) error {
	configured, err := cfg.Identity()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// In interactive mode all output goes through readline so the prompt stays intact.
	var console *interactive.Console
	var out, logOut io.Writer = os.Stdout, os.Stderr
	if *interactiveF {
		console, err = interactive.New()
		if err != nil {
			return err
		}
		out, logOut = console.Stdout(), console.Stderr()
	}

	level, _ := config.ParseLevel(cfg.Logging.Level)
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	var store *persistence.FenceStore
	if cfg.StateFile != "" {
		store = persistence.NewFenceStore(cfg.StateFile)
	}
	id, err := resolveIdentity(store, configured, preferStored, *lenientState, logger)
	if err != nil {
		return fmt.Errorf("state file: %w", err)
	}
	f := fence.New(id)

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

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	met := metrics.New(reg)

	scanner, err := newScanner(cfg)
	if err != nil {
		return err
	}

	mon := monitor.New(f, scanner, monitor.Config{
		Observer: fence.MultiObserver{
			newLocationPrinter(f, out),
			monitor.NewNotifier(out, logger),
		},
		ExitTimeout: cfg.Monitor.ExitTimeout,
		EventLogger: eventLogger,
		Metrics:     met,
		Logger:      logger,
	})

	if cfg.HTTP.Listen != "" {
		srv := &http.Server{
			Addr:              cfg.HTTP.Listen,
			Handler:           api.NewRouter(api.New(mon, reg, logger)),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server failed", "error", err)
			}
		}()
		defer srv.Close()
		logger.Info("status listening", "addr", cfg.HTTP.Listen)
	}

	fmt.Fprintf(out, "Monitoring %s (%s)\n", id.Name(), id.Key())
	if err := mon.StartMonitoring(ctx); err != nil {
		return err
	}

	if console != nil {
		console.Run(ctx, cancel, mon)
	} else {
		waitForSignal(ctx, logger)
	}

	if err := mon.StopMonitoring(); err != nil {
		logger.Warn("stop monitoring", "error", err)
	}
	logger.Info("goodbye")
	return nil
}

func newScanner(cfg *config.Config) (monitor.Scanner, error) {
	if *simulate {
		simCfg := monitor.DefaultSimulatedConfig()
		simCfg.MeasuredPower = cfg.Advertising.MeasuredPower
		return monitor.NewSimulatedScanner(simCfg), nil
	}
	return discovery.NewMDNSBrowser(discovery.BrowserConfig{
		Interface: cfg.Advertising.Interface,
		Smoothing: cfg.Monitor.Smoothing,
	})
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
