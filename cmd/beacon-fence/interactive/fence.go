// Package interactive provides the interactive console for beacon-fence.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/sigobj/beaconfence/pkg/fence"
	"github.com/sigobj/beaconfence/pkg/monitor"
)

// Monitor is the part of *monitor.Monitor the console drives.
type Monitor interface {
	Fence() *fence.Fence
	State() monitor.State
	Inside() bool
	Describe() string
	StartMonitoring(ctx context.Context) error
	StopMonitoring() error
}

// Console handles interactive mode for beacon-fence.
type Console struct {
	mon Monitor
	rl  *readline.Instance
	out io.Writer
}

// New creates a console bound to the terminal. The monitor is supplied to
// Run so that output can be routed through the console while it is built.
func New() (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "fence> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Console{rl: rl, out: rl.Stdout()}, nil
}

func newConsole(mon Monitor, out io.Writer) *Console {
	return &Console{mon: mon, out: out}
}

// Stdout returns a writer that coordinates with the readline prompt.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Stderr returns a writer that coordinates with the readline prompt.
func (c *Console) Stderr() io.Writer {
	return c.rl.Stderr()
}

// Run starts the interactive command loop for mon.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc, mon Monitor) {
	defer c.rl.Close()
	c.mon = mon

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}

		if !c.Execute(ctx, line) {
			cancel()
			return
		}
	}
}

// Execute runs one command line. It returns false when the console should exit.
func (c *Console) Execute(ctx context.Context, line string) bool {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return true
	}

	switch cmd := strings.ToLower(parts[0]); cmd {
	case "help", "?":
		c.printHelp()

	case "start":
		if err := c.mon.StartMonitoring(ctx); err != nil {
			fmt.Fprintf(c.out, "Start failed: %v\n", err)
			break
		}
		fmt.Fprintln(c.out, "Monitoring", c.mon.Fence().Identity().Name())

	case "stop":
		if err := c.mon.StopMonitoring(); err != nil {
			fmt.Fprintf(c.out, "Stop failed: %v\n", err)
			break
		}
		fmt.Fprintln(c.out, "Stopped")

	case "status", "s":
		c.cmdStatus()

	case "quit", "exit", "q":
		fmt.Fprintln(c.out, "Exiting...")
		return false

	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
Commands:
  start      Start monitoring
  stop       Stop monitoring
  status, s  Show region state and location
  help, ?    Show this help
  quit, q    Exit`)
}

func (c *Console) cmdStatus() {
	id := c.mon.Fence().Identity()
	fmt.Fprintf(c.out, "%s (%s)\n", id.Name(), id.Key())
	fmt.Fprintf(c.out, "  state:  %s\n", c.mon.State())
	fmt.Fprintf(c.out, "  inside: %t\n", c.mon.Inside())
	fmt.Fprintf(c.out, "  %s\n", c.mon.Describe())
}
