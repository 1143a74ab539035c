// Package interactive provides the interactive console for beacon-emitter.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/sigobj/beaconfence/pkg/discovery"
)

// Console handles interactive mode for beacon-emitter.
type Console struct {
	emitter *discovery.Emitter
	rl      *readline.Instance
	out     io.Writer
}

// New creates a console bound to the terminal.
func New(emitter *discovery.Emitter) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "emitter> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	c := newConsole(emitter, rl.Stdout())
	c.rl = rl
	return c, nil
}

func newConsole(emitter *discovery.Emitter, out io.Writer) *Console {
	return &Console{emitter: emitter, out: out}
}

// Stdout returns a writer that coordinates with the readline prompt.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Stderr returns a writer that coordinates with the readline prompt.
func (c *Console) Stderr() io.Writer {
	return c.rl.Stderr()
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

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

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()

	case "start":
		c.cmdStart(ctx)

	case "stop":
		c.cmdStop()

	case "status", "s":
		c.cmdStatus()

	case "signal":
		c.cmdSignal(args)

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
  start          Start advertising
  stop           Stop advertising
  status, s      Show advertising state
  signal <rssi>  Publish a signal strength in dBm (0 removes it)
  help, ?        Show this help
  quit, q        Exit`)
}

func (c *Console) cmdStart(ctx context.Context) {
	if err := c.emitter.Start(ctx); err != nil {
		fmt.Fprintf(c.out, "Start failed: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "Advertising", discovery.InstanceName(c.emitter.Info().Identity))
}

func (c *Console) cmdStop() {
	if err := c.emitter.Stop(); err != nil {
		fmt.Fprintf(c.out, "Stop failed: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "Stopped")
}

func (c *Console) cmdStatus() {
	info := c.emitter.Info()
	fmt.Fprintf(c.out, "isAdvertising? %t, State = %s\n", c.emitter.IsAdvertising(), c.emitter.State())
	fmt.Fprintf(c.out, "  region: %s major: %d minor: %d name: %q\n",
		info.Identity.RegionID(), info.Identity.Major(), info.Identity.Minor(), info.Identity.Name())
	if info.Signal != 0 {
		fmt.Fprintf(c.out, "  signal: %d dBm\n", info.Signal)
	}
}

func (c *Console) cmdSignal(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: signal <rssi>")
		return
	}

	rssi, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Invalid signal %q: %v\n", args[0], err)
		return
	}

	if err := c.emitter.SetSignal(rssi); err != nil {
		fmt.Fprintf(c.out, "Signal rejected: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Signal set to %d\n", rssi)
}
