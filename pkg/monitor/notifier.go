package monitor

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/sigobj/beaconfence/pkg/fence"
)

// Notifier prints region transitions as user-facing alerts.
type Notifier struct {
	mu     sync.Mutex
	out    io.Writer
	logger *slog.Logger
}

// NewNotifier creates a Notifier writing to out. Either argument may be nil.
func NewNotifier(out io.Writer, logger *slog.Logger) *Notifier {
	return &Notifier{out: out, logger: logger}
}

// EnterMessage returns the alert text for entering id's region.
func EnterMessage(id fence.Identity) string {
	return "ENTER Beacon " + id.Name()
}

// ExitMessage returns the alert text for leaving id's region.
func ExitMessage(id fence.Identity) string {
	return "EXIT Beacon " + id.Name()
}

// OnReadingsUpdated is a no-op.
func (n *Notifier) OnReadingsUpdated(fence.Identity, []fence.Reading) {}

// OnRegionEntered prints the enter alert.
func (n *Notifier) OnRegionEntered(id fence.Identity) {
	n.notify(EnterMessage(id), id)
}

// OnRegionExited prints the exit alert.
func (n *Notifier) OnRegionExited(id fence.Identity) {
	n.notify(ExitMessage(id), id)
}

func (n *Notifier) notify(msg string, id fence.Identity) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.out != nil {
		fmt.Fprintln(n.out, msg)
	}
	if n.logger != nil {
		n.logger.Info("notification", "message", msg, "region", id.Key())
	}
}

// Compile-time interface satisfaction check.
var _ fence.Observer = (*Notifier)(nil)
