package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/sigobj/beaconfence/pkg/fence"
)

// locationPrinter writes the fence's status line whenever it changes.
type locationPrinter struct {
	fence *fence.Fence
	out   io.Writer

	mu   sync.Mutex
	last string
}

func newLocationPrinter(f *fence.Fence, out io.Writer) *locationPrinter {
	return &locationPrinter{fence: f, out: out}
}

func (p *locationPrinter) OnReadingsUpdated(fence.Identity, []fence.Reading) {
	desc := p.fence.Describe()

	p.mu.Lock()
	defer p.mu.Unlock()
	if desc == p.last {
		return
	}
	p.last = desc
	fmt.Fprintln(p.out, desc)
}

func (p *locationPrinter) OnRegionEntered(fence.Identity) {}

func (p *locationPrinter) OnRegionExited(fence.Identity) {}

var _ fence.Observer = (*locationPrinter)(nil)
