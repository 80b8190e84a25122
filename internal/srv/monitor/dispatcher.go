package monitor

import (
	"fmt"

	"github.com/jypelle/minerdeck/internal/clock"
	"github.com/sirupsen/logrus"
)

const QueueCapacity = 10

// Dispatcher is the bounded, lossy request queue between the render loop and the fetch worker.
type Dispatcher struct {
	queue chan Request
	clock clock.Source
}

func NewDispatcher(clk clock.Source) *Dispatcher {
	return &Dispatcher{
		queue: make(chan Request, QueueCapacity),
		clock: clk,
	}
}

// TryEnqueue never blocks. A nil error means the request was queued.
func (d *Dispatcher) TryEnqueue(kind RequestKind, url string) error {
	req, err := NewRequest(kind, url, d.clock.Millis())
	if err != nil {
		return err
	}
	select {
	case d.queue <- req:
		logrus.Debugf("Queued %s request (%d/%d)", kind, len(d.queue), cap(d.queue))
		return nil
	default:
		logrus.Warnf("Fetch queue full, %s request dropped", kind)
		return fmt.Errorf("%w: %s", ErrQueueFull, kind)
	}
}

func (d *Dispatcher) Len() int {
	return len(d.queue)
}

func (d *Dispatcher) Cap() int {
	return cap(d.queue)
}

func (d *Dispatcher) Requests() <-chan Request {
	return d.queue
}

type refreshTimer struct {
	interval   uint32
	mark       uint32
	set        bool
	urlErrSeen bool
}

func newRefreshTimer(intervalMs uint32) refreshTimer {
	return refreshTimer{interval: intervalMs}
}

func (t *refreshTimer) due(now uint32) bool {
	return !t.set || clock.Since(now, t.mark) > t.interval
}

func (t *refreshTimer) advance(now uint32) {
	t.mark = now
	t.set = true
	t.urlErrSeen = false
}
