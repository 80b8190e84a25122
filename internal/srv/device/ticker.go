package device

import (
	"sync"
	"time"

	"github.com/jypelle/minerdeck/internal/srv/event"
	"github.com/sirupsen/logrus"
)

// Ticker paces the render loop: a draw tick every second, an animation frame
// every 100 ms and, when enabled, a screen cycle tick.
type Ticker struct {
	lock         sync.RWMutex
	eventChannel chan event.TickerEvent

	drawInterval  time.Duration
	frameInterval time.Duration
	cycleInterval time.Duration

	drawTicker  *time.Ticker
	frameTicker *time.Ticker
	cycleTicker *time.Ticker

	askDone chan bool
	done    chan bool
}

func NewTicker(cycleInterval time.Duration) *Ticker {
	return &Ticker{
		eventChannel:  make(chan event.TickerEvent),
		drawInterval:  time.Second,
		frameInterval: 100 * time.Millisecond,
		cycleInterval: cycleInterval,
		askDone:       make(chan bool),
		done:          make(chan bool),
	}
}

func (d *Ticker) Start() {
	logrus.Infof("Start ticker device")
	d.lock.Lock()
	defer d.lock.Unlock()

	d.drawTicker = time.NewTicker(d.drawInterval)
	d.frameTicker = time.NewTicker(d.frameInterval)

	var cycle <-chan time.Time
	if d.cycleInterval > 0 {
		d.cycleTicker = time.NewTicker(d.cycleInterval)
		cycle = d.cycleTicker.C
	}

	go func() {
		var frame uint64
		for loop := true; loop; {
			var ev event.TickerEvent
			select {
			case <-d.drawTicker.C:
				ev = event.TickerEvent{Data: event.TickerEventDrawData{}}
			case <-d.frameTicker.C:
				frame++
				ev = event.TickerEvent{Data: event.TickerEventFrameData{Frame: frame}}
			case <-cycle:
				ev = event.TickerEvent{Data: event.TickerEventCycleData{}}
			case <-d.askDone:
				loop = false
				continue
			}

			// A busy loop loses animation frames instead of queuing them,
			// draw and cycle ticks are always delivered
			if _, isFrame := ev.Data.(event.TickerEventFrameData); isFrame {
				select {
				case d.eventChannel <- ev:
				default:
				}
				continue
			}
			select {
			case d.eventChannel <- ev:
			case <-d.askDone:
				loop = false
			}
		}
		d.done <- true
	}()
}

func (d *Ticker) StopSendingEvent() {
	logrus.Infof("Stop ticker device")
	d.lock.Lock()
	defer d.lock.Unlock()

	d.drawTicker.Stop()
	d.frameTicker.Stop()
	if d.cycleTicker != nil {
		d.cycleTicker.Stop()
	}
	d.askDone <- true
	<-d.done
}

func (d *Ticker) EventChannel() chan event.TickerEvent {
	return d.eventChannel
}
