package device

import (
	"fmt"
	"sync"
	"time"

	"github.com/jypelle/minerdeck/internal/srv/event"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

const buttonRepeatDelay = 160 * time.Millisecond

type levelReader interface {
	Read() gpio.Level
}

type Button struct {
	buttonId       event.ButtonId
	pin            levelReader
	isPressed      bool
	pressStepCount int64
	lastChange     time.Time
}

func NewButton(buttonId event.ButtonId, name string) (*Button, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("failed to find %s button", name)
	}

	// Set it as input, with an internal pull up resistor:
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("failed to setup %s button: %w", name, err)
	}
	return &Button{buttonId: buttonId, pin: pin}, nil
}

// Refresh samples the pin and reports a press step every repeat delay while held, then a release
func (b *Button) Refresh(now time.Time) (event.ButtonEvent, bool) {
	wasPressed := b.isPressed
	b.isPressed = bool(!b.pin.Read())

	if !b.isPressed && wasPressed {
		b.lastChange = now
		ev := event.ButtonEvent{ButtonId: b.buttonId, ButtonEventType: event.RELEASE_EVENT_TYPE, PressStepCount: b.pressStepCount}
		b.pressStepCount = 0
		return ev, true
	}
	if b.isPressed && b.lastChange.Add(buttonRepeatDelay).Before(now) {
		b.lastChange = now
		b.pressStepCount++
		return event.ButtonEvent{ButtonId: b.buttonId, ButtonEventType: event.PRESS_EVENT_TYPE, PressStepCount: b.pressStepCount}, true
	}
	return event.ButtonEvent{}, false
}

type ButtonPins struct {
	Next     string
	Previous string
}

type Buttons struct {
	lock         sync.RWMutex
	eventChannel chan event.ButtonEvent
	enabled      bool
	pins         ButtonPins

	buttons []*Button

	checkTicker *time.Ticker

	askDone chan bool
	done    chan bool
}

func NewButtons(enabled bool, pins ButtonPins) *Buttons {
	return &Buttons{
		eventChannel: make(chan event.ButtonEvent),
		enabled:      enabled,
		pins:         pins,
		askDone:      make(chan bool),
		done:         make(chan bool),
	}
}

func (d *Buttons) Start() {
	logrus.Infof("Start buttons device")

	d.lock.Lock()
	defer d.lock.Unlock()

	if d.enabled {
		if _, err := host.Init(); err != nil {
			logrus.Errorf("Buttons disabled, unable to init periph host: %v", err)
		} else {
			for id, name := range map[event.ButtonId]string{
				event.NEXT_BUTTON:     d.pins.Next,
				event.PREVIOUS_BUTTON: d.pins.Previous,
			} {
				button, err := NewButton(id, name)
				if err != nil {
					logrus.Errorf("Button ignored: %v", err)
					continue
				}
				d.buttons = append(d.buttons, button)
			}
		}
	}

	// Start periodic check
	d.checkTicker = time.NewTicker(5 * time.Millisecond)
	go func() {
	loop:
		for {
			select {
			case now := <-d.checkTicker.C:
				for _, button := range d.buttons {
					ev, ok := button.Refresh(now)
					if !ok {
						continue
					}
					select {
					case d.eventChannel <- ev:
					case <-d.askDone:
						break loop
					}
				}
			case <-d.askDone:
				break loop
			}
		}
		d.done <- true
	}()
}

func (d *Buttons) StopSendingEvent() {
	logrus.Infof("Stop buttons device")

	d.lock.Lock()
	defer d.lock.Unlock()

	d.checkTicker.Stop()
	d.askDone <- true
	<-d.done
}

func (d *Buttons) EventChannel() chan event.ButtonEvent {
	return d.eventChannel
}
