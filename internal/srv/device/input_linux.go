//go:build linux

package device

import (
	"fmt"
	"strings"
	"sync"

	"github.com/holoplot/go-evdev"
	"github.com/jypelle/minerdeck/internal/srv/event"
	"github.com/sirupsen/logrus"
)

// Input forwards key presses of a Linux input device (keyboard, touch panel, power key) as activity
type Input struct {
	lock         sync.Mutex
	path         string
	device       *evdev.InputDevice
	eventChannel chan event.InputEvent

	askDone chan bool
	done    chan bool
}

func NewInput(path string) *Input {
	return &Input{
		path:         path,
		eventChannel: make(chan event.InputEvent),
		askDone:      make(chan bool),
		done:         make(chan bool),
	}
}

// findKeyDevice returns the first device exposing key events
func findKeyDevice() (string, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return "", err
	}
	for _, p := range paths {
		dev, err := evdev.Open(p.Path)
		if err != nil {
			continue
		}
		for _, t := range dev.CapableTypes() {
			if t == evdev.EV_KEY {
				dev.Close()
				return p.Path, nil
			}
		}
		dev.Close()
	}
	return "", fmt.Errorf("no input device with keys found")
}

func (d *Input) Start() error {
	d.lock.Lock()
	defer d.lock.Unlock()

	path := d.path
	if path == "" {
		var err error
		if path, err = findKeyDevice(); err != nil {
			return err
		}
	}
	dev, err := evdev.Open(path)
	if err != nil {
		return fmt.Errorf("unable to open input device %s: %w", path, err)
	}
	name, _ := dev.Name()
	logrus.Infof("Start input device %s (%s)", path, strings.TrimSpace(name))
	d.device = dev

	go func() {
		for loop := true; loop; {
			ev, err := dev.ReadOne()
			if err != nil {
				logrus.Debugf("Input device closed: %v", err)
				break
			}
			if ev.Type != evdev.EV_KEY || ev.Value != 1 {
				continue
			}
			select {
			case d.eventChannel <- event.InputEvent{Code: uint16(ev.Code)}:
			case <-d.askDone:
				loop = false
			}
		}
		d.done <- true
	}()
	return nil
}

func (d *Input) StopSendingEvent() {
	logrus.Infof("Stop input device")
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.device == nil {
		return
	}

	d.device.Close()
	select {
	case d.askDone <- true:
		<-d.done
	case <-d.done:
	}
	d.device = nil
}

func (d *Input) EventChannel() chan event.InputEvent {
	return d.eventChannel
}
