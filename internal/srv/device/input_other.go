//go:build !linux

package device

import (
	"errors"

	"github.com/jypelle/minerdeck/internal/srv/event"
)

type Input struct {
	eventChannel chan event.InputEvent
}

func NewInput(path string) *Input {
	return &Input{eventChannel: make(chan event.InputEvent)}
}

func (d *Input) Start() error {
	return errors.New("input devices are only supported on linux")
}

func (d *Input) StopSendingEvent() {}

func (d *Input) EventChannel() chan event.InputEvent {
	return d.eventChannel
}
