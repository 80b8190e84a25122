package event

import "github.com/jypelle/minerdeck/internal/srv/monitor"

// Ticker
type TickerEvent struct {
	Data interface{}
}

// TickerEventDrawData asks for a screen redraw and a screensaver check
type TickerEventDrawData struct{}

// TickerEventFrameData drives animations and led effects
type TickerEventFrameData struct {
	Frame uint64
}

// TickerEventCycleData advances the cyclic screen
type TickerEventCycleData struct{}

// Buttons
type ButtonId int

const (
	NEXT_BUTTON ButtonId = iota
	PREVIOUS_BUTTON
)

type ButtonEventType int

const (
	PRESS_EVENT_TYPE ButtonEventType = iota
	RELEASE_EVENT_TYPE
)

type ButtonEvent struct {
	ButtonId        ButtonId
	ButtonEventType ButtonEventType
	PressStepCount  int64
}

// Input device activity (keyboard, touch)
type InputEvent struct {
	Code uint16
}

// Api
type ApiEvent struct {
	Result chan error
	Data   interface{}
}

type ApiEventNextScreenData struct{}
type ApiEventPreviousScreenData struct{}
type ApiEventToggleScreenData struct{}
type ApiEventRotateScreenData struct{}
type ApiEventWakeData struct{}

type ApiEventScreensaverData struct {
	Minutes uint32
}

type ApiEventMinerData struct {
	Counters monitor.MiningCounters
}
