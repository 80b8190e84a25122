package srv

import (
	"fmt"

	"github.com/jypelle/minerdeck/internal/clock"
	"github.com/jypelle/minerdeck/internal/srv/event"
	"github.com/sirupsen/logrus"
)

func (s *ServerApp) eventLoop() {
	var buttonEvents chan event.ButtonEvent
	if s.buttonsDevice != nil {
		buttonEvents = s.buttonsDevice.EventChannel()
	}
	var inputEvents chan event.InputEvent
	if s.inputDevice != nil {
		inputEvents = s.inputDevice.EventChannel()
	}
	var apiEvents chan event.ApiEvent
	if s.apiDevice != nil {
		apiEvents = s.apiDevice.EventChannel()
	}

	for loop := true; loop; {
		select {
		case ev := <-s.tickerDevice.EventChannel():
			s.handleTickerEvent(ev)
		case ev := <-buttonEvents:
			logrus.Debugf("Receive button event: %d, %d, %d", ev.ButtonId, ev.ButtonEventType, ev.PressStepCount)
			s.handleButtonEvent(ev)
		case ev := <-inputEvents:
			logrus.Debugf("Receive input event: %d", ev.Code)
			if s.display.Wake() {
				s.draw()
			}
		case ev := <-apiEvents:
			ev.Result <- s.handleApiEvent(ev)
		case <-s.eventLoopAskDone:
			loop = false
		}
	}
	s.eventLoopDone <- true
}

func (s *ServerApp) handleTickerEvent(ev event.TickerEvent) {
	switch data := ev.Data.(type) {
	case event.TickerEventDrawData:
		if s.display.CheckScreensaver() {
			return
		}
		s.draw()
	case event.TickerEventFrameData:
		s.display.Animate(data.Frame)
		s.display.DoLedEffects(data.Frame)
	case event.TickerEventCycleData:
		s.display.CycleScreen()
	}
}

// draw renders the current screen with the time elapsed since the last real draw
func (s *ServerApp) draw() {
	now := s.clock.Millis()
	elapsed := uint32(defaultDrawElapsedMs)
	if s.lastDrawSeen {
		elapsed = clock.Since(now, s.lastDraw)
	}
	if s.display.DrawCurrentScreen(elapsed) {
		s.lastDraw = now
		s.lastDrawSeen = true
	}
}

// userNavigation redraws at once and remembers the screen for the next start
func (s *ServerApp) userNavigation() {
	s.SetLastScreen(s.display.CurrentScreen())
	s.draw()
}

// handleButtonEvent navigates on the release of a short press; a long press
// toggles the panel (next) or its rotation (previous) while still held
func (s *ServerApp) handleButtonEvent(ev event.ButtonEvent) {
	switch {
	case ev.ButtonEventType == event.RELEASE_EVENT_TYPE && ev.PressStepCount > 0 && ev.PressStepCount < longPressStepCount:
		switch ev.ButtonId {
		case event.NEXT_BUTTON:
			s.display.NextScreen()
		case event.PREVIOUS_BUTTON:
			s.display.PreviousScreen()
		}
	case ev.ButtonEventType == event.PRESS_EVENT_TYPE && ev.PressStepCount == longPressStepCount:
		switch ev.ButtonId {
		case event.NEXT_BUTTON:
			s.display.AlternateScreenState()
		case event.PREVIOUS_BUTTON:
			s.display.AlternateScreenRotation()
		}
	default:
		return
	}
	s.userNavigation()
}

func (s *ServerApp) handleApiEvent(ev event.ApiEvent) error {
	switch data := ev.Data.(type) {
	case event.ApiEventNextScreenData:
		s.display.NextScreen()
	case event.ApiEventPreviousScreenData:
		s.display.PreviousScreen()
	case event.ApiEventToggleScreenData:
		s.display.AlternateScreenState()
	case event.ApiEventRotateScreenData:
		s.display.AlternateScreenRotation()
	case event.ApiEventWakeData:
		s.display.Wake()
	case event.ApiEventScreensaverData:
		s.display.SetTimeoutMinutes(data.Minutes)
		s.SetScreensaverMinutes(data.Minutes)
		logrus.Infof("Screensaver timeout set to %d minutes", data.Minutes)
		return nil
	case event.ApiEventMinerData:
		s.miner.Set(data.Counters)
		return nil
	default:
		return fmt.Errorf("unsupported api event %T", ev.Data)
	}
	s.userNavigation()
	return nil
}
