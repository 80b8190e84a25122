package srv

import (
	"errors"
	"testing"
	"time"

	"github.com/jypelle/minerdeck/internal/clock"
	"github.com/jypelle/minerdeck/internal/srv/config"
	"github.com/jypelle/minerdeck/internal/srv/display"
	"github.com/jypelle/minerdeck/internal/srv/event"
	"github.com/jypelle/minerdeck/internal/srv/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type offline struct{}

func (offline) Connected() bool { return false }

func newTestServerApp(t *testing.T) (*ServerApp, *clock.Manual) {
	serverConfig, err := config.LoadServerConfig(t.TempDir(), false, true)
	require.NoError(t, err)

	clk := clock.NewManual(0)
	app := newServerApp(serverConfig, clk, offline{}, func(host string) (time.Time, error) {
		return time.Time{}, errors.New("offline")
	})
	app.initDisplay()
	return app, clk
}

func TestApiNavigationIsPersisted(t *testing.T) {
	app, _ := newTestServerApp(t)
	require.NotNil(t, app.virtual)
	assert.Equal(t, display.VIRTUAL_DRIVER, app.display.DriverName())

	require.NoError(t, app.handleApiEvent(event.ApiEvent{Data: event.ApiEventNextScreenData{}}))
	require.NoError(t, app.handleApiEvent(event.ApiEvent{Data: event.ApiEventNextScreenData{}}))
	assert.Equal(t, 2, app.display.CurrentScreen())
	assert.Equal(t, 2, app.LastScreen())

	require.NoError(t, app.handleApiEvent(event.ApiEvent{Data: event.ApiEventPreviousScreenData{}}))
	assert.Equal(t, 1, app.LastScreen())

	assert.Error(t, app.handleApiEvent(event.ApiEvent{Data: "reboot"}))
}

func TestScreensaverFromTicker(t *testing.T) {
	app, clk := newTestServerApp(t)
	require.NoError(t, app.handleApiEvent(event.ApiEvent{Data: event.ApiEventScreensaverData{Minutes: 1}}))
	assert.Equal(t, uint32(1), app.ScreensaverMinutes())

	app.handleApiEvent(event.ApiEvent{Data: event.ApiEventNextScreenData{}})
	app.handleTickerEvent(event.TickerEvent{Data: event.TickerEventDrawData{}})
	assert.True(t, app.virtual.IsOn())

	clk.Advance(60000)
	app.handleTickerEvent(event.TickerEvent{Data: event.TickerEventDrawData{}})
	assert.True(t, app.display.ScreensaverActive())
	assert.False(t, app.virtual.IsOn())

	app.handleButtonEvent(event.ButtonEvent{ButtonId: event.NEXT_BUTTON, ButtonEventType: event.PRESS_EVENT_TYPE, PressStepCount: 1})
	assert.True(t, app.display.ScreensaverActive())
	app.handleButtonEvent(event.ButtonEvent{ButtonId: event.NEXT_BUTTON, ButtonEventType: event.RELEASE_EVENT_TYPE, PressStepCount: 1})
	assert.False(t, app.display.ScreensaverActive())
	assert.True(t, app.virtual.IsOn())
	assert.Equal(t, 1, app.display.CurrentScreen())
}

func TestButtonLongPressTogglesPanel(t *testing.T) {
	app, _ := newTestServerApp(t)
	for step := int64(1); step <= longPressStepCount; step++ {
		app.handleButtonEvent(event.ButtonEvent{ButtonId: event.NEXT_BUTTON, ButtonEventType: event.PRESS_EVENT_TYPE, PressStepCount: step})
	}
	assert.Equal(t, 0, app.display.CurrentScreen())
	assert.False(t, app.display.PanelOn())

	app.handleButtonEvent(event.ButtonEvent{ButtonId: event.NEXT_BUTTON, ButtonEventType: event.RELEASE_EVENT_TYPE, PressStepCount: longPressStepCount + 2})
	assert.Equal(t, 0, app.display.CurrentScreen())
	assert.False(t, app.display.PanelOn())
}

func TestLongPressFromScreensaverKeepsPanelOn(t *testing.T) {
	app, clk := newTestServerApp(t)
	require.NoError(t, app.handleApiEvent(event.ApiEvent{Data: event.ApiEventScreensaverData{Minutes: 1}}))
	clk.Advance(60000)
	app.handleTickerEvent(event.TickerEvent{Data: event.TickerEventDrawData{}})
	require.True(t, app.display.ScreensaverActive())

	for step := int64(1); step <= longPressStepCount; step++ {
		app.handleButtonEvent(event.ButtonEvent{ButtonId: event.NEXT_BUTTON, ButtonEventType: event.PRESS_EVENT_TYPE, PressStepCount: step})
	}
	assert.False(t, app.display.ScreensaverActive())
	assert.True(t, app.display.PanelOn())
	assert.True(t, app.virtual.IsOn())
}

func TestStatusReflectsState(t *testing.T) {
	app, _ := newTestServerApp(t)
	app.handleApiEvent(event.ApiEvent{Data: event.ApiEventMinerData{Counters: monitor.MiningCounters{Shares: 12, TotalKHashes: 5000}}})
	app.monitor.Cache().SetBitcoinPrice(65000)

	status := app.Status()
	assert.Equal(t, "0.3.1", status.Version)
	assert.Equal(t, uint32(12), status.Miner.Shares)
	assert.Equal(t, uint32(65000), status.Network.BtcPriceUsd)
	assert.Equal(t, monitor.DefaultBlockHeight, status.Network.BlockHeight)
	assert.Equal(t, display.VIRTUAL_DRIVER, status.Display.Driver)
	assert.Equal(t, 5, status.Display.ScreenCount)
	assert.False(t, status.Connected)
	assert.NotEmpty(t, status.Uptime)
}

func TestDrawUsesElapsedSinceLastDraw(t *testing.T) {
	app, clk := newTestServerApp(t)
	app.draw()
	assert.True(t, app.lastDrawSeen)

	clk.Advance(2500)
	app.draw()
	assert.Equal(t, uint32(2500), app.lastDraw)

	raw, err := app.virtual.FramePNG()
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}
