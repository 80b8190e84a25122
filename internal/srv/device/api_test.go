package device

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jypelle/minerdeck/apimodel"
	"github.com/jypelle/minerdeck/internal/srv/config"
	"github.com/jypelle/minerdeck/internal/srv/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testApiKey = "secret"

func newTestApi(t *testing.T, frame FrameFunc) (*httptest.Server, chan event.ApiEvent) {
	status := func() apimodel.Status {
		return apimodel.Status{Version: "0.3.1", Display: apimodel.DisplayStatus{Driver: "virtual", ScreenCount: 5}}
	}
	api := NewApi(t.TempDir(), config.ApiParam{Enabled: true, Port: 8443, ApiKey: testApiKey}, status, frame)
	server := httptest.NewServer(api.Handler())
	t.Cleanup(server.Close)
	return server, api.EventChannel()
}

func call(t *testing.T, server *httptest.Server, method, path, body string) *http.Response {
	req, err := http.NewRequest(method, server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("x-api-key", testApiKey)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// answer replies to the next api event with err and returns its data
func answer(events chan event.ApiEvent, err error) chan interface{} {
	data := make(chan interface{}, 1)
	go func() {
		ev := <-events
		data <- ev.Data
		ev.Result <- err
	}()
	return data
}

func TestApiRejectsWrongKey(t *testing.T) {
	server, _ := newTestApi(t, nil)
	resp, err := http.Get(server.URL + "/api/is_alive")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestApiIsAliveAndStatus(t *testing.T) {
	server, _ := newTestApi(t, nil)
	assert.Equal(t, http.StatusOK, call(t, server, "GET", "/api/is_alive", "").StatusCode)

	resp := call(t, server, "GET", "/api/status", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status apimodel.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "virtual", status.Display.Driver)
	assert.Equal(t, 5, status.Display.ScreenCount)
}

func TestApiCommands(t *testing.T) {
	server, events := newTestApi(t, nil)
	for path, want := range map[string]interface{}{
		"/api/screen/next":     event.ApiEventNextScreenData{},
		"/api/screen/previous": event.ApiEventPreviousScreenData{},
		"/api/screen/toggle":   event.ApiEventToggleScreenData{},
		"/api/screen/rotate":   event.ApiEventRotateScreenData{},
		"/api/wake":            event.ApiEventWakeData{},
	} {
		data := answer(events, nil)
		assert.Equal(t, http.StatusOK, call(t, server, "POST", path, "").StatusCode, path)
		assert.Equal(t, want, <-data)
	}
}

func TestApiScreensaver(t *testing.T) {
	server, events := newTestApi(t, nil)
	data := answer(events, nil)
	assert.Equal(t, http.StatusOK, call(t, server, "PUT", "/api/screensaver/15", "").StatusCode)
	assert.Equal(t, event.ApiEventScreensaverData{Minutes: 15}, <-data)

	assert.Equal(t, http.StatusBadRequest, call(t, server, "PUT", "/api/screensaver/-1", "").StatusCode)
	assert.Equal(t, http.StatusMethodNotAllowed, call(t, server, "GET", "/api/screensaver/15", "").StatusCode)
}

func TestApiMiner(t *testing.T) {
	server, events := newTestApi(t, nil)
	data := answer(events, nil)
	resp := call(t, server, "POST", "/api/miner", `{"total_khashes": 1200, "shares": 4, "best_diff": 1500.5, "uptime_seconds": 90}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	got := (<-data).(event.ApiEventMinerData)
	assert.Equal(t, uint32(1200), got.Counters.TotalKHashes)
	assert.Equal(t, uint32(4), got.Counters.Shares)
	assert.Equal(t, 1500.5, got.Counters.BestDiff)
	assert.Equal(t, uint64(90), got.Counters.UpTime)

	assert.Equal(t, http.StatusBadRequest, call(t, server, "POST", "/api/miner", `{"shares":`).StatusCode)
}

func TestApiCommandError(t *testing.T) {
	server, events := newTestApi(t, nil)
	answer(events, errors.New("refused"))
	resp := call(t, server, "POST", "/api/wake", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var msg apimodel.ErrorMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&msg))
	assert.Equal(t, "refused", msg.ErrMessage)
}

func TestApiFrame(t *testing.T) {
	server, _ := newTestApi(t, nil)
	assert.Equal(t, http.StatusServiceUnavailable, call(t, server, "GET", "/api/frame", "").StatusCode)

	server, _ = newTestApi(t, func() ([]byte, error) { return []byte("\x89PNG"), nil })
	resp := call(t, server, "GET", "/api/frame", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
}

func TestApiNotFound(t *testing.T) {
	server, _ := newTestApi(t, nil)
	resp := call(t, server, "GET", "/api/unknown", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestApiErrorBody(t *testing.T) {
	server, _ := newTestApi(t, nil)
	resp := call(t, server, "GET", "/api/unknown", "")
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var msg apimodel.ErrorMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&msg))
	assert.Equal(t, http.StatusNotFound, msg.ErrStatusCode)
	assert.Equal(t, "Page not found", msg.ErrMessage)
}
