package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jypelle/minerdeck/internal/srv/display"
	"github.com/jypelle/minerdeck/internal/srv/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadCreatesDefaultParamFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "minerdeck")

	sc, err := LoadServerConfig(dir, false, true)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, paramFilename))

	assert.Equal(t, display.VIRTUAL_DRIVER, sc.Display.Driver)
	assert.Equal(t, uint32(5), sc.ScreensaverMinutes())
	assert.Equal(t, 0, sc.LastScreen())

	cfg := sc.MonitorConfig()
	assert.Equal(t, 2*time.Minute, cfg.GlobalInterval)
	assert.Equal(t, time.Minute, cfg.PoolInterval)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Yield)
	assert.Equal(t, monitor.PublicPoolAPIURL, cfg.PoolAPIURL)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 5*time.Hour, sc.NtpRefresh())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	dir := t.TempDir()
	param := &ServerParam{}
	require.NoError(t, yaml.Unmarshal(ParamDefaultFile, param))
	param.Display.Driver = "lcd"
	raw, err := yaml.Marshal(param)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, paramFilename), raw, 0660))

	_, err = LoadServerConfig(dir, false, false)
	assert.ErrorContains(t, err, "lcd")
}

func TestPoolApiUrlOverride(t *testing.T) {
	param := &ServerParam{}
	require.NoError(t, yaml.Unmarshal(ParamDefaultFile, param))
	param.Miner.PoolAddress = "umbrel.local"
	param.Miner.PoolPort = 2018
	assert.Equal(t, "http://umbrel.local:2019/api/client/", param.PoolApiUrl())

	param.Endpoints.PoolApi = "http://10.0.0.2:2019/api/client/"
	assert.Equal(t, "http://10.0.0.2:2019/api/client/", param.PoolApiUrl())
}

func TestStateSaveIsDebounced(t *testing.T) {
	filename := filepath.Join(t.TempDir(), stateFilename)
	state, err := NewServerState(filename, 3)
	require.NoError(t, err)
	state.saveDelay = time.Hour

	state.SetLastScreen(2)
	state.SetScreensaverMinutes(7)
	assert.NoFileExists(t, filename)

	state.FlushSave()
	assert.FileExists(t, filename)

	reloaded, err := NewServerState(filename, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.LastScreen())
	assert.Equal(t, uint32(7), reloaded.ScreensaverMinutes())
}

func TestValidateRejectsNonPositiveLimits(t *testing.T) {
	for name, mutate := range map[string]func(p *ServerParam){
		"payload":     func(p *ServerParam) { p.Fetch.MaxPayloadBytes = 0 },
		"ntp refresh": func(p *ServerParam) { p.Ntp.RefreshHours = -1 },
		"http":        func(p *ServerParam) { p.Fetch.HttpTimeoutSeconds = 0 },
	} {
		t.Run(name, func(t *testing.T) {
			param := &ServerParam{}
			require.NoError(t, yaml.Unmarshal(ParamDefaultFile, param))
			require.NoError(t, param.Validate())
			mutate(param)
			assert.Error(t, param.Validate())
		})
	}
}
