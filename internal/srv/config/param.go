package config

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/jypelle/minerdeck/internal/srv/display"
	"github.com/jypelle/minerdeck/internal/srv/monitor"
)

//go:embed param_default.yaml
var ParamDefaultFile []byte

type ServerParam struct {
	Miner        MinerParam        `yaml:"miner"`
	Timezone     int               `yaml:"timezone"`
	Endpoints    EndpointsParam    `yaml:"endpoints"`
	Refresh      RefreshParam      `yaml:"refresh_minutes"`
	Fetch        FetchParam        `yaml:"fetch"`
	Ntp          NtpParam          `yaml:"ntp"`
	Display      DisplayParam      `yaml:"display"`
	Connectivity ConnectivityParam `yaml:"connectivity"`
	Buttons      ButtonsParam      `yaml:"buttons"`
	Input        InputParam        `yaml:"input"`
	ApiParam     ApiParam          `yaml:"api"`
}

type MinerParam struct {
	PoolAddress          string  `yaml:"pool_address"`
	PoolPort             int     `yaml:"pool_port"`
	Wallet               string  `yaml:"wallet"`
	SimulatedHashrateKhs float64 `yaml:"simulated_hashrate_khs"`
}

type EndpointsParam struct {
	GlobalHash  string `yaml:"global_hash"`
	Fees        string `yaml:"fees"`
	BlockHeight string `yaml:"block_height"`
	BtcPrice    string `yaml:"btc_price"`
	// Empty resolves the pool api from the pool address and port
	PoolApi string `yaml:"pool_api"`
}

type RefreshParam struct {
	Global int64 `yaml:"global"`
	Height int64 `yaml:"height"`
	Price  int64 `yaml:"price"`
	Pool   int64 `yaml:"pool"`
}

type FetchParam struct {
	HttpTimeoutSeconds int64  `yaml:"http_timeout_seconds"`
	YieldMs            int64  `yaml:"yield_ms"`
	MaxPayloadBytes    int64  `yaml:"max_payload_bytes"`
	MemoryMarginBytes  uint64 `yaml:"memory_margin_bytes"`
}

type NtpParam struct {
	Host         string `yaml:"host"`
	RefreshHours int64  `yaml:"refresh_hours"`
}

type DisplayParam struct {
	Driver             string `yaml:"driver"`
	I2cBus             string `yaml:"i2c_bus"`
	LedPin             string `yaml:"led_pin"`
	Contrast           byte   `yaml:"contrast"`
	CycleSeconds       int64  `yaml:"cycle_seconds"`
	ScreensaverMinutes uint32 `yaml:"screensaver_minutes"`
}

const (
	PING_CONNECTIVITY   = "ping"
	ALWAYS_CONNECTIVITY = "always"
)

type ConnectivityParam struct {
	Mode            string `yaml:"mode"`
	Host            string `yaml:"host"`
	IntervalSeconds int64  `yaml:"interval_seconds"`
	Privileged      bool   `yaml:"privileged"`
}

type ButtonsParam struct {
	Enabled     bool   `yaml:"enabled"`
	NextPin     string `yaml:"next_pin"`
	PreviousPin string `yaml:"previous_pin"`
}

type InputParam struct {
	Enabled bool `yaml:"enabled"`
	// Empty picks the first keyboard-like device
	Device string `yaml:"device"`
}

type ApiParam struct {
	Enabled bool   `yaml:"enabled"`
	Port    int64  `yaml:"port"`
	Tls     bool   `yaml:"tls"`
	ApiKey  string `yaml:"api_key"`
}

func (p *ServerParam) Validate() error {
	switch p.Display.Driver {
	case display.NONE_DRIVER, display.OLED_DRIVER, display.DONGLE_DRIVER, display.VIRTUAL_DRIVER, display.WINDOW_DRIVER:
	default:
		return fmt.Errorf("unknown display driver %q", p.Display.Driver)
	}
	switch p.Connectivity.Mode {
	case PING_CONNECTIVITY, ALWAYS_CONNECTIVITY:
	default:
		return fmt.Errorf("unknown connectivity mode %q", p.Connectivity.Mode)
	}
	for name, minutes := range map[string]int64{
		"global": p.Refresh.Global,
		"height": p.Refresh.Height,
		"price":  p.Refresh.Price,
		"pool":   p.Refresh.Pool,
	} {
		if minutes <= 0 {
			return fmt.Errorf("%s refresh interval must be positive, got %d", name, minutes)
		}
	}
	if p.Fetch.HttpTimeoutSeconds <= 0 {
		return fmt.Errorf("http timeout must be positive, got %d", p.Fetch.HttpTimeoutSeconds)
	}
	if p.Fetch.MaxPayloadBytes <= 0 {
		return fmt.Errorf("max payload size must be positive, got %d", p.Fetch.MaxPayloadBytes)
	}
	if p.Ntp.RefreshHours <= 0 {
		return fmt.Errorf("ntp refresh interval must be positive, got %d", p.Ntp.RefreshHours)
	}
	if p.ApiParam.Enabled && (p.ApiParam.Port <= 0 || p.ApiParam.Port > 65535) {
		return fmt.Errorf("invalid api port %d", p.ApiParam.Port)
	}
	return nil
}

func (p *ServerParam) PoolApiUrl() string {
	if p.Endpoints.PoolApi != "" {
		return p.Endpoints.PoolApi
	}
	return monitor.PoolAPIURL(p.Miner.PoolAddress, p.Miner.PoolPort)
}

func (p *ServerParam) MonitorConfig() monitor.Config {
	return monitor.Config{
		GlobalHashURL:      p.Endpoints.GlobalHash,
		FeesURL:            p.Endpoints.Fees,
		BlockHeightURL:     p.Endpoints.BlockHeight,
		BtcPriceURL:        p.Endpoints.BtcPrice,
		PoolAPIURL:         p.PoolApiUrl(),
		Wallet:             p.Miner.Wallet,
		GlobalInterval:     time.Duration(p.Refresh.Global) * time.Minute,
		HeightInterval:     time.Duration(p.Refresh.Height) * time.Minute,
		PriceInterval:      time.Duration(p.Refresh.Price) * time.Minute,
		PoolInterval:       time.Duration(p.Refresh.Pool) * time.Minute,
		HTTPTimeout:        time.Duration(p.Fetch.HttpTimeoutSeconds) * time.Second,
		Yield:              time.Duration(p.Fetch.YieldMs) * time.Millisecond,
		MaxPayloadSize:     p.Fetch.MaxPayloadBytes,
		MemorySafetyMargin: p.Fetch.MemoryMarginBytes,
	}
}

func (p *ServerParam) NtpRefresh() time.Duration {
	return time.Duration(p.Ntp.RefreshHours) * time.Hour
}

func (p *ServerParam) DisplayOptions(simulation bool) display.Options {
	return display.Options{
		Simulation: simulation,
		I2CBus:     p.Display.I2cBus,
		LedPin:     p.Display.LedPin,
		Contrast:   p.Display.Contrast,
	}
}
