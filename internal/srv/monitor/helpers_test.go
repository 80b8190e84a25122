package monitor

import (
	"sync/atomic"
	"time"

	"github.com/jypelle/minerdeck/internal/clock"
)

type fakeConnectivity struct {
	up atomic.Bool
}

func newFakeConnectivity(up bool) *fakeConnectivity {
	c := &fakeConnectivity{}
	c.up.Store(up)
	return c
}

func (c *fakeConnectivity) Connected() bool {
	return c.up.Load()
}

type fakeMiner struct {
	counters MiningCounters
}

func (m *fakeMiner) Counters() MiningCounters {
	return m.counters
}

func testConfig(base string) Config {
	cfg := DefaultConfig()
	cfg.GlobalHashURL = base + "/hashrate"
	cfg.FeesURL = base + "/fees"
	cfg.BlockHeightURL = base + "/height"
	cfg.BtcPriceURL = base + "/price"
	cfg.PoolAPIURL = base + "/pool/"
	cfg.Wallet = "bc1qtestwallet.worker1"
	cfg.HTTPTimeout = 2 * time.Second
	cfg.Yield = time.Millisecond
	return cfg
}

// newTestMonitor returns a monitor that accepts refreshes without a running fetch worker
func newTestMonitor(cfg Config, clk clock.Source, connectivity Connectivity) *Monitor {
	m := NewMonitor(cfg, clk, connectivity, &fakeMiner{}, nil)
	m.temperature = func() string { return "42" }
	m.asyncReady.Store(true)
	return m
}

func plentyOfMemory() (uint64, error) {
	return 1 << 32, nil
}
