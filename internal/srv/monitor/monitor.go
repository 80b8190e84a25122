package monitor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jypelle/minerdeck/internal/clock"
	"github.com/jypelle/minerdeck/internal/tool"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/sirupsen/logrus"
)

type Config struct {
	GlobalHashURL  string
	FeesURL        string
	BlockHeightURL string
	BtcPriceURL    string
	PoolAPIURL     string
	Wallet         string

	GlobalInterval time.Duration
	HeightInterval time.Duration
	PriceInterval  time.Duration
	PoolInterval   time.Duration

	HTTPTimeout        time.Duration
	Yield              time.Duration
	MaxPayloadSize     int64
	MemorySafetyMargin uint64
}

func DefaultConfig() Config {
	return Config{
		GlobalHashURL:      "https://mempool.space/api/v1/mining/hashrate/3d",
		FeesURL:            "https://mempool.space/api/v1/fees/recommended",
		BlockHeightURL:     "https://mempool.space/api/blocks/tip/height",
		BtcPriceURL:        "https://api.coingecko.com/api/v3/simple/price?ids=bitcoin&vs_currencies=usd",
		PoolAPIURL:         PublicPoolAPIURL,
		GlobalInterval:     2 * time.Minute,
		HeightInterval:     2 * time.Minute,
		PriceInterval:      1 * time.Minute,
		PoolInterval:       1 * time.Minute,
		HTTPTimeout:        10 * time.Second,
		Yield:              100 * time.Millisecond,
		MaxPayloadSize:     64 * 1024,
		MemorySafetyMargin: 4 * 1024 * 1024,
	}
}

func (c Config) Validate() error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive, got %s", c.HTTPTimeout)
	}
	if c.MaxPayloadSize <= 0 {
		return fmt.Errorf("max payload size must be positive, got %d", c.MaxPayloadSize)
	}
	for name, raw := range map[string]string{
		"global hash": c.GlobalHashURL,
		"fees":        c.FeesURL,
		"height":      c.BlockHeightURL,
		"btc price":   c.BtcPriceURL,
		"pool api":    c.PoolAPIURL,
	} {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%s endpoint: %w", name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%s endpoint %q: unsupported scheme", name, raw)
		}
	}
	return nil
}

// Monitor answers the render loop with cached telemetry and schedules refreshes
// on the fetch worker. None of its getters block on the network.
type Monitor struct {
	config       Config
	clock        clock.Source
	cache        *Cache
	dispatcher   *Dispatcher
	connectivity Connectivity
	miner        MiningSource
	hashrate     *Estimator
	timeKeeper   *TimeKeeper
	temperature  func() string
	freeMemory   MemoryProbe

	timersLock  sync.Mutex
	globalTimer refreshTimer
	feesTimer   refreshTimer
	heightTimer refreshTimer
	priceTimer  refreshTimer
	poolTimer   refreshTimer

	sampleLock      sync.Mutex
	lastKHashes     uint32
	lastKHashesSeen bool

	startLock  sync.Mutex
	fetcher    *Fetcher
	asyncReady atomic.Bool
}

func NewMonitor(cfg Config, clk clock.Source, connectivity Connectivity, miner MiningSource, timeKeeper *TimeKeeper) *Monitor {
	return &Monitor{
		config:       cfg,
		clock:        clk,
		cache:        NewCache(),
		dispatcher:   NewDispatcher(clk),
		connectivity: connectivity,
		miner:        miner,
		hashrate:     NewEstimator(),
		timeKeeper:   timeKeeper,
		temperature:  SensorTemperature,
		freeMemory:   SystemFreeMemory,
		globalTimer:  newRefreshTimer(durationMillis(cfg.GlobalInterval)),
		feesTimer:    newRefreshTimer(durationMillis(cfg.GlobalInterval)),
		heightTimer:  newRefreshTimer(durationMillis(cfg.HeightInterval)),
		priceTimer:   newRefreshTimer(durationMillis(cfg.PriceInterval)),
		poolTimer:    newRefreshTimer(durationMillis(cfg.PoolInterval)),
	}
}

func durationMillis(d time.Duration) uint32 {
	ms := d.Milliseconds()
	if ms < 0 {
		return 0
	}
	if ms > int64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(ms)
}

// Start launches the fetch worker. Until it succeeds every getter only returns cached values.
func (m *Monitor) Start(ctx context.Context) error {
	m.startLock.Lock()
	defer m.startLock.Unlock()

	if m.fetcher != nil {
		return ErrAlreadyStarted
	}
	if err := m.config.Validate(); err != nil {
		return fmt.Errorf("async fetch disabled: %w", err)
	}

	m.fetcher = NewFetcher(m.dispatcher.Requests(), m.clock, m.cache, m.connectivity, m.config)
	m.fetcher.freeMemory = m.freeMemory
	go m.fetcher.Run(ctx)
	m.asyncReady.Store(true)

	logrus.Infof("Async fetch infrastructure initialized, pool api %s", m.config.PoolAPIURL)
	return nil
}

// Done is closed once the fetch worker exits; nil when it never started
func (m *Monitor) Done() <-chan struct{} {
	m.startLock.Lock()
	defer m.startLock.Unlock()
	if m.fetcher == nil {
		return nil
	}
	return m.fetcher.Done()
}

func (m *Monitor) Cache() *Cache {
	return m.cache
}

func (m *Monitor) Dispatcher() *Dispatcher {
	return m.dispatcher
}

func (m *Monitor) TimeKeeper() *TimeKeeper {
	return m.timeKeeper
}

func (m *Monitor) Connected() bool {
	return m.connectivity != nil && m.connectivity.Connected()
}

// refresh enqueues a request when the timer is due and the network is up.
// The timer only moves on a successful enqueue.
func (m *Monitor) refresh(t *refreshTimer, kind RequestKind, target string) {
	if !m.asyncReady.Load() {
		return
	}

	m.timersLock.Lock()
	defer m.timersLock.Unlock()

	now := m.clock.Millis()
	if !t.due(now) || !m.Connected() {
		return
	}

	err := m.dispatcher.TryEnqueue(kind, target)
	switch {
	case err == nil:
		t.advance(now)
	case errors.Is(err, ErrURLTooLong):
		if !t.urlErrSeen {
			logrus.Errorf("Check configuration: %v", err)
			t.urlErrSeen = true
		}
	}
}

func (m *Monitor) UpdateGlobalData() {
	m.refresh(&m.globalTimer, GLOBAL_HASHRATE_REQUEST, m.config.GlobalHashURL)
	m.refresh(&m.feesTimer, FEES_REQUEST, m.config.FeesURL)
}

func (m *Monitor) BlockHeight() string {
	m.refresh(&m.heightTimer, BLOCK_HEIGHT_REQUEST, m.config.BlockHeightURL)
	return m.cache.CurrentBlock()
}

func (m *Monitor) BTCPrice() string {
	m.refresh(&m.priceTimer, BTC_PRICE_REQUEST, m.config.BtcPriceURL)
	return "$" + strconv.FormatUint(uint64(m.cache.BitcoinPrice()), 10)
}

func (m *Monitor) PoolURL() string {
	return m.config.PoolAPIURL + tool.TrimWorkerSuffix(m.config.Wallet)
}

func (m *Monitor) PoolData() PoolData {
	m.refresh(&m.poolTimer, POOL_DATA_REQUEST, m.PoolURL())
	return m.cache.Pool()
}

func (m *Monitor) counters() MiningCounters {
	if m.miner == nil {
		return MiningCounters{}
	}
	return m.miner.Counters()
}

// currentHashRate feeds the estimator with the KHashes done since the previous call.
// The first call only records the baseline.
func (m *Monitor) currentHashRate(counters MiningCounters, elapsedMs uint32) string {
	m.sampleLock.Lock()
	var delta uint32
	if m.lastKHashesSeen {
		delta = counters.TotalKHashes - m.lastKHashes
	} else {
		elapsedMs = 0
	}
	m.lastKHashes = counters.TotalKHashes
	m.lastKHashesSeen = true
	m.sampleLock.Unlock()

	return m.hashrate.Sample(delta, elapsedMs)
}

func (m *Monitor) currentTime() string {
	if m.timeKeeper == nil {
		return "--:--"
	}
	return m.timeKeeper.Clock()
}

func (m *Monitor) currentDate() string {
	if m.timeKeeper == nil {
		return "--/--/----"
	}
	return m.timeKeeper.Date()
}

func (m *Monitor) MiningData(elapsedMs uint32) MiningData {
	c := m.counters()
	return MiningData{
		CompletedShares: c.Shares,
		TotalMHashes:    c.MHashes,
		TotalKHashes:    c.TotalKHashes,
		CurrentHashRate: m.currentHashRate(c, elapsedMs),
		Templates:       c.Templates,
		BestDiff:        SuffixString(c.BestDiff),
		TimeMining:      formatUptime(c.UpTime),
		Valids:          c.Valids,
		Temp:            m.temperature(),
		CurrentTime:     m.currentTime(),
	}
}

func (m *Monitor) ClockData(elapsedMs uint32) ClockData {
	c := m.counters()
	return ClockData{
		CompletedShares: c.Shares,
		TotalKHashes:    c.TotalKHashes,
		CurrentHashRate: m.currentHashRate(c, elapsedMs),
		BtcPrice:        m.BTCPrice(),
		BlockHeight:     m.BlockHeight(),
		CurrentTime:     m.currentTime(),
		CurrentDate:     m.currentDate(),
	}
}

func (m *Monitor) ClockDataT(elapsedMs uint32) ClockDataT {
	c := m.counters()
	data := ClockDataT{
		Valids:          c.Valids,
		CurrentHashRate: m.currentHashRate(c, elapsedMs),
	}
	if m.timeKeeper != nil {
		data.CurrentHours, data.CurrentMinutes, data.CurrentSeconds = m.timeKeeper.HMS()
	}
	return data
}

func (m *Monitor) CoinData(elapsedMs uint32) CoinData {
	m.UpdateGlobalData()

	c := m.counters()
	g := m.cache.Global()
	data := CoinData{
		CompletedShares:   c.Shares,
		TotalKHashes:      c.TotalKHashes,
		CurrentHashRate:   m.currentHashRate(c, elapsedMs),
		BtcPrice:          m.BTCPrice(),
		CurrentTime:       m.currentTime(),
		HalfHourFee:       strconv.Itoa(g.HalfHourFee) + " sat/vB",
		FastestFee:        strconv.Itoa(g.FastestFee),
		HourFee:           strconv.Itoa(g.HourFee),
		EconomyFee:        strconv.Itoa(g.EconomyFee),
		MinimumFee:        strconv.Itoa(g.MinimumFee),
		NetworkDifficulty: g.Difficulty,
		GlobalHashRate:    g.GlobalHash,
		BlockHeight:       m.BlockHeight(),
	}
	remaining, percent := halvingFromText(data.BlockHeight)
	data.ProgressPercent = percent
	data.RemainingBlocks = strconv.FormatUint(remaining, 10) + " BLOCKS"
	return data
}

// SensorTemperature returns the first host temperature sensor reading, "--" when none is readable
func SensorTemperature() string {
	sensors, err := host.SensorsTemperatures()
	if len(sensors) == 0 {
		if err != nil {
			logrus.Debugf("Temperature unavailable: %v", err)
		}
		return "--"
	}
	return strconv.FormatFloat(sensors[0].Temperature, 'f', 0, 64)
}
