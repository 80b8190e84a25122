package monitor

import "sync"

const DefaultBlockHeight = "793261"

type GlobalData struct {
	GlobalHash  string
	Difficulty  string
	FastestFee  int
	HalfHourFee int
	HourFee     int
	EconomyFee  int
	MinimumFee  int
}

type PoolData struct {
	WorkersCount   int
	WorkersHash    string
	BestDifficulty string
}

// PoolDataHTTPError marks a confirmed pool fetch failure
var PoolDataHTTPError = PoolData{
	WorkersCount:   0,
	WorkersHash:    "E",
	BestDifficulty: "HTTP Err",
}

type CacheSnapshot struct {
	Global       GlobalData
	CurrentBlock string
	BitcoinPrice uint32
	Pool         PoolData
}

// Cache holds the last known value of every fetched item. Values are copied
// in and out under the lock, so a reader never sees a half written struct.
type Cache struct {
	lock         sync.RWMutex
	global       GlobalData
	currentBlock string
	bitcoinPrice uint32
	pool         PoolData
}

func NewCache() *Cache {
	return &Cache{
		global: GlobalData{
			GlobalHash: "--",
			Difficulty: "--",
		},
		currentBlock: DefaultBlockHeight,
		pool: PoolData{
			WorkersHash:    "--",
			BestDifficulty: "--",
		},
	}
}

func (c *Cache) Global() GlobalData {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.global
}

func (c *Cache) UpdateGlobal(update func(g *GlobalData)) {
	c.lock.Lock()
	defer c.lock.Unlock()
	next := c.global
	update(&next)
	c.global = next
}

func (c *Cache) CurrentBlock() string {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.currentBlock
}

func (c *Cache) SetCurrentBlock(block string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.currentBlock = block
}

func (c *Cache) BitcoinPrice() uint32 {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.bitcoinPrice
}

func (c *Cache) SetBitcoinPrice(price uint32) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.bitcoinPrice = price
}

func (c *Cache) Pool() PoolData {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.pool
}

func (c *Cache) UpdatePool(update func(p *PoolData)) {
	c.lock.Lock()
	defer c.lock.Unlock()
	next := c.pool
	update(&next)
	c.pool = next
}

func (c *Cache) SetPool(pool PoolData) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.pool = pool
}

func (c *Cache) Snapshot() CacheSnapshot {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return CacheSnapshot{
		Global:       c.global,
		CurrentBlock: c.currentBlock,
		BitcoinPrice: c.bitcoinPrice,
		Pool:         c.pool,
	}
}
