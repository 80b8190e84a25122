package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessGlobalHashrate(t *testing.T) {
	cache := NewCache()
	payload := []byte(`{"hashrates":[],"currentHashrate":4.5123e20,"currentDifficulty":6.7957e13}`)
	require.NoError(t, processGlobalHashrate(cache, payload))

	g := cache.Global()
	assert.Equal(t, "451", g.GlobalHash)
	assert.Equal(t, "67.95T", g.Difficulty)
}

func TestProcessFeesKeepsMissingFields(t *testing.T) {
	cache := NewCache()
	require.NoError(t, processFees(cache, []byte(`{"fastestFee":21,"halfHourFee":15,"hourFee":10,"economyFee":5,"minimumFee":2}`)))
	require.NoError(t, processFees(cache, []byte(`{"fastestFee":30}`)))

	g := cache.Global()
	assert.Equal(t, 30, g.FastestFee)
	assert.Equal(t, 15, g.HalfHourFee)
	assert.Equal(t, 2, g.MinimumFee)
}

func TestProcessBlockHeight(t *testing.T) {
	cache := NewCache()
	assert.Equal(t, DefaultBlockHeight, cache.CurrentBlock())

	require.NoError(t, processBlockHeight(cache, []byte("840123\n")))
	assert.Equal(t, "840123", cache.CurrentBlock())

	assert.Error(t, processBlockHeight(cache, []byte("   ")))
	assert.Error(t, processBlockHeight(cache, []byte("<html>")))
	assert.Equal(t, "840123", cache.CurrentBlock())
}

func TestMalformedBTCPriceKeepsPreviousValue(t *testing.T) {
	cache := NewCache()
	require.NoError(t, processBTCPrice(cache, []byte(`{"bitcoin":{"usd":64321.7}}`)))
	require.Equal(t, uint32(64321), cache.BitcoinPrice())

	assert.Error(t, processBTCPrice(cache, []byte(`{"bitcoin":{"usd":`)))
	assert.Equal(t, uint32(64321), cache.BitcoinPrice())

	assert.NoError(t, processBTCPrice(cache, []byte(`{"ethereum":{"usd":3000}}`)))
	assert.Equal(t, uint32(64321), cache.BitcoinPrice())
}

func TestProcessPoolData(t *testing.T) {
	cache := NewCache()
	payload := []byte(`{
		"bestDifficulty": "1234567",
		"workersCount": 2,
		"workers": [
			{"sessionId": "a", "hashRate": "350000"},
			{"sessionId": "b", "hashRate": 150000}
		]
	}`)
	require.NoError(t, processPoolData(cache, payload))

	assert.Equal(t, PoolData{WorkersCount: 2, WorkersHash: "500K", BestDifficulty: "1.23M"}, cache.Pool())
}

func TestSuffixString(t *testing.T) {
	assert.Equal(t, "0", SuffixString(-3))
	assert.Equal(t, "999", SuffixString(999.9))
	assert.Equal(t, "1.5K", SuffixString(1500))
	assert.Equal(t, "2.5G", SuffixString(2.5e9))
	assert.Equal(t, "12E", SuffixString(1.2e19))
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "0  00:00:00", formatUptime(0))
	assert.Equal(t, "1  01:01:01", formatUptime(86400+3600+61))
}

func TestHalving(t *testing.T) {
	remaining, percent := Halving(700000)
	assert.Equal(t, uint64(140000), remaining)
	assert.Equal(t, uint64(33), percent)

	remaining, percent = Halving(840000)
	assert.Equal(t, uint64(210000), remaining)
	assert.Equal(t, uint64(0), percent)

	remaining, _ = halvingFromText("garbage")
	assert.Equal(t, uint64(210000), remaining)
}
