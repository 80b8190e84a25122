package monitor

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jypelle/minerdeck/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(cache *Cache, connectivity Connectivity) *Fetcher {
	f := NewFetcher(nil, clock.NewManual(0), cache, connectivity, testConfig("http://unused"))
	f.freeMemory = plentyOfMemory
	return f
}

func mustRequest(t *testing.T, kind RequestKind, url string) Request {
	req, err := NewRequest(kind, url, 0)
	require.NoError(t, err)
	return req
}

func TestPoolNotFoundSetsSentinel(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	cache := NewCache()
	cache.SetPool(PoolData{WorkersCount: 3, WorkersHash: "1.2M", BestDifficulty: "5K"})
	f := newTestFetcher(cache, newFakeConnectivity(true))

	assert.True(t, f.Fetch(mustRequest(t, POOL_DATA_REQUEST, server.URL+"/api/client/bc1q")))
	pool := cache.Pool()
	assert.Equal(t, "HTTP Err", pool.BestDifficulty)
	assert.Equal(t, "E", pool.WorkersHash)
	assert.Equal(t, 0, pool.WorkersCount)
}

func TestHTTPErrorLeavesOtherKindsUnchanged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cache := NewCache()
	cache.SetBitcoinPrice(50000)
	f := newTestFetcher(cache, newFakeConnectivity(true))

	f.Fetch(mustRequest(t, BTC_PRICE_REQUEST, server.URL))
	assert.Equal(t, uint32(50000), cache.BitcoinPrice())
	assert.Equal(t, "--", cache.Pool().BestDifficulty)
}

func TestMalformedBTCPriceResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bitcoin": {"usd": "oops`))
	}))
	defer server.Close()

	cache := NewCache()
	cache.SetBitcoinPrice(61234)
	f := newTestFetcher(cache, newFakeConnectivity(true))

	assert.True(t, f.Fetch(mustRequest(t, BTC_PRICE_REQUEST, server.URL)))
	assert.Equal(t, uint32(61234), cache.BitcoinPrice())
}

func TestFetchSendsHeaders(t *testing.T) {
	headers := make(chan http.Header, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		w.Write([]byte("812345"))
	}))
	defer server.Close()

	cache := NewCache()
	f := newTestFetcher(cache, newFakeConnectivity(true))
	f.Fetch(mustRequest(t, BLOCK_HEIGHT_REQUEST, server.URL))

	assert.Equal(t, "812345", cache.CurrentBlock())
	h := <-headers
	assert.Equal(t, "application/json", h.Get("Accept"))
	assert.True(t, strings.HasPrefix(h.Get("User-Agent"), "minerdeck/"))
}

func TestFetchSkippedWhenOffline(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("812345"))
	}))
	defer server.Close()

	cache := NewCache()
	f := newTestFetcher(cache, newFakeConnectivity(false))

	assert.False(t, f.Fetch(mustRequest(t, BLOCK_HEIGHT_REQUEST, server.URL)))
	assert.Equal(t, int32(0), hits.Load())
	assert.Equal(t, DefaultBlockHeight, cache.CurrentBlock())
}

func TestOversizedPayloadDropped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("9", 2048)))
	}))
	defer server.Close()

	cache := NewCache()
	f := newTestFetcher(cache, newFakeConnectivity(true))
	f.maxPayload = 1024

	_, err := f.get(server.URL)
	assert.True(t, errors.Is(err, ErrPayloadTooLarge))

	f.Fetch(mustRequest(t, POOL_DATA_REQUEST, server.URL))
	assert.Equal(t, "--", cache.Pool().BestDifficulty)
}

func TestLowMemoryDropsFetch(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("812345"))
	}))
	defer server.Close()

	cache := NewCache()
	f := newTestFetcher(cache, newFakeConnectivity(true))
	f.freeMemory = func() (uint64, error) { return 1024, nil }

	_, err := f.get(server.URL)
	assert.True(t, errors.Is(err, ErrLowMemory))
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, DefaultBlockHeight, cache.CurrentBlock())
}
