package monitor

import (
	"errors"
	"strings"
	"testing"

	"github.com/jypelle/minerdeck/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryEnqueueDropsWhenFull(t *testing.T) {
	d := NewDispatcher(clock.NewManual(0))

	for i := 0; i < QueueCapacity; i++ {
		require.NoError(t, d.TryEnqueue(BTC_PRICE_REQUEST, "http://example.com/price"))
	}
	for i := 0; i < 5; i++ {
		err := d.TryEnqueue(BLOCK_HEIGHT_REQUEST, "http://example.com/height")
		assert.True(t, errors.Is(err, ErrQueueFull))
		assert.Equal(t, QueueCapacity, d.Len())
	}
	assert.Equal(t, QueueCapacity, d.Cap())

	<-d.Requests()
	assert.NoError(t, d.TryEnqueue(BLOCK_HEIGHT_REQUEST, "http://example.com/height"))
	assert.Equal(t, QueueCapacity, d.Len())
}

func TestTryEnqueueRejectsLongURL(t *testing.T) {
	d := NewDispatcher(clock.NewManual(0))

	err := d.TryEnqueue(POOL_DATA_REQUEST, "http://example.com/"+strings.Repeat("a", MaxURLLength))
	assert.True(t, errors.Is(err, ErrURLTooLong))
	assert.Equal(t, 0, d.Len())
}

func TestRequestCarriesURLByValue(t *testing.T) {
	clk := clock.NewManual(1234)
	d := NewDispatcher(clk)
	url := "https://mempool.space/api/blocks/tip/height"
	require.NoError(t, d.TryEnqueue(BLOCK_HEIGHT_REQUEST, url))

	req := <-d.Requests()
	assert.Equal(t, BLOCK_HEIGHT_REQUEST, req.Kind)
	assert.Equal(t, url, req.URL())
	assert.Equal(t, uint32(1234), req.EnqueuedAt)

	copied := req
	assert.Equal(t, req.URL(), copied.URL())
}

func TestRefreshTimerAcrossWrap(t *testing.T) {
	timer := newRefreshTimer(1000)
	assert.True(t, timer.due(5))

	timer.advance(^uint32(0) - 100)
	assert.False(t, timer.due(^uint32(0)))
	assert.False(t, timer.due(899))
	assert.True(t, timer.due(900))
}
