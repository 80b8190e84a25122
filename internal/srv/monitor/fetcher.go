package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jypelle/minerdeck/internal/clock"
	"github.com/jypelle/minerdeck/internal/version"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"
)

// MemoryProbe reports the free memory available to materialize a payload
type MemoryProbe func() (uint64, error)

func SystemFreeMemory() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.Available, nil
}

// Fetcher is the single background worker draining the dispatcher queue.
// Only one request is in flight at any time.
type Fetcher struct {
	requests     <-chan Request
	clock        clock.Source
	cache        *Cache
	client       *http.Client
	connectivity Connectivity
	freeMemory   MemoryProbe
	maxPayload   int64
	memoryMargin uint64
	yield        time.Duration

	done chan struct{}
}

func NewFetcher(requests <-chan Request, clk clock.Source, cache *Cache, connectivity Connectivity, cfg Config) *Fetcher {
	return &Fetcher{
		requests:     requests,
		clock:        clk,
		cache:        cache,
		client:       &http.Client{Timeout: cfg.HTTPTimeout},
		connectivity: connectivity,
		freeMemory:   SystemFreeMemory,
		maxPayload:   cfg.MaxPayloadSize,
		memoryMargin: cfg.MemorySafetyMargin,
		yield:        cfg.Yield,
		done:         make(chan struct{}),
	}
}

// Run parks on the queue until a request arrives or ctx is done
func (f *Fetcher) Run(ctx context.Context) {
	defer close(f.done)
	logrus.Infof("Fetch worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Infof("Fetch worker stopped")
			return
		case req := <-f.requests:
			if !f.Fetch(req) {
				continue
			}
			select {
			case <-ctx.Done():
				logrus.Infof("Fetch worker stopped")
				return
			case <-time.After(f.yield):
			}
		}
	}
}

// Done is closed once Run returns
func (f *Fetcher) Done() <-chan struct{} {
	return f.done
}

// Fetch performs one request and routes the result. It reports whether a network round trip was made.
func (f *Fetcher) Fetch(req Request) bool {
	if f.connectivity != nil && !f.connectivity.Connected() {
		logrus.Infof("%s request skipped: not connected", req.Kind)
		return false
	}

	payload, err := f.get(req.URL())
	switch {
	case err == nil:
	case errors.Is(err, ErrLowMemory), errors.Is(err, ErrPayloadTooLarge):
		logrus.Warnf("%s fetch dropped: %v", req.Kind, err)
		return true
	default:
		logrus.Warnf("%s fetch failed: %v", req.Kind, err)
		if req.Kind == POOL_DATA_REQUEST {
			f.cache.SetPool(PoolDataHTTPError)
		}
		return true
	}

	process, ok := processors[req.Kind]
	if !ok {
		logrus.Errorf("No processor for %s", req.Kind)
		return true
	}
	if err := process(f.cache, payload); err != nil {
		logrus.Warnf("Unable to process %s payload: %v", req.Kind, err)
		return true
	}
	logrus.Debugf("%s updated (%d bytes, queued %d ms ago)", req.Kind, len(payload), clock.Since(f.clock.Millis(), req.EnqueuedAt))
	return true
}

func (f *Fetcher) get(url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.AppVersion.UserAgent())

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}

	size := resp.ContentLength
	if size > f.maxPayload {
		return nil, fmt.Errorf("%w: %d bytes announced, limit %d", ErrPayloadTooLarge, size, f.maxPayload)
	}
	if size < 0 {
		size = f.maxPayload
	}
	if err := f.checkMemory(uint64(size)); err != nil {
		return nil, err
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, f.maxPayload+1))
	if err != nil {
		return nil, err
	}
	if int64(len(payload)) > f.maxPayload {
		return nil, fmt.Errorf("%w: limit %d", ErrPayloadTooLarge, f.maxPayload)
	}
	return payload, nil
}

func (f *Fetcher) checkMemory(size uint64) error {
	if f.freeMemory == nil {
		return nil
	}
	free, err := f.freeMemory()
	if err != nil {
		logrus.Debugf("Free memory unknown, fetching anyway: %v", err)
		return nil
	}
	if free <= size+f.memoryMargin {
		return fmt.Errorf("%w: %d free, %d needed", ErrLowMemory, free, size+f.memoryMargin)
	}
	return nil
}
