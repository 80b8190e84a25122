package monitor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jypelle/minerdeck/internal/clock"
	"github.com/sirupsen/logrus"
)

// TimeQuery asks a network time server for the current time
type TimeQuery func(host string) (time.Time, error)

const timeSyncRetryMs = 60 * 1000

// TimeKeeper extrapolates wall clock time from the last network sync using the
// local millisecond counter. Syncs run in the background.
type TimeKeeper struct {
	host         string
	refreshMs    uint32
	offset       time.Duration
	clock        clock.Source
	connectivity Connectivity
	query        TimeQuery

	lock        sync.Mutex
	synced      bool
	syncMark    uint32
	epoch       int64
	attempted   bool
	attemptMark uint32

	syncing atomic.Bool
}

func NewTimeKeeper(host string, refresh time.Duration, timezoneHours int, clk clock.Source, connectivity Connectivity, query TimeQuery) *TimeKeeper {
	return &TimeKeeper{
		host:         host,
		refreshMs:    uint32(refresh.Milliseconds()),
		offset:       time.Duration(timezoneHours) * time.Hour,
		clock:        clk,
		connectivity: connectivity,
		query:        query,
	}
}

// Now returns the extrapolated local time; it never blocks on the network
func (t *TimeKeeper) Now() time.Time {
	now := t.clock.Millis()

	t.lock.Lock()
	needSync := !t.synced || clock.Since(now, t.syncMark) > t.refreshMs
	if needSync && t.attempted && clock.Since(now, t.attemptMark) < timeSyncRetryMs {
		needSync = false
	}
	elapsed := int64(clock.Since(now, t.syncMark) / 1000)
	current := t.epoch + elapsed
	t.lock.Unlock()

	if needSync {
		t.triggerSync()
	}
	return time.Unix(current, 0).UTC().Add(t.offset)
}

func (t *TimeKeeper) HMS() (hours, minutes, seconds int) {
	now := t.Now()
	return now.Hour(), now.Minute(), now.Second()
}

// Clock formats the time as HH:MM
func (t *TimeKeeper) Clock() string {
	h, m, _ := t.HMS()
	return fmt.Sprintf("%02d:%02d", h, m)
}

// Date formats the date as DD/MM/YYYY
func (t *TimeKeeper) Date() string {
	now := t.Now()
	return fmt.Sprintf("%02d/%02d/%04d", now.Day(), int(now.Month()), now.Year())
}

func (t *TimeKeeper) Synced() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.synced
}

func (t *TimeKeeper) triggerSync() {
	if t.query == nil || (t.connectivity != nil && !t.connectivity.Connected()) {
		return
	}
	if !t.syncing.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer t.syncing.Store(false)
		t.sync()
	}()
}

func (t *TimeKeeper) sync() {
	start := t.clock.Millis()
	remote, err := t.query(t.host)

	t.lock.Lock()
	defer t.lock.Unlock()
	t.attempted = true
	t.attemptMark = start
	if err != nil {
		logrus.Warnf("Network time sync with %s failed: %v", t.host, err)
		return
	}
	t.epoch = remote.Unix()
	t.syncMark = t.clock.Millis()
	t.synced = true
	logrus.Debugf("Network time synced with %s: %s", t.host, remote.UTC().Format(time.RFC3339))
}
