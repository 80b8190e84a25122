// Package clock provides the wrapping millisecond counter used for refresh
// timers and inactivity tracking. Differences must be computed with unsigned
// subtraction so they stay correct when the counter wraps (about every 49.7 days).
package clock

import (
	"sync/atomic"
	"time"
)

type Source interface {
	Millis() uint32
}

type System struct {
	start time.Time
}

func NewSystem() *System {
	return &System{start: time.Now()}
}

func (s *System) Millis() uint32 {
	return uint32(time.Since(s.start).Milliseconds())
}

// Since returns now-mark in milliseconds, wrap safe
func Since(now, mark uint32) uint32 {
	return now - mark
}

// MinutesToMillis converts minutes, saturating at the largest uint32 value
func MinutesToMillis(minutes uint32) uint32 {
	const perMinute = 60 * 1000
	if minutes > ^uint32(0)/perMinute {
		return ^uint32(0)
	}
	return minutes * perMinute
}

// Manual is a Source driven by hand, used by tests and replay tooling
type Manual struct {
	now atomic.Uint32
}

func NewManual(start uint32) *Manual {
	m := &Manual{}
	m.now.Store(start)
	return m
}

func (m *Manual) Millis() uint32 {
	return m.now.Load()
}

func (m *Manual) Set(now uint32) {
	m.now.Store(now)
}

func (m *Manual) Advance(delta uint32) {
	m.now.Add(delta)
}
