package monitor

import (
	"strconv"
	"sync"
)

type HashrateScale int

const (
	HASHRATE_SCALE_99KH HashrateScale = iota
	HASHRATE_SCALE_999KH
	HASHRATE_SCALE_9MH
)

const (
	hashrateWindowSize = 10
	hashrateSkipFirst  = 3
)

// Estimator smooths instantaneous hashrate samples (KH/s) over a short window
// and picks a display precision that only ever grows, so the unit width does not flicker.
type Estimator struct {
	lock      sync.Mutex
	samples   []float64
	sum       float64
	recalc    uint8
	skipFirst int
	top       float64
	scale     HashrateScale
}

func NewEstimator() *Estimator {
	return &Estimator{
		samples:   make([]float64, 0, hashrateWindowSize+1),
		skipFirst: hashrateSkipFirst,
		scale:     HASHRATE_SCALE_99KH,
	}
}

// Add records kiloHashes computed over elapsedMs and returns the window average.
// A zero elapsed time adds no sample and leaves the scale untouched.
func (e *Estimator) Add(kiloHashes uint32, elapsedMs uint32) float64 {
	e.lock.Lock()
	defer e.lock.Unlock()

	if elapsedMs == 0 {
		return e.average()
	}
	e.push(float64(kiloHashes) * 1000.0 / float64(elapsedMs))

	avg := e.average()
	if e.skipFirst > 0 {
		e.skipFirst--
	} else if avg > e.top {
		e.top = avg
		if avg > 999.9 {
			e.scale = HASHRATE_SCALE_9MH
		} else if avg > 99.9 && e.scale < HASHRATE_SCALE_999KH {
			e.scale = HASHRATE_SCALE_999KH
		}
	}
	return avg
}

// Sample is Add followed by formatting with the current scale
func (e *Estimator) Sample(kiloHashes uint32, elapsedMs uint32) string {
	avg := e.Add(kiloHashes, elapsedMs)
	return FormatHashrate(avg, e.Scale())
}

func (e *Estimator) Scale() HashrateScale {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.scale
}

func (e *Estimator) push(hashrate float64) {
	e.sum += hashrate
	e.samples = append(e.samples, hashrate)
	if len(e.samples) > hashrateWindowSize {
		e.sum -= e.samples[0]
		e.samples = append(e.samples[:0], e.samples[1:]...)
	}

	// resync the running sum on wrap to bound float drift
	e.recalc++
	if e.recalc == 0 {
		e.sum = 0
		for _, s := range e.samples {
			e.sum += s
		}
	}
}

func (e *Estimator) average() float64 {
	if len(e.samples) == 0 {
		return 0
	}
	avg := e.sum / float64(len(e.samples))
	if avg < 0 {
		return 0
	}
	return avg
}

func FormatHashrate(hashrate float64, scale HashrateScale) string {
	switch scale {
	case HASHRATE_SCALE_99KH:
		return strconv.FormatFloat(hashrate, 'f', 2, 64)
	case HASHRATE_SCALE_999KH:
		return strconv.FormatFloat(hashrate, 'f', 1, 64)
	default:
		return strconv.Itoa(int(hashrate))
	}
}
