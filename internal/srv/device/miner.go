package device

import (
	"math/rand"
	"sync"
	"time"

	"github.com/jypelle/minerdeck/internal/srv/monitor"
	"github.com/sirupsen/logrus"
)

// Miner holds the latest counters of the mining engine. Counters are either
// pushed through the local api or generated in simulation mode.
type Miner struct {
	lock     sync.RWMutex
	counters monitor.MiningCounters

	simulation     bool
	simulatedKhs   float64
	khsRemainder   float64
	secondsToShare int

	ticker  *time.Ticker
	askDone chan bool
	done    chan bool
}

func NewMiner(simulation bool, simulatedKhs float64) *Miner {
	return &Miner{
		simulation:     simulation,
		simulatedKhs:   simulatedKhs,
		secondsToShare: 30,
		askDone:        make(chan bool),
		done:           make(chan bool),
	}
}

func (d *Miner) Counters() monitor.MiningCounters {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.counters
}

func (d *Miner) Set(counters monitor.MiningCounters) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.counters = counters
}

// step advances the simulated engine by one second
func (d *Miner) step(rnd *rand.Rand) {
	d.lock.Lock()
	defer d.lock.Unlock()

	khs := d.simulatedKhs * (0.9 + 0.2*rnd.Float64())
	d.khsRemainder += khs
	whole := uint32(d.khsRemainder)
	d.khsRemainder -= float64(whole)

	c := &d.counters
	c.TotalKHashes += whole
	c.MHashes = c.TotalKHashes / 1000
	c.Hashes = c.TotalKHashes * 1000
	c.UpTime++
	if c.UpTime%60 == 1 {
		c.Templates++
	}

	d.secondsToShare--
	if d.secondsToShare <= 0 {
		d.secondsToShare = 20 + rnd.Intn(40)
		c.Shares++
		diff := rnd.ExpFloat64() * 2000
		if diff > c.BestDiff {
			c.BestDiff = diff
		}
		if rnd.Intn(1000) == 0 {
			c.Valids++
		}
	}
}

func (d *Miner) Start() {
	if !d.simulation {
		return
	}
	logrus.Infof("Start simulated miner at %.0f KH/s", d.simulatedKhs)

	d.lock.Lock()
	d.ticker = time.NewTicker(time.Second)
	d.lock.Unlock()

	go func() {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for loop := true; loop; {
			select {
			case <-d.ticker.C:
				d.step(rnd)
			case <-d.askDone:
				loop = false
			}
		}
		d.done <- true
	}()
}

func (d *Miner) Stop() {
	if !d.simulation {
		return
	}
	logrus.Infof("Stop simulated miner")
	d.ticker.Stop()
	d.askDone <- true
	<-d.done
}
