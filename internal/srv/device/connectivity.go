package device

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-ping/ping"
	"github.com/sirupsen/logrus"
)

// AlwaysConnected is used on hosts where ICMP is not permitted
type AlwaysConnected struct{}

func (AlwaysConnected) Connected() bool {
	return true
}

// ProbeFunc reports whether host answered
type ProbeFunc func(host string) (bool, time.Duration, error)

// PingProbe sends a single echo request to host
func PingProbe(privileged bool, timeout time.Duration) ProbeFunc {
	return func(host string) (bool, time.Duration, error) {
		pinger, err := ping.NewPinger(host)
		if err != nil {
			return false, 0, err
		}
		pinger.Count = 1
		pinger.Timeout = timeout
		pinger.SetPrivileged(privileged)
		if err = pinger.Run(); err != nil {
			return false, 0, err
		}
		stats := pinger.Statistics()
		return stats.PacketsRecv > 0, stats.AvgRtt, nil
	}
}

// NetProbe periodically checks the network and keeps the result in an atomic
// flag, so Connected never blocks the render loop.
type NetProbe struct {
	lock      sync.Mutex
	host      string
	interval  time.Duration
	probe     ProbeFunc
	connected atomic.Bool

	ticker  *time.Ticker
	askDone chan bool
	done    chan bool
}

func NewNetProbe(host string, interval time.Duration, probe ProbeFunc) *NetProbe {
	return &NetProbe{
		host:     host,
		interval: interval,
		probe:    probe,
		askDone:  make(chan bool),
		done:     make(chan bool),
	}
}

func (d *NetProbe) Connected() bool {
	return d.connected.Load()
}

func (d *NetProbe) check() {
	ok, rtt, err := d.probe(d.host)
	if err != nil {
		logrus.Debugf("Connectivity probe of %s failed: %v", d.host, err)
	}
	if previous := d.connected.Swap(ok); previous != ok {
		if ok {
			logrus.Infof("Network reachable (%s answered in %s)", d.host, rtt)
		} else {
			logrus.Warnf("Network unreachable (%s)", d.host)
		}
	}
}

func (d *NetProbe) Start() {
	logrus.Infof("Start connectivity probe on %s", d.host)
	d.lock.Lock()
	defer d.lock.Unlock()

	d.ticker = time.NewTicker(d.interval)
	go func() {
		d.check()
		for loop := true; loop; {
			select {
			case <-d.ticker.C:
				d.check()
			case <-d.askDone:
				loop = false
			}
		}
		d.done <- true
	}()
}

func (d *NetProbe) Stop() {
	logrus.Infof("Stop connectivity probe")
	d.lock.Lock()
	defer d.lock.Unlock()

	d.ticker.Stop()
	d.askDone <- true
	<-d.done
}
