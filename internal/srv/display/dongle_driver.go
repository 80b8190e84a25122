package display

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

const shareFlashFrames = 6

// DongleDriver has no panel: a status LED shows activity and flashes on every new share
type DongleDriver struct {
	pinName string
	pin     gpio.PinIO

	lock         sync.Mutex
	enabled      bool
	lastShares   uint32
	sharesSeen   bool
	flashFrames  int
	ledLevel     gpio.Level
	ledLevelSeen bool

	screens []Screen
}

func NewDongleDriver(data DataSource, pinName string) *DongleDriver {
	d := &DongleDriver{
		pinName: pinName,
		enabled: true,
	}
	d.screens = []Screen{
		func(elapsedMs uint32) {
			m := data.MiningData(elapsedMs)
			d.recordShares(m.CompletedShares)
			logrus.Debugf("Screen: %s", MiningPage(m))
		},
	}
	return d
}

func (d *DongleDriver) Name() string {
	return DONGLE_DRIVER
}

func (d *DongleDriver) Init() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("unable to init periph host: %w", err)
	}
	pin := gpioreg.ByName(d.pinName)
	if pin == nil {
		return fmt.Errorf("failed to find %s led pin", d.pinName)
	}
	if err := pin.Out(gpio.Low); err != nil {
		return fmt.Errorf("failed to setup %s led pin: %w", d.pinName, err)
	}

	d.lock.Lock()
	d.pin = pin
	d.lock.Unlock()
	return nil
}

func (d *DongleDriver) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.setLed(gpio.Low)
	return nil
}

func (d *DongleDriver) recordShares(shares uint32) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.sharesSeen && shares != d.lastShares {
		d.flashFrames = shareFlashFrames
	}
	d.lastShares = shares
	d.sharesSeen = true
}

func (d *DongleDriver) LoadingScreen() {
	logrus.Infof("Loading...")
}

func (d *DongleDriver) SetupScreen() {
	logrus.Infof("Waiting for configuration")
}

// AlternateScreenState switches the led effects on or off
func (d *DongleDriver) AlternateScreenState() {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.enabled = !d.enabled
	if !d.enabled {
		d.setLed(gpio.Low)
	}
}

func (d *DongleDriver) AlternateScreenRotation() {}

func (d *DongleDriver) Screens() []Screen {
	return d.screens
}

func (d *DongleDriver) AnimateCurrentScreen(frame uint64) {}

// DoLedEffects blinks fast after a new share, otherwise pulses once every 20 frames
func (d *DongleDriver) DoLedEffects(frame uint64) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if !d.enabled {
		return
	}

	level := gpio.Low
	if d.flashFrames > 0 {
		d.flashFrames--
		level = gpio.Level(d.flashFrames%2 == 1)
	} else if frame%20 == 0 {
		level = gpio.High
	}
	d.setLed(level)
}

// setLed must be called with lock held
func (d *DongleDriver) setLed(level gpio.Level) {
	if d.pin == nil || (d.ledLevelSeen && d.ledLevel == level) {
		return
	}
	if err := d.pin.Out(level); err != nil {
		logrus.Warnf("Unable to drive %s led pin: %v", d.pinName, err)
		return
	}
	d.ledLevel = level
	d.ledLevelSeen = true
}
