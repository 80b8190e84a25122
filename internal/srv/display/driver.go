package display

import (
	"fmt"

	"github.com/jypelle/minerdeck/internal/srv/monitor"
	"github.com/sirupsen/logrus"
)

// Screen draws one cyclic page; elapsedMs is the time since the previous draw
type Screen func(elapsedMs uint32)

// Driver is one display hardware variant
type Driver interface {
	Name() string
	Init() error
	LoadingScreen()
	SetupScreen()
	AlternateScreenState()
	AlternateScreenRotation()
	Screens() []Screen
	AnimateCurrentScreen(frame uint64)
	DoLedEffects(frame uint64)
}

// DataSource provides the values shown on screens. It never blocks.
type DataSource interface {
	MiningData(elapsedMs uint32) monitor.MiningData
	ClockData(elapsedMs uint32) monitor.ClockData
	ClockDataT(elapsedMs uint32) monitor.ClockDataT
	CoinData(elapsedMs uint32) monitor.CoinData
	PoolData() monitor.PoolData
}

const (
	NONE_DRIVER    = "none"
	OLED_DRIVER    = "oled"
	DONGLE_DRIVER  = "dongle"
	VIRTUAL_DRIVER = "virtual"
	WINDOW_DRIVER  = "window"
)

type Options struct {
	Simulation bool
	I2CBus     string
	LedPin     string
	Contrast   byte
}

// NewDriver picks the driver variant by name. Hardware variants fall back to
// the virtual panel in simulation mode.
func NewDriver(name string, data DataSource, opts Options) (Driver, error) {
	switch name {
	case NONE_DRIVER:
		return NewNoneDriver(data), nil
	case VIRTUAL_DRIVER:
		return NewVirtualDriver(data), nil
	case WINDOW_DRIVER:
		return newWindowDriver(data)
	case OLED_DRIVER:
		if opts.Simulation {
			logrus.Infof("Simulation mode: %s display replaced by %s", name, VIRTUAL_DRIVER)
			return NewVirtualDriver(data), nil
		}
		return NewOledDriver(data, opts.I2CBus, opts.Contrast), nil
	case DONGLE_DRIVER:
		if opts.Simulation {
			logrus.Infof("Simulation mode: %s display replaced by %s", name, VIRTUAL_DRIVER)
			return NewVirtualDriver(data), nil
		}
		return NewDongleDriver(data, opts.LedPin), nil
	default:
		return nil, fmt.Errorf("unknown display driver %q", name)
	}
}
