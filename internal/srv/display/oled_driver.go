package display

import (
	"fmt"
	"image"
	"sync"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"
)

const (
	OledWidth  = 128
	OledHeight = 64
)

// OledDriver drives a SSD1306 panel on I²C. Frames are pushed to the bus
// by a dedicated goroutine so a slow bus never stalls the render loop.
type OledDriver struct {
	busName  string
	contrast byte

	oledLock    sync.Mutex
	oledDisplay *ssd1306.Dev
	i2cBus      i2c.BusCloser

	lock      sync.Mutex
	canvas    *image.RGBA
	on        bool
	rotated   bool
	heartbeat bool

	screens []Screen

	askImg  chan *image.RGBA
	askDone chan bool
	done    chan bool
}

func NewOledDriver(data DataSource, busName string, contrast byte) *OledDriver {
	d := &OledDriver{
		busName:  busName,
		contrast: contrast,
		canvas:   newCanvas(OledWidth, OledHeight),
		on:       true,
		askImg:   make(chan *image.RGBA, 1),
		askDone:  make(chan bool),
		done:     make(chan bool),
	}
	d.screens = pageScreens(data, d.show)
	return d
}

func (d *OledDriver) Name() string {
	return OLED_DRIVER
}

func (d *OledDriver) Init() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("unable to init periph host: %w", err)
	}

	// An empty name opens the first available bus
	bus, err := i2creg.Open(d.busName)
	if err != nil {
		return fmt.Errorf("unable to open i2c bus: %w", err)
	}
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return fmt.Errorf("unable to initialize oled display: %w", err)
	}
	dev.SetContrast(d.contrast)

	d.oledLock.Lock()
	d.i2cBus = bus
	d.oledDisplay = dev
	d.oledLock.Unlock()

	go func() {
		for loop := true; loop; {
			select {
			case <-d.askDone:
				loop = false
			case img := <-d.askImg:
				d.oledLock.Lock()
				if err := d.oledDisplay.Draw(d.oledDisplay.Bounds(), img, image.Point{}); err != nil {
					logrus.Warnf("Unable to draw on oled display: %v", err)
				}
				d.oledLock.Unlock()
			}
		}
		d.oledLock.Lock()
		d.oledDisplay.Halt()
		d.i2cBus.Close()
		d.oledLock.Unlock()
		d.done <- true
	}()
	return nil
}

func (d *OledDriver) Close() error {
	d.oledLock.Lock()
	started := d.oledDisplay != nil
	d.oledLock.Unlock()
	if !started {
		return nil
	}
	d.askDone <- true
	<-d.done
	return nil
}

// push must be called with lock held
func (d *OledDriver) push() {
	if !d.on {
		return
	}
	frame := image.NewRGBA(d.canvas.Bounds())
	copy(frame.Pix, d.canvas.Pix)
	if d.heartbeat {
		frame.SetRGBA(OledWidth-1, 0, white)
		frame.SetRGBA(OledWidth-2, 0, white)
	}
	if d.rotated {
		frame = rotate180(frame)
	}

	// replace a frame the bus goroutine has not picked up yet
	select {
	case <-d.askImg:
	default:
	}
	select {
	case d.askImg <- frame:
	default:
	}
}

func (d *OledDriver) show(page Page) {
	d.lock.Lock()
	defer d.lock.Unlock()
	drawPage(d.canvas, page)
	d.push()
}

func (d *OledDriver) LoadingScreen() {
	d.show(Page{Title: "minerdeck", Lines: []string{"", "Loading..."}, Progress: -1})
}

func (d *OledDriver) SetupScreen() {
	d.show(Page{Title: "minerdeck", Lines: []string{"Setup required", "Check param.yaml"}, Progress: -1})
}

func (d *OledDriver) AlternateScreenState() {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.on = !d.on
	d.oledLock.Lock()
	if d.oledDisplay != nil {
		if d.on {
			// any command after Halt powers the panel back on
			d.oledDisplay.SetContrast(d.contrast)
		} else {
			d.oledDisplay.Halt()
		}
	}
	d.oledLock.Unlock()
	d.push()
}

func (d *OledDriver) AlternateScreenRotation() {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.rotated = !d.rotated
	d.push()
}

func (d *OledDriver) Screens() []Screen {
	return d.screens
}

// AnimateCurrentScreen blinks a heartbeat pixel once per 10 frames
func (d *OledDriver) AnimateCurrentScreen(frame uint64) {
	if frame%10 != 0 {
		return
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	d.heartbeat = !d.heartbeat
	d.push()
}

func (d *OledDriver) DoLedEffects(frame uint64) {}
