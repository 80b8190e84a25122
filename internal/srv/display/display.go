package display

import (
	"fmt"
	"sync"

	"github.com/jypelle/minerdeck/internal/clock"
	"github.com/sirupsen/logrus"
)

// MaxTimeoutMinutes is the longest inactivity timeout representable on the millisecond clock
const MaxTimeoutMinutes = uint32(^uint32(0) / (60 * 1000))

// Display owns the cyclic screen index and the screensaver state machine
// in front of one driver. State reads and writes share a single lock; driver
// calls are made after it is released.
type Display struct {
	driver Driver
	clock  clock.Source

	lock             sync.Mutex
	screens          []Screen
	current          int
	panelOn          bool
	active           bool
	lastActivity     uint32
	lastActiveScreen int
	timeoutMinutes   uint32
}

func New(driver Driver, clk clock.Source, timeoutMinutes uint32) *Display {
	return &Display{
		driver:         driver,
		clock:          clk,
		panelOn:        true,
		timeoutMinutes: timeoutMinutes,
	}
}

func (d *Display) Init() error {
	if err := d.driver.Init(); err != nil {
		return fmt.Errorf("unable to init %s display: %w", d.driver.Name(), err)
	}
	screens := d.driver.Screens()

	d.lock.Lock()
	d.screens = screens
	if d.current >= len(screens) {
		d.current = 0
	}
	d.panelOn = true
	d.active = false
	d.lastActivity = d.clock.Millis()
	d.lock.Unlock()

	logrus.Infof("Display %s ready with %d screens", d.driver.Name(), len(screens))
	return nil
}

func (d *Display) DriverName() string {
	return d.driver.Name()
}

// Close releases the driver hardware, if it holds any
func (d *Display) Close() error {
	if closer, ok := d.driver.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// CheckScreensaver enters the screensaver once the inactivity timeout has elapsed.
// It reports whether the transition happened in this call.
func (d *Display) CheckScreensaver() bool {
	d.lock.Lock()
	if d.timeoutMinutes == 0 || d.active {
		d.lock.Unlock()
		return false
	}
	timeout := d.timeoutMinutes
	if timeout > MaxTimeoutMinutes {
		timeout = MaxTimeoutMinutes
	}
	if clock.Since(d.clock.Millis(), d.lastActivity) < clock.MinutesToMillis(timeout) {
		d.lock.Unlock()
		return false
	}
	d.active = true
	d.lastActiveScreen = d.current
	blank := d.panelOn
	d.panelOn = false
	d.lock.Unlock()

	logrus.Infof("Screensaver on after %d minutes of inactivity", timeout)
	if blank {
		d.driver.AlternateScreenState()
	}
	return true
}

// Wake leaves the screensaver, restoring panel power and the saved screen
func (d *Display) Wake() bool {
	d.lock.Lock()
	if !d.active {
		d.lastActivity = d.clock.Millis()
		d.lock.Unlock()
		return false
	}
	restore := d.wake()
	d.lock.Unlock()

	logrus.Infof("Screensaver off")
	if restore {
		d.driver.AlternateScreenState()
	}
	return true
}

// wake must be called with the lock held and the screensaver active
func (d *Display) wake() (restorePanel bool) {
	d.active = false
	d.current = d.lastActiveScreen
	d.lastActivity = d.clock.Millis()
	restorePanel = !d.panelOn
	d.panelOn = true
	return restorePanel
}

// userAction runs action unless the screensaver is active, in which case the
// call only wakes the display
func (d *Display) userAction(action func()) {
	d.lock.Lock()
	if d.active {
		restore := d.wake()
		d.lock.Unlock()
		logrus.Infof("Screensaver off")
		if restore {
			d.driver.AlternateScreenState()
		}
		return
	}
	d.lastActivity = d.clock.Millis()
	action()
	d.lock.Unlock()
}

// AlternateScreenState toggles panel power
func (d *Display) AlternateScreenState() {
	toggle := false
	d.userAction(func() {
		d.panelOn = !d.panelOn
		toggle = true
	})
	if toggle {
		d.driver.AlternateScreenState()
	}
}

func (d *Display) AlternateScreenRotation() {
	rotate := false
	d.userAction(func() {
		rotate = true
	})
	if rotate {
		d.driver.AlternateScreenRotation()
	}
}

func (d *Display) NextScreen() {
	d.userAction(func() {
		if n := len(d.screens); n > 0 {
			d.current = (d.current + 1) % n
		}
	})
}

func (d *Display) PreviousScreen() {
	d.userAction(func() {
		if n := len(d.screens); n > 0 {
			d.current = (d.current - 1 + n) % n
		}
	})
}

// CycleScreen advances the screen without counting as user activity
func (d *Display) CycleScreen() {
	d.lock.Lock()
	defer d.lock.Unlock()
	if n := len(d.screens); n > 0 && !d.active {
		d.current = (d.current + 1) % n
	}
}

func (d *Display) ResetToFirstScreen() {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.current = 0
}

// SetCurrentScreen selects a screen by index; out of range indexes are ignored
func (d *Display) SetCurrentScreen(index int) bool {
	d.lock.Lock()
	defer d.lock.Unlock()
	if index < 0 || (d.screens != nil && index >= len(d.screens)) {
		return false
	}
	if d.active {
		d.lastActiveScreen = index
	} else {
		d.current = index
	}
	return true
}

// DrawCurrentScreen renders the screen at the current index. Nothing is drawn
// while the screensaver or a panel power off is in effect.
func (d *Display) DrawCurrentScreen(elapsedMs uint32) bool {
	d.lock.Lock()
	if d.active || !d.panelOn || d.current < 0 || d.current >= len(d.screens) {
		d.lock.Unlock()
		return false
	}
	screen := d.screens[d.current]
	d.lock.Unlock()

	screen(elapsedMs)
	return true
}

func (d *Display) Animate(frame uint64) {
	if d.ScreensaverActive() {
		return
	}
	d.driver.AnimateCurrentScreen(frame)
}

func (d *Display) DoLedEffects(frame uint64) {
	d.driver.DoLedEffects(frame)
}

func (d *Display) DrawLoadingScreen() {
	d.driver.LoadingScreen()
}

func (d *Display) DrawSetupScreen() {
	d.driver.SetupScreen()
}

func (d *Display) SetTimeoutMinutes(minutes uint32) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.timeoutMinutes = minutes
	d.lastActivity = d.clock.Millis()
}

func (d *Display) TimeoutMinutes() uint32 {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.timeoutMinutes
}

func (d *Display) ScreensaverActive() bool {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.active
}

func (d *Display) PanelOn() bool {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.panelOn
}

func (d *Display) CurrentScreen() int {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.current
}

func (d *Display) ScreenCount() int {
	d.lock.Lock()
	defer d.lock.Unlock()
	return len(d.screens)
}
