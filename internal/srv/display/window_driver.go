//go:build window

package display

import (
	"sync"

	"gioui.org/app"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"github.com/sirupsen/logrus"
)

// WindowDriver shows the virtual panel in a desktop window
type WindowDriver struct {
	*VirtualDriver

	lock             sync.Mutex
	simulationWindow *app.Window
	screens          []Screen
}

func newWindowDriver(data DataSource) (Driver, error) {
	d := &WindowDriver{VirtualDriver: NewVirtualDriver(data)}
	for _, screen := range d.VirtualDriver.Screens() {
		screen := screen
		d.screens = append(d.screens, func(elapsedMs uint32) {
			screen(elapsedMs)
			d.invalidate()
		})
	}
	return d, nil
}

func (d *WindowDriver) Name() string {
	return WINDOW_DRIVER
}

func (d *WindowDriver) Init() error {
	if err := d.VirtualDriver.Init(); err != nil {
		return err
	}

	d.lock.Lock()
	d.simulationWindow = app.NewWindow(
		app.Title("minerdeck"),
		app.Size(unit.Px(2*VirtualWidth), unit.Px(2*VirtualHeight)),
		app.MinSize(unit.Px(VirtualWidth), unit.Px(VirtualHeight)))
	window := d.simulationWindow
	d.lock.Unlock()

	go func() {
		if err := d.gioloop(window); err != nil {
			logrus.Errorf("Display window closed: %v", err)
		}
	}()
	go app.Main()
	return nil
}

func (d *WindowDriver) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.simulationWindow != nil {
		d.simulationWindow.Close()
		d.simulationWindow = nil
	}
	return nil
}

func (d *WindowDriver) invalidate() {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.simulationWindow != nil {
		d.simulationWindow.Invalidate()
	}
}

func (d *WindowDriver) LoadingScreen() {
	d.VirtualDriver.LoadingScreen()
	d.invalidate()
}

func (d *WindowDriver) SetupScreen() {
	d.VirtualDriver.SetupScreen()
	d.invalidate()
}

func (d *WindowDriver) AlternateScreenState() {
	d.VirtualDriver.AlternateScreenState()
	d.invalidate()
}

func (d *WindowDriver) AlternateScreenRotation() {
	d.VirtualDriver.AlternateScreenRotation()
	d.invalidate()
}

func (d *WindowDriver) Screens() []Screen {
	return d.screens
}

func (d *WindowDriver) AnimateCurrentScreen(frame uint64) {
	d.VirtualDriver.AnimateCurrentScreen(frame)
	d.invalidate()
}

func (d *WindowDriver) gioloop(window *app.Window) error {
	var ops op.Ops
	for {
		e := <-window.Events()
		switch e := e.(type) {
		case system.DestroyEvent:
			return e.Err
		case system.FrameEvent:
			gtx := layout.NewContext(&ops, e)

			img := widget.Image{Src: paint.NewImageOp(d.Frame()), Fit: widget.Contain}
			img.Layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}
