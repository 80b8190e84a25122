package display

import (
	"bytes"
	"image"
	"image/png"
	"sync"
)

const (
	VirtualWidth  = 320
	VirtualHeight = 170
)

// VirtualDriver renders into an in-memory panel, exposed as PNG by the local API
type VirtualDriver struct {
	lock    sync.RWMutex
	canvas  *image.RGBA
	on      bool
	rotated bool
	spinner int

	screens []Screen
}

var spinnerGlyphs = []string{"|", "/", "-", "\\"}

func NewVirtualDriver(data DataSource) *VirtualDriver {
	d := &VirtualDriver{
		canvas: newCanvas(VirtualWidth, VirtualHeight),
		on:     true,
	}
	d.screens = pageScreens(data, d.show)
	return d
}

// Virtual gives access to the frame buffer, also through drivers embedding it
func (d *VirtualDriver) Virtual() *VirtualDriver {
	return d
}

func (d *VirtualDriver) Name() string {
	return VIRTUAL_DRIVER
}

func (d *VirtualDriver) Init() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	clearCanvas(d.canvas)
	return nil
}

func (d *VirtualDriver) show(page Page) {
	d.lock.Lock()
	defer d.lock.Unlock()
	drawPage(d.canvas, page)
}

func (d *VirtualDriver) LoadingScreen() {
	d.show(Page{Title: "minerdeck", Lines: []string{"", "Loading..."}, Progress: -1})
}

func (d *VirtualDriver) SetupScreen() {
	d.show(Page{Title: "minerdeck", Lines: []string{"", "Setup required", "Check param.yaml"}, Progress: -1})
}

func (d *VirtualDriver) AlternateScreenState() {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.on = !d.on
}

func (d *VirtualDriver) AlternateScreenRotation() {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.rotated = !d.rotated
}

func (d *VirtualDriver) Screens() []Screen {
	return d.screens
}

func (d *VirtualDriver) AnimateCurrentScreen(frame uint64) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.spinner = int(frame % uint64(len(spinnerGlyphs)))
}

func (d *VirtualDriver) DoLedEffects(frame uint64) {}

func (d *VirtualDriver) IsOn() bool {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.on
}

// Frame returns a copy of what the panel currently shows; black while off
func (d *VirtualDriver) Frame() *image.RGBA {
	d.lock.RLock()
	defer d.lock.RUnlock()

	if !d.on {
		return newCanvas(VirtualWidth, VirtualHeight)
	}
	frame := image.NewRGBA(d.canvas.Bounds())
	copy(frame.Pix, d.canvas.Pix)
	addLabel(frame, VirtualWidth-glyphWidth, baseline, spinnerGlyphs[d.spinner])
	if d.rotated {
		return rotate180(frame)
	}
	return frame
}

func (d *VirtualDriver) FramePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, d.Frame()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
