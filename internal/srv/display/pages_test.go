package display

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/jypelle/minerdeck/internal/srv/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeData struct {
	calls []string
}

func (f *fakeData) MiningData(elapsedMs uint32) monitor.MiningData {
	f.calls = append(f.calls, "mining")
	return monitor.MiningData{CurrentHashRate: "55.20", CompletedShares: 3, Valids: 1, Templates: 9, BestDiff: "1.2K", Temp: "48", TimeMining: "0  01:00:00", CurrentTime: "12:34"}
}

func (f *fakeData) ClockData(elapsedMs uint32) monitor.ClockData {
	f.calls = append(f.calls, "clock")
	return monitor.ClockData{CurrentTime: "12:34", CurrentDate: "01/05/2024", BtcPrice: "$63000", BlockHeight: "842000"}
}

func (f *fakeData) ClockDataT(elapsedMs uint32) monitor.ClockDataT {
	f.calls = append(f.calls, "clockT")
	return monitor.ClockDataT{CurrentHours: 12, CurrentMinutes: 34, CurrentSeconds: 5}
}

func (f *fakeData) CoinData(elapsedMs uint32) monitor.CoinData {
	f.calls = append(f.calls, "coin")
	return monitor.CoinData{BlockHeight: "842000", RemainingBlocks: "40000 BLOCKS", ProgressPercent: 80}
}

func (f *fakeData) PoolData() monitor.PoolData {
	f.calls = append(f.calls, "pool")
	return monitor.PoolData{WorkersCount: 2, WorkersHash: "500K", BestDifficulty: "1.23M"}
}

func TestPages(t *testing.T) {
	data := &fakeData{}

	mining := MiningPage(data.MiningData(1000))
	assert.Equal(t, "MINING 12:34", mining.Title)
	assert.Contains(t, mining.Lines, "55.20 KH/s")
	assert.Contains(t, mining.Lines, "Sh 3 Val 1 Tpl 9")

	blocks := BlocksPage(data.CoinData(1000))
	assert.Equal(t, 80, blocks.Progress)
	assert.Contains(t, blocks.Lines, "40000 BLOCKS")

	pool := PoolPage(data.PoolData(), data.ClockDataT(1000))
	assert.Equal(t, "POOL 12:34:05", pool.Title)
	assert.Equal(t, "POOL 12:34:05 | Workers 2 | Hash 500K | Best 1.23M |  KH/s", pool.String())
}

func TestPageScreensOrder(t *testing.T) {
	data := &fakeData{}
	var titles []string
	screens := pageScreens(data, func(p Page) { titles = append(titles, p.Title) })
	require.Len(t, screens, 5)

	for _, screen := range screens {
		screen(1000)
	}
	assert.Equal(t, []string{"MINING 12:34", "12:34  01/05/2024", "NETWORK ", "HALVING", "POOL 12:34:05"}, titles)
	assert.Equal(t, []string{"mining", "clock", "coin", "coin", "pool", "clockT"}, data.calls)
}

func TestVirtualDriverFrame(t *testing.T) {
	driver := NewVirtualDriver(&fakeData{})
	require.NoError(t, driver.Init())
	driver.Screens()[0](1000)

	frame := driver.Frame()
	assert.Equal(t, VirtualWidth, frame.Bounds().Dx())
	assert.Equal(t, VirtualHeight, frame.Bounds().Dy())
	assert.True(t, hasLitPixel(frame.Pix))

	driver.AlternateScreenState()
	assert.False(t, driver.IsOn())
	assert.False(t, hasLitPixel(driver.Frame().Pix))
	driver.AlternateScreenState()

	raw, err := driver.FramePNG()
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, frame.Bounds(), decoded.Bounds())
}

func TestRotate180(t *testing.T) {
	img := newCanvas(4, 2)
	img.SetRGBA(0, 0, white)
	rotated := rotate180(img)
	assert.Equal(t, white, rotated.RGBAAt(3, 1))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, rotated.RGBAAt(0, 0))
}

func TestNewDriver(t *testing.T) {
	data := &fakeData{}
	for name, want := range map[string]string{
		NONE_DRIVER:    NONE_DRIVER,
		VIRTUAL_DRIVER: VIRTUAL_DRIVER,
		OLED_DRIVER:    VIRTUAL_DRIVER,
		DONGLE_DRIVER:  VIRTUAL_DRIVER,
	} {
		driver, err := NewDriver(name, data, Options{Simulation: true})
		require.NoError(t, err)
		assert.Equal(t, want, driver.Name())
	}

	_, err := NewDriver("lcd", data, Options{})
	assert.Error(t, err)
}

func hasLitPixel(pix []byte) bool {
	for i := 0; i < len(pix); i += 4 {
		if pix[i] != 0 {
			return true
		}
	}
	return false
}
