//go:build window

package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowDriverWrapsVirtualPanel(t *testing.T) {
	driver, err := NewDriver(WINDOW_DRIVER, &fakeData{}, Options{})
	require.NoError(t, err)
	assert.Equal(t, WINDOW_DRIVER, driver.Name())
	require.Len(t, driver.Screens(), 5)

	// no window before Init, drawing still fills the frame buffer
	driver.Screens()[0](1000)
	window := driver.(*WindowDriver)
	assert.True(t, hasLitPixel(window.Frame().Pix))
	assert.Same(t, window.VirtualDriver, window.Virtual())
}
