package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSinceAcrossWrap(t *testing.T) {
	mark := uint32(0xFFFFFF00)
	now := mark + 0x200 // wrapped
	assert.Less(t, now, mark)
	assert.Equal(t, uint32(0x200), Since(now, mark))
}

func TestMinutesToMillisSaturates(t *testing.T) {
	assert.Equal(t, uint32(60000), MinutesToMillis(1))
	assert.Equal(t, uint32(0), MinutesToMillis(0))
	assert.Equal(t, ^uint32(0), MinutesToMillis(100000))
	assert.Equal(t, uint32(71582*60000), MinutesToMillis(71582))
}

func TestManualAdvanceWraps(t *testing.T) {
	m := NewManual(^uint32(0) - 10)
	m.Advance(20)
	assert.Equal(t, uint32(9), m.Millis())
}
