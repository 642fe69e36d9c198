package display

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"

	"github.com/junsooki/AirGIF/internal/input"
)

func TestAspectFitTransform(t *testing.T) {
	tests := []struct {
		name                         string
		viewW, viewH, frameW, frameH float64
		scale, offsetX, offsetY      float64
	}{
		{name: "same size", viewW: 100, viewH: 100, frameW: 100, frameH: 100, scale: 1},
		{name: "pillarbox", viewW: 200, viewH: 100, frameW: 50, frameH: 50, scale: 2, offsetX: 50},
		{name: "letterbox", viewW: 100, viewH: 200, frameW: 50, frameH: 50, scale: 2, offsetY: 50},
		{name: "shrink", viewW: 100, viewH: 100, frameW: 400, frameH: 200, scale: 0.25, offsetY: 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scale, ox, oy := aspectFitTransform(tt.viewW, tt.viewH, tt.frameW, tt.frameH)
			assert.InDelta(t, tt.scale, scale, 1e-9)
			assert.InDelta(t, tt.offsetX, ox, 1e-9)
			assert.InDelta(t, tt.offsetY, oy, 1e-9)
		})
	}
}

func TestKeyCommand(t *testing.T) {
	cmd, ok := keyCommand(ebiten.KeySpace)
	assert.True(t, ok)
	assert.Equal(t, input.CommandToggle, cmd)

	cmd, ok = keyCommand(ebiten.KeyEscape)
	assert.True(t, ok)
	assert.Equal(t, input.CommandQuit, cmd)

	_, ok = keyCommand(ebiten.KeyZ)
	assert.False(t, ok)
}
