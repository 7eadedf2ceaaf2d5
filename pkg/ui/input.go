// Package ui holds the small immediate-mode widgets of the tuning panel.
package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Input is the mouse state of one frame. Widgets read it instead of
// polling ebiten so that they can be driven from tests.
type Input struct {
	CursorX, CursorY float64
	Pressed          bool // left button held
	JustPressed      bool // left button went down this frame
	WheelY           float64
}

// ReadInput samples the mouse. Call it once per Update.
func ReadInput() Input {
	mx, my := ebiten.CursorPosition()
	_, wy := ebiten.Wheel()
	return Input{
		CursorX:     float64(mx),
		CursorY:     float64(my),
		Pressed:     ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		JustPressed: inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		WheelY:      wy,
	}
}

// over reports whether the cursor lies in the box at (x, y) of size w x h.
func (in Input) over(x, y, w, h float64) bool {
	return in.CursorX >= x && in.CursorX <= x+w &&
		in.CursorY >= y && in.CursorY <= y+h
}
