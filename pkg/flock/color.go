package flock

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// hueStep is pi/16 radians per spawn index, expressed in degrees.
const hueStep = 11.25

// IdentityColor returns the fully saturated hue assigned to the agent
// spawned at position id.
func IdentityColor(id int) colorful.Color {
	return colorful.Hsv(math.Mod(float64(id)*hueStep, 360), 1, 1)
}

// addScaled returns acc + c*w, channel by channel.
func addScaled(acc, c colorful.Color, w float64) colorful.Color {
	return colorful.Color{
		R: acc.R + c.R*w,
		G: acc.G + c.G*w,
		B: acc.B + c.B*w,
	}
}
