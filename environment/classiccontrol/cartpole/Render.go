package cartpole

import (
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"
)

const (
	ViewportW float64 = 600
	ViewportH float64 = 400
	Scale     float64 = ViewportW / (2 * PositionBounds)
)

var (
	skyShade   = color.RGBA{255, 255, 255, 255}
	trackShade = color.RGBA{0, 0, 0, 255}
	cartShade  = color.RGBA{0, 0, 0, 255}
	poleShade  = color.RGBA{202, 152, 101, 255}
	axleShade  = color.RGBA{129, 132, 203, 255}
)

// Render draws the current state of the environment and saves it as a
// PNG image at filename
func (c *base) Render(filename string) error {
	dc := gg.NewContext(int(ViewportW), int(ViewportH))
	dc.SetColor(skyShade)
	dc.Clear()

	state := c.lastStep.Observation
	x, th := state.AtVec(0), state.AtVec(2)

	trackY := ViewportH * 0.75
	cartW, cartH := 50.0, 30.0
	poleLen := Scale * 2 * c.halfPoleLength

	// Track
	dc.SetColor(trackShade)
	dc.SetLineWidth(1.0)
	dc.DrawLine(0, trackY, ViewportW, trackY)
	dc.Stroke()

	// Cart
	cartX := x*Scale + ViewportW/2.0
	dc.SetColor(cartShade)
	dc.DrawRectangle(cartX-cartW/2, trackY-cartH, cartW, cartH)
	dc.Fill()

	// Pole, angle 0 pointing straight up
	axleY := trackY - cartH
	tipX := cartX + poleLen*math.Sin(th)
	tipY := axleY - poleLen*math.Cos(th)
	dc.SetColor(poleShade)
	dc.SetLineWidth(10.0)
	dc.DrawLine(cartX, axleY, tipX, tipY)
	dc.Stroke()

	dc.SetColor(axleShade)
	dc.DrawCircle(cartX, axleY, 5.0)
	dc.Fill()

	if err := dc.SavePNG(filename); err != nil {
		return fmt.Errorf("render: %v", err)
	}
	return nil
}
