package crazyflie

import (
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/spatial/r3"
)

// Rendering constants
const (
	pixelsPerMeter float64 = 120.0
	droneRadius    float64 = 0.05 // metres
	markerRadius   float64 = 0.02
	thrustScale    float64 = 0.1 // metres of line per newton
)

// Render draws a top-down debug view of all environment instances to
// ./Crazyflie<frame>.png. Instances are laid out on a square grid
// spaced by the environment spacing. Each instance shows the drone,
// its target marker in red, and a line along the drone's body-up axis
// scaled by the last commanded thrust. Render does nothing when debug
// visualization is disabled.
func (c *crazyflie) Render(frame int) error {
	if !c.debugViz {
		return nil
	}

	perRow := int(math.Ceil(math.Sqrt(float64(c.numEnvs))))
	rows := (c.numEnvs + perRow - 1) / perRow

	cellPx := c.envSpacing * pixelsPerMeter
	dc := gg.NewContext(int(cellPx)*perRow, int(cellPx)*rows)
	dc.SetColor(color.RGBA{R: 30, G: 30, B: 30, A: 255})
	dc.Clear()

	droneShade := color.RGBA{R: 128, G: 102, B: 230, A: 255}
	markerShade := color.RGBA{R: 255, G: 0, B: 0, A: 255}
	thrustShade := color.RGBA{R: 255, G: 166, B: 0, A: 255}

	for env := 0; env < c.numEnvs; env++ {
		// Cell origin for this instance; positions are drawn relative
		// to the cell center
		ox := float64(env%perRow)*cellPx + cellPx/2
		oy := float64(env/perRow)*cellPx + cellPx/2

		toPixel := func(p r3.Vec) (float64, float64) {
			return ox + p.X*pixelsPerMeter, oy - p.Y*pixelsPerMeter
		}

		// Target marker
		mx, my := toPixel(c.TargetPosition(env))
		dc.SetColor(markerShade)
		dc.DrawCircle(mx, my, markerRadius*pixelsPerMeter)
		dc.Fill()

		// Thrust line along the body-up axis
		pos := c.DronePosition(env)
		up := c.DroneOrientation(env).Rotate(r3.Vec{Z: 1})
		tip := r3.Add(pos, r3.Scale(thrustScale*c.lastThrusts[env], up))

		x1, y1 := toPixel(pos)
		x2, y2 := toPixel(tip)
		dc.SetColor(thrustShade)
		dc.SetLineWidth(2.0)
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()

		// Drone body
		dc.SetColor(droneShade)
		dc.DrawCircle(x1, y1, droneRadius*pixelsPerMeter)
		dc.Fill()
	}

	return dc.SavePNG(fmt.Sprintf("./Crazyflie%v.png", frame))
}
