// Package camera renders a schematic view of the articulated rig into
// raster frames. The renderer is purely software: it projects the three
// gimbal rings orthographically onto an RGBA canvas, so frame capture
// works headless and stays deterministic across platforms.
package camera

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/san-kum/gimlock/internal/physics"
	"github.com/san-kum/gimlock/internal/rig"
)

// Source supplies the joint state the camera visualizes.
type Source interface {
	JointState() rig.JointState
}

var (
	colorBackground = color.RGBA{18, 18, 28, 255}
	colorYawRing    = color.RGBA{96, 165, 250, 255}
	colorPitchRing  = color.RGBA{52, 211, 153, 255}
	colorRotorRing  = color.RGBA{251, 191, 36, 255}
	colorSpoke      = color.RGBA{248, 113, 113, 255}
	colorPivot      = color.RGBA{229, 231, 235, 255}
)

const ringSegments = 96

// Camera draws the rig of one environment per captured frame. The view
// direction orbits slowly around the rig so a rendered clip shows the
// ring geometry from changing angles.
type Camera struct {
	src       Source
	width     int
	height    int
	azimuth   float64
	elevation float64
	orbitRate float64
}

// New returns a camera rendering width x height frames from src.
func New(src Source, width, height int) (*Camera, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("camera: frame size %dx%d must be positive", width, height)
	}
	return &Camera{
		src:       src,
		width:     width,
		height:    height,
		azimuth:   math.Pi / 6,
		elevation: math.Pi / 8,
		orbitRate: 0.15,
	}, nil
}

// Update advances the orbiting viewpoint by dt seconds of sim time.
func (c *Camera) Update(dt float64) {
	c.azimuth += c.orbitRate * dt
}

// Capture renders the rig of environment index into a fresh frame.
func (c *Camera) Capture(index int) (image.Image, error) {
	js := c.src.JointState()
	if index < 0 || index >= js.NumEnvs() {
		return nil, fmt.Errorf("camera: environment %d out of range [0,%d)", index, js.NumEnvs())
	}
	yaw := js.Pos[index][physics.JointYaw]
	pitch := js.Pos[index][physics.JointPitch]
	rotor := js.Pos[index][physics.JointRotor]

	img := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	fill(img, colorBackground)

	scale := 0.38 * float64(minInt(c.width, c.height))
	c.drawRing(img, scale*1.00, colorYawRing, func(p vec3) vec3 {
		return rotZ(p, yaw)
	})
	c.drawRing(img, scale*0.72, colorPitchRing, func(p vec3) vec3 {
		return rotZ(rotX(p, math.Pi/2+pitch), yaw)
	})
	rotorFrame := func(p vec3) vec3 {
		return rotZ(rotX(rotY(p, rotor), math.Pi/2+pitch), yaw)
	}
	c.drawRing(img, scale*0.46, colorRotorRing, rotorFrame)

	// Rotor spoke makes the spin rate visible frame to frame.
	sx0, sy0 := c.project(vec3{})
	sx1, sy1 := c.project(rotorFrame(vec3{x: scale * 0.46}))
	drawThickLine(img, sx0, sy0, sx1, sy1, 3, colorSpoke)
	drawCircleFilled(img, sx0, sy0, 4, colorPivot)

	return img, nil
}

// drawRing projects a circle of the given radius, transformed into the
// rig frame by xf, and strokes it segment by segment.
func (c *Camera) drawRing(img *image.RGBA, radius float64, col color.RGBA, xf func(vec3) vec3) {
	prevX, prevY := 0.0, 0.0
	for i := 0; i <= ringSegments; i++ {
		a := 2 * math.Pi * float64(i) / ringSegments
		p := xf(vec3{x: radius * math.Cos(a), y: radius * math.Sin(a)})
		x, y := c.project(p)
		if i > 0 {
			drawThickLine(img, prevX, prevY, x, y, 2.5, col)
		}
		prevX, prevY = x, y
	}
}

// project maps a rig-frame point to screen coordinates through the
// orbiting orthographic view.
func (c *Camera) project(p vec3) (float64, float64) {
	v := rotX(rotY(p, c.azimuth), c.elevation)
	return float64(c.width)/2 + v.x, float64(c.height)/2 - v.y
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
