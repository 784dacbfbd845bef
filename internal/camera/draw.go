package camera

import (
	"image"
	"image/color"
	"math"
)

func fill(img *image.RGBA, c color.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func drawCircleFilled(img *image.RGBA, cx, cy, r float64, c color.RGBA) {
	x0 := int(math.Floor(cx - r))
	x1 := int(math.Ceil(cx + r))
	y0 := int(math.Floor(cy - r))
	y1 := int(math.Ceil(cy + r))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

func drawThickLine(img *image.RGBA, x1, y1, x2, y2, width float64, c color.RGBA) {
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length < 1e-9 {
		drawCircleFilled(img, x1, y1, width/2, c)
		return
	}
	steps := int(length) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		drawCircleFilled(img, x1+t*dx, y1+t*dy, width/2, c)
	}
}

// vec3 and the rotation helpers below support the orthographic ring
// projection; no external math dependency is warranted for three
// rotations and a dot product.
type vec3 struct{ x, y, z float64 }

func rotX(v vec3, a float64) vec3 {
	s, c := math.Sin(a), math.Cos(a)
	return vec3{v.x, c*v.y - s*v.z, s*v.y + c*v.z}
}

func rotY(v vec3, a float64) vec3 {
	s, c := math.Sin(a), math.Cos(a)
	return vec3{c*v.x + s*v.z, v.y, -s*v.x + c*v.z}
}

func rotZ(v vec3, a float64) vec3 {
	s, c := math.Sin(a), math.Cos(a)
	return vec3{c*v.x - s*v.y, s*v.x + c*v.y, v.z}
}
