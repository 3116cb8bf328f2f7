// Package camera provides an orbiting 3D camera around the atom.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// maxPitch keeps the camera off the poles where the up vector degenerates.
const maxPitch = math.Pi/2 - 0.01

// Camera orbits Target at Distance. Yaw turns around +Y, Pitch tilts toward it.
// At yaw = pitch = 0 the camera sits on +Z looking at the origin.
type Camera struct {
	Target   r3.Vec
	Yaw      float64
	Pitch    float64
	Distance float64

	// Vertical field of view in degrees
	FOV float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	// Distance constraints
	MinDistance, MaxDistance float64

	initialDistance float64
}

// New creates a camera at distance on +Z looking at the origin.
func New(viewportW, viewportH, distance, minDistance, maxDistance, fov float64) *Camera {
	c := &Camera{
		FOV:         fov,
		ViewportW:   viewportW,
		ViewportH:   viewportH,
		MinDistance: minDistance,
		MaxDistance: maxDistance,
	}
	c.SetDistance(distance)
	c.initialDistance = c.Distance
	return c
}

// Position returns the camera position in world coordinates.
func (c *Camera) Position() r3.Vec {
	cp := math.Cos(c.Pitch)
	offset := r3.Vec{
		X: c.Distance * cp * math.Sin(c.Yaw),
		Y: c.Distance * math.Sin(c.Pitch),
		Z: c.Distance * cp * math.Cos(c.Yaw),
	}
	return r3.Add(c.Target, offset)
}

// basis returns the camera's right, up and forward unit vectors.
func (c *Camera) basis() (right, up, forward r3.Vec) {
	forward = r3.Unit(r3.Sub(c.Target, c.Position()))
	right = r3.Unit(r3.Cross(forward, r3.Vec{Y: 1}))
	up = r3.Cross(right, forward)
	return right, up, forward
}

// Orbit rotates the camera around the target by the given angles in radians.
// Yaw wraps; pitch is clamped short of the poles.
func (c *Camera) Orbit(dYaw, dPitch float64) {
	c.Yaw = wrapAngle(c.Yaw + dYaw)
	c.Pitch = clamp(c.Pitch+dPitch, -maxPitch, maxPitch)
}

// SetDistance sets the orbit distance, clamped to min/max.
func (c *Camera) SetDistance(d float64) {
	c.Distance = clamp(d, c.MinDistance, c.MaxDistance)
}

// ZoomBy divides the orbit distance by factor; factors above 1 move closer.
func (c *Camera) ZoomBy(factor float64) {
	if factor <= 0 {
		return
	}
	c.SetDistance(c.Distance / factor)
}

// Pan moves the target by the given delta in screen pixels, in the view plane.
func (c *Camera) Pan(dx, dy float64) {
	right, up, _ := c.basis()
	scale := c.worldPerPixel()
	c.Target = r3.Add(c.Target, r3.Add(r3.Scale(-dx*scale, right), r3.Scale(dy*scale, up)))
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float64) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Reset returns the camera to its initial orbit.
func (c *Camera) Reset() {
	c.Target = r3.Vec{}
	c.Yaw = 0
	c.Pitch = 0
	c.Distance = c.initialDistance
}

// WorldToScreen projects p to screen coordinates. visible is false for points
// behind the camera.
func (c *Camera) WorldToScreen(p r3.Vec) (sx, sy float64, visible bool) {
	right, up, forward := c.basis()
	rel := r3.Sub(p, c.Position())
	depth := r3.Dot(rel, forward)
	if depth <= 0 {
		return 0, 0, false
	}

	f := c.focalLength()
	sx = c.ViewportW/2 + r3.Dot(rel, right)*f/depth
	sy = c.ViewportH/2 - r3.Dot(rel, up)*f/depth
	return sx, sy, true
}

// PixelsPerUnit returns the screen size of one world unit at p's depth, or 0
// for points behind the camera.
func (c *Camera) PixelsPerUnit(p r3.Vec) float64 {
	_, _, forward := c.basis()
	depth := r3.Dot(r3.Sub(p, c.Position()), forward)
	if depth <= 0 {
		return 0
	}
	return c.focalLength() / depth
}

// focalLength is the distance in pixels to a virtual screen spanning the vertical FOV.
func (c *Camera) focalLength() float64 {
	return c.ViewportH / 2 / math.Tan(c.FOV*math.Pi/360)
}

// worldPerPixel is the world size of one pixel at the target's depth.
func (c *Camera) worldPerPixel() float64 {
	return c.Distance / c.focalLength()
}

// wrapAngle maps a into (-pi, pi].
func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
