package overlay

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// LegacyAspect is the aspect ratio boxes have always been projected with.
// It is 1366/768 evaluated in integer arithmetic, which truncates to 1.
// Use WithAspect to project with the real window aspect.
const LegacyAspect = float32(1366 / 768)

// Projection defaults.
const (
	DefaultFieldOfView = 75    // degrees, vertical
	DefaultNear        = 0.01  // near clip plane
	DefaultFar         = 100.0 // far clip plane
)

// DefaultViewOffset is the camera translation applied by Init.
var DefaultViewOffset = mgl32.Vec3{0, 0, 2}

// PerspectiveFovLH returns a left-handed perspective projection with a
// vertical field of view fovy (radians), mapping view-space z in
// [near, far] to clip depth [0, w].
//
// Matrices in this package use the column-vector convention of mgl32, so
// the result is the transpose of the row-vector matrix Direct3D builds
// for the same arguments; both produce identical clip coordinates.
func PerspectiveFovLH(fovy, aspect, near, far float32) mgl32.Mat4 {
	yScale := float32(1 / math.Tan(float64(fovy)/2))
	xScale := yScale / aspect
	q := far / (far - near)

	// Column-major: each group of four is a column.
	return mgl32.Mat4{
		xScale, 0, 0, 0,
		0, yScale, 0, 0,
		0, 0, q, 1,
		0, 0, -near * q, 0,
	}
}

// WorldViewProj composes the three transforms so that a point is first
// moved by world, then view, then projected.
func WorldViewProj(world, view, proj mgl32.Mat4) mgl32.Mat4 {
	return proj.Mul4(view).Mul4(world)
}
