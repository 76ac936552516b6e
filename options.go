package overlay

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-auto/overlay/log"
)

// Option configures a Box.
type Option func(*options)

// options holds Box configuration.
type options struct {
	lg         *log.Logger
	aspect     float32
	fov        float32 // degrees
	near, far  float32
	viewOffset mgl32.Vec3
}

func defaultOptions() options {
	return options{
		aspect:     LegacyAspect,
		fov:        DefaultFieldOfView,
		near:       DefaultNear,
		far:        DefaultFar,
		viewOffset: DefaultViewOffset,
	}
}

// applyOptions applies all options over the defaults.
func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the log sink. A nil logger discards debug and info
// output.
func WithLogger(lg *log.Logger) Option {
	return func(o *options) { o.lg = lg }
}

// WithAspect sets the projection aspect ratio (width/height). Values
// that are not positive are ignored.
func WithAspect(aspect float32) Option {
	return func(o *options) {
		if aspect > 0 {
			o.aspect = aspect
		}
	}
}

// WithFieldOfView sets the vertical field of view in degrees. Values
// outside (0, 180) are ignored.
func WithFieldOfView(degrees float32) Option {
	return func(o *options) {
		if degrees > 0 && degrees < 180 {
			o.fov = degrees
		}
	}
}

// WithClipPlanes sets the near and far clip planes. The call is ignored
// unless 0 < near < far.
func WithClipPlanes(near, far float32) Option {
	return func(o *options) {
		if near > 0 && far > near {
			o.near, o.far = near, far
		}
	}
}

// WithViewOffset sets the camera translation applied by Init.
func WithViewOffset(x, y, z float32) Option {
	return func(o *options) { o.viewOffset = mgl32.Vec3{x, y, z} }
}
