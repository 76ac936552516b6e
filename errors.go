package overlay

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned by Init for a nil device or
	// non-finite geometry.
	ErrInvalidArgument = errors.New("overlay: invalid argument")
	// ErrNoEffect is returned by the device-loss handlers of a Box that
	// has no effect.
	ErrNoEffect = errors.New("overlay: no effect")
	// ErrNotInitialized is returned when an operation needs a Box that
	// completed Init.
	ErrNotInitialized = errors.New("overlay: box not initialized")
	// ErrDeviceLost is returned by backends for calls made while the
	// device is lost.
	ErrDeviceLost = errors.New("overlay: device lost")
)

// CompileError reports an effect that failed to load or compile. Log
// holds the compiler output.
type CompileError struct {
	Path string
	Log  string
	Err  error
}

func (e *CompileError) Error() string {
	switch {
	case e.Log != "":
		return fmt.Sprintf("effect %s: %s", e.Path, e.Log)
	case e.Err != nil:
		return fmt.Sprintf("effect %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("effect %s: compile failed", e.Path)
}

func (e *CompileError) Unwrap() error { return e.Err }
