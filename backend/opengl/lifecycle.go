package opengl

import (
	"github.com/go-theft-auto/overlay/log"
)

// DeviceListener receives device-loss notifications. *overlay.Box and
// *overlay.Registry implement it.
type DeviceListener interface {
	OnLostDevice() error
	OnResetDevice() error
}

// Lifecycle tracks whether the device is lost and notifies its listener
// exactly once per transition.
type Lifecycle struct {
	listener DeviceListener
	lg       *log.Logger
	lost     bool
}

// NewLifecycle returns a Lifecycle for a device that is currently usable.
func NewLifecycle(listener DeviceListener, lg *log.Logger) *Lifecycle {
	return &Lifecycle{listener: listener, lg: lg}
}

// Lost reports whether the device is currently lost.
func (lc *Lifecycle) Lost() bool { return lc.lost }

// Lose moves to the lost state, calling OnLostDevice if the device was
// usable.
func (lc *Lifecycle) Lose() {
	if lc.lost {
		return
	}
	lc.lost = true
	lc.lg.Info("device lost")
	if err := lc.listener.OnLostDevice(); err != nil {
		lc.lg.Errorf("OnLostDevice: %v", err)
	}
}

// Restore moves to the usable state, calling OnResetDevice if the device
// was lost.
func (lc *Lifecycle) Restore() {
	if !lc.lost {
		return
	}
	lc.lost = false
	lc.lg.Info("device reset")
	if err := lc.listener.OnResetDevice(); err != nil {
		lc.lg.Errorf("OnResetDevice: %v", err)
	}
}
