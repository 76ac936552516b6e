package overlay

import (
	"errors"
	"fmt"
)

// BoxID identifies a Box in a Registry. IDs are never reused.
type BoxID uint32

// Registry owns a set of boxes and forwards frame and device-lifecycle
// events to them in insertion order. The zero value is ready to use.
//
// Like Box, a Registry is used from the device thread only.
type Registry struct {
	next  BoxID
	boxes map[BoxID]*Box
	order []BoxID
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add transfers ownership of b to the registry.
func (r *Registry) Add(b *Box) BoxID {
	if r.boxes == nil {
		r.boxes = make(map[BoxID]*Box)
	}
	r.next++
	id := r.next
	r.boxes[id] = b
	r.order = append(r.order, id)
	return id
}

// Get returns the box registered under id.
func (r *Registry) Get(id BoxID) (*Box, bool) {
	b, ok := r.boxes[id]
	return b, ok
}

// Remove destroys and forgets the box registered under id. It reports
// whether the id was present.
func (r *Registry) Remove(id BoxID) bool {
	b, ok := r.boxes[id]
	if !ok {
		return false
	}
	b.Destroy()
	delete(r.boxes, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of registered boxes.
func (r *Registry) Len() int { return len(r.order) }

// Each calls fn for every box in insertion order until fn returns false.
func (r *Registry) Each(fn func(BoxID, *Box) bool) {
	for _, id := range r.order {
		if !fn(id, r.boxes[id]) {
			return
		}
	}
}

// Draw draws every box.
func (r *Registry) Draw() {
	for _, id := range r.order {
		r.boxes[id].Draw()
	}
}

// OnLostDevice forwards device loss to every box. Boxes without an
// effect are skipped.
func (r *Registry) OnLostDevice() error {
	return r.broadcast("lost device", (*Box).OnLostDevice)
}

// OnResetDevice forwards device reset to every box. Boxes without an
// effect are skipped.
func (r *Registry) OnResetDevice() error {
	return r.broadcast("reset device", (*Box).OnResetDevice)
}

func (r *Registry) broadcast(what string, fn func(*Box) error) error {
	var errs []error
	for _, id := range r.order {
		if err := fn(r.boxes[id]); err != nil && !errors.Is(err, ErrNoEffect) {
			errs = append(errs, fmt.Errorf("box %d %s: %w", id, what, err))
		}
	}
	return errors.Join(errs...)
}

// Destroy destroys and forgets every box.
func (r *Registry) Destroy() {
	for _, id := range r.order {
		r.boxes[id].Destroy()
	}
	r.boxes = nil
	r.order = nil
}
