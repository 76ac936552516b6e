package overlay

// owned holds a device resource exclusively. The zero value holds nothing.
type owned[T Resource] struct {
	r     T
	valid bool
}

// set takes ownership of r, releasing whatever was held before.
func (o *owned[T]) set(r T) {
	o.release()
	o.r = r
	o.valid = true
}

func (o *owned[T]) get() (T, bool) {
	return o.r, o.valid
}

func (o *owned[T]) ok() bool { return o.valid }

// release releases the held resource once and forgets it.
func (o *owned[T]) release() {
	if !o.valid {
		return
	}
	r := o.r
	var zero T
	o.r = zero
	o.valid = false
	r.Release()
}

// releaseList records resources acquired while building a Box so that
// a failure part way through can hand all of them back.
type releaseList struct {
	rs []Resource
}

func (l *releaseList) add(r Resource) {
	l.rs = append(l.rs, r)
}

// rollback releases everything in reverse acquisition order.
func (l *releaseList) rollback() {
	for i := len(l.rs) - 1; i >= 0; i-- {
		l.rs[i].Release()
	}
	l.rs = nil
}

// commit forgets the recorded resources; ownership has moved elsewhere.
func (l *releaseList) commit() {
	l.rs = nil
}
