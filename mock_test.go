package overlay_test

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-auto/overlay"
)

var errInjected = errors.New("injected failure")

// mockDevice records the calls a Box makes and can be told to fail any
// resource creation step.
type mockDevice struct {
	calls []string

	failVB, failIB, failLayout, failEffect bool
	failDraw                               bool
	passes                                 int

	vbs     []*mockBuffer
	ibs     []*mockBuffer
	layouts []*mockLayout
	effects []*mockEffect

	draws  []drawCall
	stride int
}

type drawCall struct {
	prim        overlay.Primitive
	numVertices int
	primCount   int
	stride      int
}

func newMockDevice() *mockDevice {
	return &mockDevice{passes: 1}
}

type mockBuffer struct {
	data     []byte
	locked   bool
	released int
}

func (b *mockBuffer) Lock() ([]byte, error) {
	b.locked = true
	return b.data, nil
}

func (b *mockBuffer) Unlock() error {
	b.locked = false
	return nil
}

func (b *mockBuffer) Release() { b.released++ }

type mockLayout struct {
	elems    []overlay.VertexElement
	released int
}

func (l *mockLayout) Elements() []overlay.VertexElement { return l.elems }
func (l *mockLayout) Release()                          { l.released++ }

type mockEffect struct {
	dev      *mockDevice
	path     string
	released int
	lost     bool
	resets   int
	matrices map[string]mgl32.Mat4
	failLost bool
}

func (e *mockEffect) Begin() (int, error) {
	e.dev.calls = append(e.dev.calls, "Begin")
	return e.dev.passes, nil
}

func (e *mockEffect) BeginPass(pass int) error {
	e.dev.calls = append(e.dev.calls, "BeginPass")
	return nil
}

func (e *mockEffect) SetMatrix(name string, m mgl32.Mat4) error {
	e.dev.calls = append(e.dev.calls, "SetMatrix")
	e.matrices[name] = m
	return nil
}

func (e *mockEffect) CommitChanges() error {
	e.dev.calls = append(e.dev.calls, "CommitChanges")
	return nil
}

func (e *mockEffect) EndPass() error {
	e.dev.calls = append(e.dev.calls, "EndPass")
	return nil
}

func (e *mockEffect) End() error {
	e.dev.calls = append(e.dev.calls, "End")
	return nil
}

func (e *mockEffect) OnLostDevice() error {
	if e.failLost {
		return errInjected
	}
	e.lost = true
	return nil
}

func (e *mockEffect) OnResetDevice() error {
	e.lost = false
	e.resets++
	return nil
}

func (e *mockEffect) Release() { e.released++ }

func (d *mockDevice) CreateVertexBuffer(size int) (overlay.VertexBuffer, error) {
	d.calls = append(d.calls, "CreateVertexBuffer")
	if d.failVB {
		return nil, errInjected
	}
	b := &mockBuffer{data: make([]byte, size)}
	d.vbs = append(d.vbs, b)
	return b, nil
}

func (d *mockDevice) CreateIndexBuffer(count int) (overlay.IndexBuffer, error) {
	d.calls = append(d.calls, "CreateIndexBuffer")
	if d.failIB {
		return nil, errInjected
	}
	b := &mockBuffer{data: make([]byte, 2*count)}
	d.ibs = append(d.ibs, b)
	return b, nil
}

func (d *mockDevice) CreateVertexLayout(elems []overlay.VertexElement) (overlay.VertexLayout, error) {
	d.calls = append(d.calls, "CreateVertexLayout")
	if d.failLayout {
		return nil, errInjected
	}
	l := &mockLayout{elems: elems}
	d.layouts = append(d.layouts, l)
	return l, nil
}

func (d *mockDevice) CreateEffect(path string) (overlay.Effect, error) {
	d.calls = append(d.calls, "CreateEffect")
	if d.failEffect {
		return nil, &overlay.CompileError{Path: path, Log: "syntax error"}
	}
	e := &mockEffect{dev: d, path: path, matrices: make(map[string]mgl32.Mat4)}
	d.effects = append(d.effects, e)
	return e, nil
}

func (d *mockDevice) SetVertexLayout(overlay.VertexLayout) {
	d.calls = append(d.calls, "SetVertexLayout")
}

func (d *mockDevice) SetStreamSource(stream int, vb overlay.VertexBuffer, offset, stride int) {
	d.calls = append(d.calls, "SetStreamSource")
	d.stride = stride
}

func (d *mockDevice) SetIndices(overlay.IndexBuffer) {
	d.calls = append(d.calls, "SetIndices")
}

func (d *mockDevice) DrawIndexed(prim overlay.Primitive, baseVertex, minIndex, numVertices, startIndex, primCount int) error {
	d.calls = append(d.calls, "DrawIndexed")
	d.draws = append(d.draws, drawCall{prim: prim, numVertices: numVertices, primCount: primCount, stride: d.stride})
	if d.failDraw {
		return errInjected
	}
	return nil
}

// drawCalls counts DrawIndexed calls.
func (d *mockDevice) drawCalls() int { return len(d.draws) }
