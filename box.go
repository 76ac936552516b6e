package overlay

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-auto/overlay/log"
)

// WorldViewProjParam is the effect parameter Draw sets each pass.
const WorldViewProjParam = "WorldViewProj"

// Box is a single colored quad drawn through its own vertex buffer,
// index buffer, vertex layout and effect.
//
// A Box exclusively owns those four resources; the Device is borrowed.
// All methods must be called from the thread that owns the device, and
// Draw only between the caller's begin/end scene bracket.
type Box struct {
	dev Device
	lg  *log.Logger
	cfg options

	vb     owned[VertexBuffer]
	ib     owned[IndexBuffer]
	layout owned[VertexLayout]
	effect owned[Effect]

	x, y, width, height float32
	color               Color
	rect                Rect

	world, view, proj mgl32.Mat4

	visible bool
	lost    bool
}

// New returns a Box with no resources, identity transforms and
// visibility off. Call Init before drawing.
func New(opts ...Option) *Box {
	cfg := applyOptions(opts)
	b := &Box{
		lg:    cfg.lg,
		cfg:   cfg,
		world: mgl32.Ident4(),
		view:  mgl32.Ident4(),
		proj:  mgl32.Ident4(),
	}
	b.lg.Debug("box created")
	return b
}

// staged is the resource set built by Init before it is committed.
type staged struct {
	vb     VertexBuffer
	ib     IndexBuffer
	layout VertexLayout
	effect Effect
}

// Init creates the device resources for a width×height box at (x, y)
// with the given color and loads the effect at effectPath.
//
// Init either fully succeeds, leaving the Box visible and drawable, or
// fails and releases everything it acquired; a failed Init leaves the
// Box as it was. Calling Init on an initialized Box replaces its
// resources. A negative width or height mirrors the quad. Init does not
// end a device loss: a Box that saw OnLostDevice stays suspended until
// OnResetDevice.
func (b *Box) Init(dev Device, effectPath string, width, height, x, y float32, color Color) error {
	if dev == nil {
		return fmt.Errorf("nil device: %w", ErrInvalidArgument)
	}
	for _, f := range []float32{width, height, x, y} {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return fmt.Errorf("non-finite geometry (%g, %g, %g, %g): %w", x, y, width, height, ErrInvalidArgument)
		}
	}

	var acquired releaseList
	s, err := b.build(dev, effectPath, width, height, x, y, color, &acquired)
	if err != nil {
		acquired.rollback()
		return err
	}
	acquired.commit()

	b.vb.set(s.vb)
	b.ib.set(s.ib)
	b.layout.set(s.layout)
	b.effect.set(s.effect)

	b.x, b.y = x, y
	b.width, b.height = width, height
	b.dev = dev
	b.color = color
	b.rect = Rect{Left: x, Top: y, Right: x + width, Bottom: y + height}

	b.visible = true

	b.view = mgl32.Translate3D(b.cfg.viewOffset.X(), b.cfg.viewOffset.Y(), b.cfg.viewOffset.Z())
	b.proj = PerspectiveFovLH(mgl32.DegToRad(b.cfg.fov), b.cfg.aspect, b.cfg.near, b.cfg.far)

	b.lg.Debug("box initialized",
		slog.String("effect", effectPath),
		slog.Any("rect", b.rect),
		slog.String("color", fmt.Sprintf("%#08x", uint32(color))))
	return nil
}

func (b *Box) build(dev Device, effectPath string, width, height, x, y float32, color Color, acquired *releaseList) (staged, error) {
	var s staged
	var err error

	verts := QuadVertices(x, y, width, height, color)

	s.vb, err = dev.CreateVertexBuffer(len(verts) * VertexSize)
	if err != nil {
		b.lg.Errorf("Box.Init: couldn't create the vertex buffer: %v", err)
		return s, fmt.Errorf("create vertex buffer: %w", err)
	}
	acquired.add(s.vb)
	if err := fill(s.vb, EncodeVertices(verts[:])); err != nil {
		b.lg.Errorf("Box.Init: couldn't fill the vertex buffer: %v", err)
		return s, fmt.Errorf("fill vertex buffer: %w", err)
	}

	s.ib, err = dev.CreateIndexBuffer(len(QuadIndices))
	if err != nil {
		b.lg.Errorf("Box.Init: couldn't create the index buffer: %v", err)
		return s, fmt.Errorf("create index buffer: %w", err)
	}
	acquired.add(s.ib)
	if err := fill(s.ib, EncodeIndices(QuadIndices[:])); err != nil {
		b.lg.Errorf("Box.Init: couldn't fill the index buffer: %v", err)
		return s, fmt.Errorf("fill index buffer: %w", err)
	}

	s.layout, err = dev.CreateVertexLayout(VertexElements())
	if err != nil {
		b.lg.Errorf("Box.Init: couldn't create the vertex layout: %v", err)
		return s, fmt.Errorf("create vertex layout: %w", err)
	}
	acquired.add(s.layout)

	s.effect, err = dev.CreateEffect(effectPath)
	if err != nil {
		b.lg.Errorf("Box.Init: couldn't create the effect: %v", err)
		return s, fmt.Errorf("create effect: %w", err)
	}
	acquired.add(s.effect)

	return s, nil
}

// fill copies data into buf through a Lock/Unlock pair.
func fill(buf Buffer, data []byte) error {
	mem, err := buf.Lock()
	if err != nil {
		return err
	}
	if len(mem) < len(data) {
		_ = buf.Unlock()
		return fmt.Errorf("locked %d bytes, need %d", len(mem), len(data))
	}
	copy(mem, data)
	return buf.Unlock()
}

// Draw renders the box. It does nothing unless the box is visible, fully
// initialized and its device is not lost. Failures are logged and the
// frame is dropped; they are never returned.
func (b *Box) Draw() {
	if !b.visible || !b.vb.ok() || !b.ib.ok() {
		return
	}
	fx, ok := b.effect.get()
	if !ok || !b.layout.ok() || b.lost {
		return
	}
	vb, _ := b.vb.get()
	ib, _ := b.ib.get()
	layout, _ := b.layout.get()

	passes, err := fx.Begin()
	if err != nil {
		b.lg.Errorf("Box.Draw: effect Begin failed: %v", err)
		return
	}

	wvp := b.WorldViewProj()
	for i := 0; i < passes; i++ {
		if err := fx.BeginPass(i); err != nil {
			b.lg.Errorf("Box.Draw: BeginPass(%d) failed: %v", i, err)
			continue
		}

		if err := fx.SetMatrix(WorldViewProjParam, wvp); err != nil {
			b.lg.Warnf("Box.Draw: SetMatrix failed: %v", err)
		}
		b.dev.SetVertexLayout(layout)
		b.dev.SetStreamSource(0, vb, 0, VertexSize)
		b.dev.SetIndices(ib)
		if err := fx.CommitChanges(); err != nil {
			b.lg.Warnf("Box.Draw: CommitChanges failed: %v", err)
		}

		if err := b.dev.DrawIndexed(TriangleStrip, 0, 0, len(QuadIndices), 0,
			PrimitiveCount(TriangleStrip, len(QuadIndices))); err != nil {
			b.lg.Errorf("Box.Draw: DrawIndexed failed: %v", err)
		}

		if err := fx.EndPass(); err != nil {
			b.lg.Errorf("Box.Draw: EndPass(%d) failed: %v", i, err)
		}
	}

	if err := fx.End(); err != nil {
		b.lg.Errorf("Box.Draw: effect End failed: %v", err)
	}
}

// Show sets whether Draw renders the box.
func (b *Box) Show(visible bool) {
	b.visible = visible
}

// Visible reports whether the box is shown.
func (b *Box) Visible() bool { return b.visible }

// OnLostDevice must be called before the device is reset. The effect
// drops its device-dependent state and Draw is suspended until
// OnResetDevice.
func (b *Box) OnLostDevice() error {
	b.lg.Info("Box.OnLostDevice")
	fx, ok := b.effect.get()
	if !ok {
		return ErrNoEffect
	}
	b.lost = true
	if err := fx.OnLostDevice(); err != nil {
		return fmt.Errorf("effect lost device: %w", err)
	}
	return nil
}

// OnResetDevice must be called after the device is restored. On success
// the box is drawable again without another Init.
func (b *Box) OnResetDevice() error {
	b.lg.Info("Box.OnResetDevice")
	fx, ok := b.effect.get()
	if !ok {
		return ErrNoEffect
	}
	if err := fx.OnResetDevice(); err != nil {
		return fmt.Errorf("effect reset device: %w", err)
	}
	b.lost = false
	return nil
}

// Destroy releases the box's device resources. It is safe to call more
// than once.
func (b *Box) Destroy() {
	b.vb.release()
	b.effect.release()
	b.layout.release()
	b.ib.release()
	b.visible = false
}

// Initialized reports whether the box holds all of its resources.
func (b *Box) Initialized() bool {
	return b.vb.ok() && b.ib.ok() && b.layout.ok() && b.effect.ok()
}

// Rect returns the bounding rectangle set by Init.
func (b *Box) Rect() Rect { return b.rect }

// Color returns the color set by Init.
func (b *Box) Color() Color { return b.color }

// Position returns the top-left corner set by Init.
func (b *Box) Position() (x, y float32) { return b.x, b.y }

// Size returns the width and height set by Init.
func (b *Box) Size() (width, height float32) { return b.width, b.height }

// World returns the world transform.
func (b *Box) World() mgl32.Mat4 { return b.world }

// SetWorld replaces the world transform. It takes effect on the next Draw.
func (b *Box) SetWorld(m mgl32.Mat4) { b.world = m }

// FitToScreen sets the world transform so that the pixel coordinates
// given to Init land on a width×height screen, (0, 0) at the top-left
// corner and (width, height) at the bottom-right. It does nothing for an
// empty screen or a camera that is not in front of the z=0 plane.
func (b *Box) FitToScreen(width, height float32) {
	off := b.cfg.viewOffset
	if width <= 0 || height <= 0 || off.Z() <= 0 {
		return
	}
	hh := off.Z() * float32(math.Tan(float64(mgl32.DegToRad(b.cfg.fov))/2))
	hw := hh * b.cfg.aspect
	b.world = mgl32.Translate3D(-hw-off.X(), hh-off.Y(), 0).
		Mul4(mgl32.Scale3D(2*hw/width, -2*hh/height, 1))
}

// View returns the view transform.
func (b *Box) View() mgl32.Mat4 { return b.view }

// Projection returns the projection transform.
func (b *Box) Projection() mgl32.Mat4 { return b.proj }

// WorldViewProj returns the combined transform Draw hands to the effect.
func (b *Box) WorldViewProj() mgl32.Mat4 {
	return WorldViewProj(b.world, b.view, b.proj)
}
