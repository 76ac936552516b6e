package overlay_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-auto/overlay"
	"github.com/go-theft-auto/overlay/log"
)

func initBox(t *testing.T, dev *mockDevice, opts ...overlay.Option) *overlay.Box {
	t.Helper()
	b := overlay.New(opts...)
	if err := b.Init(dev, "fx/box.fx", 100, 50, 10, 20, 0xFFFF0000); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return b
}

func TestNewBox(t *testing.T) {
	b := overlay.New()
	if b.Visible() {
		t.Error("new box should not be visible")
	}
	if b.Initialized() {
		t.Error("new box should hold no resources")
	}
	for name, m := range map[string]mgl32.Mat4{"world": b.World(), "view": b.View(), "proj": b.Projection()} {
		if m != mgl32.Ident4() {
			t.Errorf("%s should be identity, got %v", name, m)
		}
	}
}

func TestInitExample(t *testing.T) {
	dev := newMockDevice()
	b := initBox(t, dev)

	want := overlay.Rect{Left: 10, Top: 20, Right: 110, Bottom: 70}
	if b.Rect() != want {
		t.Errorf("Rect() = %+v, want %+v", b.Rect(), want)
	}
	if !b.Visible() {
		t.Error("box should be visible after Init")
	}
	if !b.Initialized() {
		t.Error("box should hold all resources after Init")
	}
	if b.Color() != 0xFFFF0000 {
		t.Errorf("Color() = %#x", b.Color())
	}

	wantCalls := []string{"CreateVertexBuffer", "CreateIndexBuffer", "CreateVertexLayout", "CreateEffect"}
	if strings.Join(dev.calls, ",") != strings.Join(wantCalls, ",") {
		t.Errorf("calls = %v, want %v", dev.calls, wantCalls)
	}
	if dev.effects[0].path != "fx/box.fx" {
		t.Errorf("effect path = %q", dev.effects[0].path)
	}
}

func TestInitBoundingRect(t *testing.T) {
	tests := []struct{ w, h, x, y float32 }{
		{100, 50, 10, 20},
		{0, 0, 0, 0},
		{1366, 768, -5.5, 3.25},
		{0.5, 1e6, 1e-3, -1e4},
		{-100, 50, 10, 20},
		{30, -40, 0, 0},
	}
	for _, tt := range tests {
		b := overlay.New()
		if err := b.Init(newMockDevice(), "box.fx", tt.w, tt.h, tt.x, tt.y, overlay.ColorWhite); err != nil {
			t.Fatalf("Init(%v): %v", tt, err)
		}
		want := overlay.Rect{Left: tt.x, Top: tt.y, Right: tt.x + tt.w, Bottom: tt.y + tt.h}
		if b.Rect() != want {
			t.Errorf("Rect() = %+v, want %+v", b.Rect(), want)
		}
		if x, y := b.Position(); x != tt.x || y != tt.y {
			t.Errorf("Position() = %v,%v", x, y)
		}
		if w, h := b.Size(); w != tt.w || h != tt.h {
			t.Errorf("Size() = %v,%v", w, h)
		}
	}
}

func TestInitBufferContents(t *testing.T) {
	dev := newMockDevice()
	initBox(t, dev)

	vb := dev.vbs[0]
	if len(vb.data) != 4*overlay.VertexSize {
		t.Fatalf("vertex buffer is %d bytes", len(vb.data))
	}
	if vb.locked {
		t.Error("vertex buffer left locked")
	}

	le := binary.LittleEndian
	f := func(off int) float32 { return math.Float32frombits(le.Uint32(vb.data[off:])) }
	corners := [][4]float32{ // x, y, u, v
		{10, 20, 0, 0},
		{110, 20, 1, 0},
		{10, 70, 0, 1},
		{110, 70, 1, 1},
	}
	for i, c := range corners {
		base := i * overlay.VertexSize
		if f(base) != c[0] || f(base+4) != c[1] || f(base+8) != 0 {
			t.Errorf("vertex %d position = %v,%v,%v", i, f(base), f(base+4), f(base+8))
		}
		if f(base+12) != 1 {
			t.Errorf("vertex %d rhw = %v", i, f(base+12))
		}
		if le.Uint32(vb.data[base+16:]) != 0xFFFF0000 {
			t.Errorf("vertex %d color = %#x", i, le.Uint32(vb.data[base+16:]))
		}
		if f(base+20) != c[2] || f(base+24) != c[3] {
			t.Errorf("vertex %d texcoord = %v,%v", i, f(base+20), f(base+24))
		}
	}

	ib := dev.ibs[0]
	for i := 0; i < 4; i++ {
		if got := le.Uint16(ib.data[2*i:]); got != uint16(i) {
			t.Errorf("index %d = %d", i, got)
		}
	}
}

func TestInitProjection(t *testing.T) {
	b := initBox(t, newMockDevice())

	if b.View() != mgl32.Translate3D(0, 0, 2) {
		t.Errorf("View() = %v", b.View())
	}
	want := overlay.PerspectiveFovLH(mgl32.DegToRad(75), 1, 0.01, 100)
	if !b.Projection().ApproxEqual(want) {
		t.Errorf("Projection() = %v, want %v", b.Projection(), want)
	}

	b = initBox(t, newMockDevice(), overlay.WithAspect(1366.0/768.0), overlay.WithFieldOfView(60))
	want = overlay.PerspectiveFovLH(mgl32.DegToRad(60), 1366.0/768.0, 0.01, 100)
	if !b.Projection().ApproxEqual(want) {
		t.Errorf("Projection() with options = %v, want %v", b.Projection(), want)
	}
}

func TestInitInvalidArguments(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	tests := []struct {
		name string
		dev  overlay.Device
		w, h float32
		x, y float32
	}{
		{"nil device", nil, 1, 1, 0, 0},
		{"nan width", newMockDevice(), nan, 1, 0, 0},
		{"inf x", newMockDevice(), 1, 1, inf, 0},
		{"inf height", newMockDevice(), 1, -inf, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := overlay.New()
			err := b.Init(tt.dev, "box.fx", tt.w, tt.h, tt.x, tt.y, overlay.ColorWhite)
			if !errors.Is(err, overlay.ErrInvalidArgument) {
				t.Fatalf("Init error = %v, want ErrInvalidArgument", err)
			}
			if b.Visible() {
				t.Error("box visible after failed Init")
			}
		})
	}
}

func TestInitFailureRollsBack(t *testing.T) {
	tests := []struct {
		name   string
		set    func(*mockDevice)
		wantVB int // vertex buffers created
	}{
		{"vertex buffer", func(d *mockDevice) { d.failVB = true }, 0},
		{"index buffer", func(d *mockDevice) { d.failIB = true }, 1},
		{"layout", func(d *mockDevice) { d.failLayout = true }, 1},
		{"effect", func(d *mockDevice) { d.failEffect = true }, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			dev := newMockDevice()
			tt.set(dev)

			b := overlay.New(overlay.WithLogger(log.NewWriter(&buf, slog.LevelDebug)))
			if err := b.Init(dev, "box.fx", 100, 50, 10, 20, overlay.ColorRed); err == nil {
				t.Fatal("Init should fail")
			}
			if b.Visible() {
				t.Error("box visible after failed Init")
			}
			if b.Initialized() {
				t.Error("box holds resources after failed Init")
			}
			if len(dev.vbs) != tt.wantVB {
				t.Errorf("created %d vertex buffers, want %d", len(dev.vbs), tt.wantVB)
			}
			for _, vb := range dev.vbs {
				if vb.released != 1 {
					t.Errorf("vertex buffer released %d times, want 1", vb.released)
				}
			}
			for _, ib := range dev.ibs {
				if ib.released != 1 {
					t.Errorf("index buffer released %d times, want 1", ib.released)
				}
			}
			for _, l := range dev.layouts {
				if l.released != 1 {
					t.Errorf("layout released %d times, want 1", l.released)
				}
			}
			if !strings.Contains(buf.String(), "Box.Init") {
				t.Errorf("failure not logged: %q", buf.String())
			}
		})
	}
}

func TestInitEffectErrorCarriesLog(t *testing.T) {
	var buf bytes.Buffer
	dev := newMockDevice()
	dev.failEffect = true

	b := overlay.New(overlay.WithLogger(log.NewWriter(&buf, slog.LevelDebug)))
	err := b.Init(dev, "missing.fx", 1, 1, 0, 0, overlay.ColorWhite)

	var ce *overlay.CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("Init error = %v, want *CompileError", err)
	}
	if ce.Path != "missing.fx" {
		t.Errorf("CompileError.Path = %q", ce.Path)
	}
	if !strings.Contains(buf.String(), "syntax error") {
		t.Errorf("compiler log not logged: %q", buf.String())
	}
}

func TestFailedInitNeverDraws(t *testing.T) {
	dev := newMockDevice()
	dev.failEffect = true

	b := overlay.New()
	_ = b.Init(dev, "unreadable.fx", 100, 50, 10, 20, overlay.ColorRed)

	b.Show(true)
	b.Draw()
	if dev.drawCalls() != 0 {
		t.Errorf("draw calls after failed Init = %d, want 0", dev.drawCalls())
	}
}

func TestDrawBeforeInit(t *testing.T) {
	b := overlay.New()
	b.Show(true)
	b.Draw() // must not panic on nil resources
}

func TestDrawSequence(t *testing.T) {
	dev := newMockDevice()
	dev.passes = 2
	b := initBox(t, dev)
	dev.calls = nil

	b.Draw()

	pass := []string{"BeginPass", "SetMatrix", "SetVertexLayout", "SetStreamSource", "SetIndices", "CommitChanges", "DrawIndexed", "EndPass"}
	want := append([]string{"Begin"}, pass...)
	want = append(want, pass...)
	want = append(want, "End")
	if strings.Join(dev.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls =\n%v\nwant\n%v", dev.calls, want)
	}

	for _, d := range dev.draws {
		if d.prim != overlay.TriangleStrip || d.numVertices != 4 || d.primCount != 2 || d.stride != overlay.VertexSize {
			t.Errorf("draw = %+v", d)
		}
	}

	got := dev.effects[0].matrices[overlay.WorldViewProjParam]
	if !got.ApproxEqual(b.WorldViewProj()) {
		t.Errorf("WorldViewProj = %v, want %v", got, b.WorldViewProj())
	}
}

func TestDrawUsesWorld(t *testing.T) {
	dev := newMockDevice()
	b := initBox(t, dev)

	world := mgl32.Translate3D(5, 6, 0)
	b.SetWorld(world)
	b.Draw()

	want := b.Projection().Mul4(b.View()).Mul4(world)
	if got := dev.effects[0].matrices[overlay.WorldViewProjParam]; !got.ApproxEqual(want) {
		t.Errorf("WorldViewProj = %v, want %v", got, want)
	}
}

func TestDrawFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	dev := newMockDevice()
	dev.failDraw = true
	b := initBox(t, dev, overlay.WithLogger(log.NewWriter(&buf, slog.LevelDebug)))

	b.Draw()
	b.Draw()

	if dev.drawCalls() != 2 {
		t.Errorf("draw calls = %d, want 2", dev.drawCalls())
	}
	if strings.Count(buf.String(), "DrawIndexed failed") != 2 {
		t.Errorf("expected two logged failures, got %q", buf.String())
	}
}

func TestShow(t *testing.T) {
	dev := newMockDevice()
	b := initBox(t, dev)

	b.Show(false)
	dev.calls = nil
	b.Draw()
	if len(dev.calls) != 0 {
		t.Errorf("hidden box made device calls: %v", dev.calls)
	}

	b.Show(true)
	b.Draw()
	if dev.drawCalls() != 1 {
		t.Errorf("draw calls after Show(true) = %d, want 1", dev.drawCalls())
	}
}

func TestDestroyIdempotent(t *testing.T) {
	dev := newMockDevice()
	b := initBox(t, dev)

	b.Destroy()
	b.Destroy()

	if dev.vbs[0].released != 1 || dev.ibs[0].released != 1 ||
		dev.layouts[0].released != 1 || dev.effects[0].released != 1 {
		t.Errorf("release counts vb=%d ib=%d layout=%d effect=%d, want 1 each",
			dev.vbs[0].released, dev.ibs[0].released, dev.layouts[0].released, dev.effects[0].released)
	}
	if b.Initialized() {
		t.Error("box still initialized after Destroy")
	}

	b.Show(true)
	b.Draw()
	if dev.drawCalls() != 0 {
		t.Error("destroyed box drew")
	}
}

func TestReinitReleasesPrevious(t *testing.T) {
	dev := newMockDevice()
	b := initBox(t, dev)

	if err := b.Init(dev, "other.fx", 1, 2, 3, 4, overlay.ColorBlue); err != nil {
		t.Fatalf("second Init: %v", err)
	}
	if dev.vbs[0].released != 1 || dev.effects[0].released != 1 {
		t.Error("first resource set not released on re-Init")
	}
	if dev.vbs[1].released != 0 || dev.effects[1].released != 0 {
		t.Error("second resource set released")
	}

	// A failed re-Init keeps the working set.
	dev.failEffect = true
	if err := b.Init(dev, "bad.fx", 1, 1, 0, 0, overlay.ColorBlue); err == nil {
		t.Fatal("Init should fail")
	}
	if !b.Initialized() || b.Rect() != (overlay.Rect{Left: 3, Top: 4, Right: 4, Bottom: 6}) {
		t.Error("failed re-Init disturbed the existing box")
	}
}

func TestLostResetRoundTrip(t *testing.T) {
	dev := newMockDevice()
	b := initBox(t, dev)

	if err := b.OnLostDevice(); err != nil {
		t.Fatalf("OnLostDevice: %v", err)
	}
	if !dev.effects[0].lost {
		t.Error("effect not notified of device loss")
	}
	b.Draw()
	if dev.drawCalls() != 0 {
		t.Error("box drew while device lost")
	}

	if err := b.OnResetDevice(); err != nil {
		t.Fatalf("OnResetDevice: %v", err)
	}
	b.Draw()
	if dev.drawCalls() != 1 {
		t.Errorf("draw calls after reset = %d, want 1", dev.drawCalls())
	}
	if len(dev.effects) != 1 {
		t.Error("reset re-created the effect")
	}
}

func TestReinitWhileLost(t *testing.T) {
	dev := newMockDevice()
	b := initBox(t, dev)

	if err := b.OnLostDevice(); err != nil {
		t.Fatalf("OnLostDevice: %v", err)
	}
	if err := b.Init(dev, "fx/box.fx", 10, 10, 0, 0, overlay.ColorBlue); err != nil {
		t.Fatalf("re-Init: %v", err)
	}
	b.Draw()
	if dev.drawCalls() != 0 {
		t.Errorf("draw calls after re-Init while lost = %d, want 0", dev.drawCalls())
	}

	if err := b.OnResetDevice(); err != nil {
		t.Fatalf("OnResetDevice: %v", err)
	}
	b.Draw()
	if dev.drawCalls() != 1 {
		t.Errorf("draw calls after reset = %d, want 1", dev.drawCalls())
	}
}

func TestLostResetWithoutEffect(t *testing.T) {
	b := overlay.New()
	if err := b.OnLostDevice(); !errors.Is(err, overlay.ErrNoEffect) {
		t.Errorf("OnLostDevice = %v, want ErrNoEffect", err)
	}
	if err := b.OnResetDevice(); !errors.Is(err, overlay.ErrNoEffect) {
		t.Errorf("OnResetDevice = %v, want ErrNoEffect", err)
	}
}

func TestFitToScreen(t *testing.T) {
	const w, h float32 = 800, 600
	b := initBox(t, newMockDevice(), overlay.WithAspect(w/h))
	b.FitToScreen(w, h)

	ndc := func(x, y float32) mgl32.Vec2 {
		p := b.WorldViewProj().Mul4x1(mgl32.Vec4{x, y, 0, 1})
		return mgl32.Vec2{p.X() / p.W(), p.Y() / p.W()}
	}
	tests := []struct {
		x, y float32
		want mgl32.Vec2
	}{
		{0, 0, mgl32.Vec2{-1, 1}},
		{w, h, mgl32.Vec2{1, -1}},
		{w / 2, h / 2, mgl32.Vec2{0, 0}},
	}
	for _, tt := range tests {
		if got := ndc(tt.x, tt.y); !got.ApproxEqualThreshold(tt.want, 1e-4) {
			t.Errorf("pixel (%v,%v) -> ndc %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}

	before := b.World()
	b.FitToScreen(0, h)
	if b.World() != before {
		t.Error("FitToScreen with zero width changed the world transform")
	}
}
