package opengl

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-auto/overlay"
)

// Effect is an overlay effect compiled into one GL program per pass.
// The parsed source is kept so the programs can be rebuilt after a
// device reset.
type Effect struct {
	src      *overlay.EffectSource
	programs []uint32
	uniforms []map[string]int32 // per pass, cached locations

	current     int
	lastProgram int32
	pending     map[string]mgl32.Mat4
}

var _ overlay.Effect = (*Effect)(nil)

// compile builds every pass program. On failure no programs are left
// behind.
func (e *Effect) compile() error {
	programs := make([]uint32, 0, len(e.src.Passes))
	for i, name := range e.src.Passes {
		prog, err := createShaderProgram(
			e.src.StageSource(i, overlay.StageVertex),
			e.src.StageSource(i, overlay.StageFragment),
		)
		if err != nil {
			for _, p := range programs {
				gl.DeleteProgram(p)
			}
			return &overlay.CompileError{Path: e.src.Path, Log: fmt.Sprintf("pass %s: %v", name, err)}
		}
		programs = append(programs, prog)
	}

	e.programs = programs
	e.uniforms = make([]map[string]int32, len(programs))
	for i := range e.uniforms {
		e.uniforms[i] = make(map[string]int32)
	}
	return nil
}

func (e *Effect) deletePrograms() {
	for _, p := range e.programs {
		gl.DeleteProgram(p)
	}
	e.programs = nil
	e.uniforms = nil
	e.current = -1
}

// Passes returns the pass names.
func (e *Effect) Passes() []string { return e.src.Passes }

// Begin implements overlay.Effect.
func (e *Effect) Begin() (int, error) {
	if e.programs == nil {
		return 0, overlay.ErrDeviceLost
	}
	gl.GetIntegerv(gl.CURRENT_PROGRAM, &e.lastProgram)
	return len(e.programs), nil
}

// BeginPass implements overlay.Effect.
func (e *Effect) BeginPass(pass int) error {
	if pass < 0 || pass >= len(e.programs) {
		return fmt.Errorf("pass %d out of range [0, %d)", pass, len(e.programs))
	}
	gl.UseProgram(e.programs[pass])
	e.current = pass
	return nil
}

// SetMatrix implements overlay.Effect. Matrices are uploaded as-is
// (column-major) on CommitChanges.
func (e *Effect) SetMatrix(name string, m mgl32.Mat4) error {
	if name == "" {
		return errors.New("empty parameter name")
	}
	e.pending[name] = m
	return nil
}

// CommitChanges implements overlay.Effect.
func (e *Effect) CommitChanges() error {
	if e.current < 0 {
		return errors.New("CommitChanges outside a pass")
	}
	prog := e.programs[e.current]
	cache := e.uniforms[e.current]

	var errs []error
	for name, m := range e.pending {
		loc, ok := cache[name]
		if !ok {
			loc = gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
			cache[name] = loc
		}
		if loc < 0 {
			errs = append(errs, fmt.Errorf("pass %s has no uniform %q", e.src.Passes[e.current], name))
			continue
		}
		gl.UniformMatrix4fv(loc, 1, false, &m[0])
	}
	return errors.Join(errs...)
}

// EndPass implements overlay.Effect.
func (e *Effect) EndPass() error {
	if e.current < 0 {
		return errors.New("EndPass without BeginPass")
	}
	e.current = -1
	return nil
}

// End implements overlay.Effect. It restores the program that was
// current at Begin.
func (e *Effect) End() error {
	gl.UseProgram(uint32(e.lastProgram))
	e.current = -1
	return nil
}

// OnLostDevice implements overlay.Effect by deleting the programs.
func (e *Effect) OnLostDevice() error {
	e.deletePrograms()
	return nil
}

// OnResetDevice implements overlay.Effect by recompiling the programs.
func (e *Effect) OnResetDevice() error {
	if e.programs != nil {
		return nil
	}
	return e.compile()
}

// Release deletes the programs.
func (e *Effect) Release() {
	e.deletePrograms()
	clear(e.pending)
}

// createShaderProgram compiles and links a shader program.
func createShaderProgram(vertexSource, fragmentSource string) (uint32, error) {
	vertexShader, err := compileShader(gl.VERTEX_SHADER, vertexSource)
	if err != nil {
		return 0, fmt.Errorf("vertex shader compilation failed: %w", err)
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(gl.FRAGMENT_SHADER, fragmentSource)
	if err != nil {
		return 0, fmt.Errorf("fragment shader compilation failed: %w", err)
	}
	defer gl.DeleteShader(fragmentShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength+1)
		gl.GetProgramInfoLog(program, logLength, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("shader program linking failed: %s", gl.GoStr(&log[0]))
	}

	// Shaders are deleted once linked into the program.
	gl.DetachShader(program, vertexShader)
	gl.DetachShader(program, fragmentShader)

	return program, nil
}

func compileShader(kind uint32, source string) (uint32, error) {
	shader := gl.CreateShader(kind)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength+1)
		gl.GetShaderInfoLog(shader, logLength, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, errors.New(gl.GoStr(&log[0]))
	}
	return shader, nil
}
