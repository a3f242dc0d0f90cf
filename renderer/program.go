package renderer

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	gst "github.com/richinsley/goshadertranslator"

	"github.com/richinsley/tiledl/shader"
	xlate "github.com/richinsley/tiledl/translator"
)

// program is a linked shader program with its uniform locations resolved.
type program struct {
	id       uint32
	uniforms map[string]int32
}

// buildProgram translates fragmentSource, links it against the quad vertex
// stage and resolves the named uniforms. Vertex uniforms keep their names;
// fragment uniforms are looked up through the translator's mapping.
func buildProgram(isGLES bool, fragmentSource string, names ...string) (*program, error) {
	code, vars, err := xlate.Fragment(fragmentSource, isGLES)
	if err != nil {
		return nil, err
	}
	id, err := newProgram(shader.GenerateVertexShader(isGLES), code)
	if err != nil {
		return nil, err
	}
	p := &program{id: id, uniforms: make(map[string]int32, len(names)+1)}
	gl.UseProgram(id)
	p.uniforms[shader.UniformNDC] = gl.GetUniformLocation(id, gl.Str(shader.UniformNDC+"\x00"))
	for _, name := range names {
		p.uniforms[name] = uniformLocation(vars, id, name)
	}
	return p, nil
}

func uniformLocation(vars map[string]gst.ShaderVariable, id uint32, name string) int32 {
	if v, ok := vars[name]; ok {
		return gl.GetUniformLocation(id, gl.Str(v.MappedName+"\x00"))
	}
	return -1
}

func (p *program) loc(name string) int32 {
	if l, ok := p.uniforms[name]; ok {
		return l
	}
	return -1
}

func (p *program) delete() {
	if p != nil && p.id != 0 {
		gl.DeleteProgram(p.id)
		p.id = 0
	}
}

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program: %v", log)
	}

	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %v", logText)
	}
	return shader, nil
}
