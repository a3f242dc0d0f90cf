package shader

// ────────────────────────────────── Desktop GL ──────────────────────────────────

// The vertex stage maps the unit quad (or the two-point line) onto u_ndc,
// given as (x0, y0, x1, y1) in normalised device coordinates. It is compiled
// as written, so its uniform names are not mangled.
const vertexShaderSourceGL = `#version 410 core
layout (location = 0) in vec2 in_vert;
uniform vec4 u_ndc;
void main() {
    vec2 t = in_vert * 0.5 + 0.5;
    gl_Position = vec4(mix(u_ndc.xy, u_ndc.zw, t), 0.0, 1.0);
}
`

// ──────────────────────────────────── GLES ──────────────────────────────────────

const vertexShaderSourceGLES = `#version 300 es
layout (location = 0) in vec2 in_vert;
uniform vec4 u_ndc;
void main() {
    vec2 t = in_vert * 0.5 + 0.5;
    gl_Position = vec4(mix(u_ndc.xy, u_ndc.zw, t), 0.0, 1.0);
}
`

// ──────────────────────────── WebGL2 fragment sources ───────────────────────────
//
// Fragment stages are written once for WebGL2 and translated for the target
// context. They read no varyings; texture coordinates come from gl_FragCoord.

const solidFragmentSource = `#version 300 es
precision highp float;

uniform vec4 u_color;
out vec4 fragColor;

void main(void)
{
    fragColor = u_color;
}
`

// u_dst is the destination rectangle in framebuffer pixels with a bottom-left
// origin (x, y, w, h). u_src is the source rectangle in texture coordinates.
const textureFragmentSource = `#version 300 es
precision highp float;

uniform sampler2D u_texture;
uniform vec4 u_dst;
uniform vec4 u_src;
uniform vec4 u_mod;
out vec4 fragColor;

void main(void)
{
    vec2 t = (gl_FragCoord.xy - u_dst.xy) / u_dst.zw;
    t.y = 1.0 - t.y;
    fragColor = texture(u_texture, u_src.xy + t * u_src.zw) * u_mod;
}
`

// ────────────────────────────────── Public API ─────────────────────────────────

// Uniform names used by the programs built from this package.
const (
	UniformNDC     = "u_ndc"
	UniformColor   = "u_color"
	UniformTexture = "u_texture"
	UniformDst     = "u_dst"
	UniformSrc     = "u_src"
	UniformMod     = "u_mod"
)

func GenerateVertexShader(isGLES bool) string {
	if isGLES {
		return vertexShaderSourceGLES
	}
	return vertexShaderSourceGL
}

// GetSolidFragmentShader returns the untranslated flat colour fragment stage.
func GetSolidFragmentShader() string {
	return solidFragmentSource
}

// GetTextureFragmentShader returns the untranslated textured-quad fragment stage.
func GetTextureFragmentShader() string {
	return textureFragmentSource
}
