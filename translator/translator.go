// Package translator turns WebGL2 fragment sources into the GLSL dialect of
// the current context. One translator instance is shared by the process.
package translator

import (
	"context"
	"fmt"
	"sync"

	gst "github.com/richinsley/goshadertranslator"
)

var (
	once       sync.Once
	translator *gst.ShaderTranslator
	initErr    error
)

// Get returns the shared translator, creating it on first use.
func Get() (*gst.ShaderTranslator, error) {
	once.Do(func() {
		translator, initErr = gst.NewShaderTranslator(context.Background())
	})
	return translator, initErr
}

// Fragment translates a WebGL2 fragment shader for desktop GL 4.1, or for
// GLES 3 when gles is set. Uniform names in the output are mangled; look
// them up through the returned variables' MappedName.
func Fragment(src string, gles bool) (string, map[string]gst.ShaderVariable, error) {
	t, err := Get()
	if err != nil {
		return "", nil, fmt.Errorf("shader translator unavailable: %w", err)
	}
	outputFormat := gst.OutputFormatGLSL410
	if gles {
		outputFormat = gst.OutputFormatESSL
	}
	fsShader, err := t.TranslateShader(src, "fragment", gst.ShaderSpecWebGL2, outputFormat)
	if err != nil {
		return "", nil, fmt.Errorf("fragment shader translation failed: %w", err)
	}
	return fsShader.Code, fsShader.Variables, nil
}
