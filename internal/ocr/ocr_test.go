package ocr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner scripts external commands per binary name.
type fakeRunner struct {
	calls []string
	run   func(name string, args []string) ([]byte, []byte, error)
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, name)
	return f.run(name, args)
}

func TestExtractUsesTextLayer(t *testing.T) {
	text := "FACTURA\nF-100\npagina uno\f pagina dos con contenido"
	r := &fakeRunner{run: func(name string, args []string) ([]byte, []byte, error) {
		require.Equal(t, "pdftotext", name)
		return []byte(text), nil, nil
	}}

	e := NewExtractor(Config{}, nil).WithRunner(r)
	res, err := e.Extract(context.Background(), "doc.pdf")
	require.NoError(t, err)

	assert.Equal(t, "pdf-text", res.Method)
	assert.Equal(t, text, res.Text)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, []string{"pdftotext"}, r.calls)
}

func TestExtractFallsBackToRasterOCR(t *testing.T) {
	r := &fakeRunner{}
	r.run = func(name string, args []string) ([]byte, []byte, error) {
		switch name {
		case "pdftotext":
			// a scan with no usable text layer
			return []byte("  \n "), nil, nil
		case "pdftoppm":
			prefix := args[len(args)-1]
			require.NoError(t, os.WriteFile(prefix+"-1.png", []byte("png"), 0o644))
			require.NoError(t, os.WriteFile(prefix+"-2.png", []byte("png"), 0o644))
			return nil, nil, nil
		case "tesseract":
			return []byte("texto de la pagina\n"), nil, nil
		}
		return nil, nil, fmt.Errorf("unexpected command %s", name)
	}

	e := NewExtractor(Config{Language: "spa"}, nil).WithRunner(r)
	res, err := e.Extract(context.Background(), "scan.pdf")
	require.NoError(t, err)

	assert.Equal(t, "pdf-ocr", res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.Contains(t, res.Text, "--- Page 1 ---")
	assert.Contains(t, res.Text, "--- Page 2 ---")
	assert.Contains(t, res.Text, "texto de la pagina")
	assert.Equal(t, "spa", res.Language)
}

func TestExtractForceOCRSkipsTextLayer(t *testing.T) {
	r := &fakeRunner{}
	r.run = func(name string, args []string) ([]byte, []byte, error) {
		switch name {
		case "pdftoppm":
			prefix := args[len(args)-1]
			require.NoError(t, os.WriteFile(prefix+"-1.png", []byte("png"), 0o644))
			return nil, nil, nil
		case "tesseract":
			return []byte("contenido"), nil, nil
		}
		return nil, nil, fmt.Errorf("unexpected command %s", name)
	}

	e := NewExtractor(Config{ForceOCR: true}, nil).WithRunner(r)
	res, err := e.Extract(context.Background(), "scan.pdf")
	require.NoError(t, err)

	assert.Equal(t, "pdf-ocr", res.Method)
	assert.NotContains(t, r.calls, "pdftotext")
}

func TestExtractTesseractPageFailureIsWarning(t *testing.T) {
	r := &fakeRunner{}
	pages := 0
	r.run = func(name string, args []string) ([]byte, []byte, error) {
		switch name {
		case "pdftoppm":
			prefix := args[len(args)-1]
			require.NoError(t, os.WriteFile(prefix+"-1.png", []byte("png"), 0o644))
			require.NoError(t, os.WriteFile(prefix+"-2.png", []byte("png"), 0o644))
			return nil, nil, nil
		case "tesseract":
			pages++
			if pages == 1 {
				return nil, []byte("boom"), fmt.Errorf("exit status 1")
			}
			return []byte("pagina dos"), nil, nil
		}
		return nil, nil, fmt.Errorf("unexpected command %s", name)
	}

	e := NewExtractor(Config{ForceOCR: true}, nil).WithRunner(r)
	res, err := e.Extract(context.Background(), "scan.pdf")
	require.NoError(t, err)

	assert.Contains(t, res.Text, "pagina dos")
	assert.NotEmpty(t, res.Warnings)
}

func TestExtractNoPagesRendered(t *testing.T) {
	r := &fakeRunner{}
	r.run = func(name string, args []string) ([]byte, []byte, error) {
		return nil, nil, nil // pdftoppm succeeds but writes nothing
	}

	e := NewExtractor(Config{ForceOCR: true}, nil).WithRunner(r)
	_, err := e.Extract(context.Background(), "scan.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no pages rendered")
}

func TestExtractRejectsNonPDF(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	_, err := e.Extract(context.Background(), "notes.docx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported extension")
}

func TestExtractMaxPages(t *testing.T) {
	r := &fakeRunner{}
	ocrCalls := 0
	r.run = func(name string, args []string) ([]byte, []byte, error) {
		switch name {
		case "pdftoppm":
			prefix := args[len(args)-1]
			for i := 1; i <= 5; i++ {
				require.NoError(t, os.WriteFile(fmt.Sprintf("%s-%d.png", prefix, i), []byte("png"), 0o644))
			}
			return nil, nil, nil
		case "tesseract":
			ocrCalls++
			return []byte("pagina"), nil, nil
		}
		return nil, nil, fmt.Errorf("unexpected command %s", name)
	}

	e := NewExtractor(Config{ForceOCR: true, MaxPages: 2}, nil).WithRunner(r)
	res, err := e.Extract(context.Background(), "scan.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, 2, ocrCalls)
}

func TestExtractPdftotextErrorPropagates(t *testing.T) {
	r := &fakeRunner{}
	r.run = func(name string, args []string) ([]byte, []byte, error) {
		switch name {
		case "pdftotext":
			return nil, []byte("Syntax Error: corrupt file"), fmt.Errorf("exit status 1")
		case "pdftoppm":
			return nil, []byte("corrupt"), fmt.Errorf("exit status 1")
		}
		return nil, nil, fmt.Errorf("unexpected command %s", name)
	}

	e := NewExtractor(Config{}, nil).WithRunner(r)
	_, err := e.Extract(context.Background(), "bad.pdf")
	require.Error(t, err)
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", 100)
	assert.Equal(t, long, truncate(long, 100))
	assert.Equal(t, "xxx...(truncated)", truncate("xxxxx", 3))
}

// exec.ErrNotFound routing is what keeps a missing poppler install from
// failing the text-layer probe outright.
func TestTextLayerMissingBinary(t *testing.T) {
	r := &fakeRunner{}
	r.run = func(name string, args []string) ([]byte, []byte, error) {
		return nil, nil, &exec.Error{Name: name, Err: exec.ErrNotFound}
	}

	e := NewExtractor(Config{}, nil).WithRunner(r)
	_, err := e.textLayer(context.Background(), "missing.pdf")
	// falls through to the in-process reader, which fails on a nonexistent
	// file rather than on the missing binary
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "pdftotext")
}
