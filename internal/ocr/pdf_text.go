package ocr

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/ledongthuc/pdf"
)

// textLayer reads the PDF's embedded text layer. pdftotext is preferred for
// its -layout fidelity; when the binary is not installed we fall back to a
// pure-Go read so a missing poppler install degrades instead of failing.
func (e *Extractor) textLayer(ctx context.Context, path string) (Result, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err == nil {
		text := string(out)
		// A form-feed \f is used as page separator by default
		return Result{Text: text, Pages: 1 + strings.Count(text, "\f"), Method: "pdf-text"}, nil
	}
	if !errors.Is(err, exec.ErrNotFound) {
		return Result{Method: "pdf-text", Warnings: []string{string(errb)}}, err
	}

	e.logger.Debug("pdftotext unavailable, reading text layer in-process", "path", path)
	text, pages, err := embeddedText(path)
	if err != nil {
		return Result{Method: "pdf-text"}, err
	}
	return Result{Text: text, Pages: pages, Method: "pdf-text"}, nil
}

func embeddedText(path string) (string, int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer func() {
		_ = f.Close()
	}()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", 0, err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", 0, err
	}
	return buf.String(), r.NumPage(), nil
}
