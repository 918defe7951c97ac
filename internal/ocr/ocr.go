package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/jatenx/invoice-pipeline/constants"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Language string // tesseract language, default "spa"
	DPI      int    // rasterization DPI for scanned PDFs, default 300
	MaxPages int    // 0 = no limit

	// ForceOCR skips the text-layer fast path and always rasterizes. Scanned
	// invoices often carry a garbage text layer, so the pipeline sets this
	// when the document has not been enhanced first.
	ForceOCR bool
}

type Result struct {
	Text     string
	Pages    int
	Method   string // "pdf-text" | "pdf-ocr"
	Language string
	Duration time.Duration
	Warnings []string
}

// Extractor implements recognize(pdfPath) -> rawText over the poppler and
// tesseract toolchain.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "spa"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{cfg: cfg, runner: ExecRunner{}, logger: logger}
}

// WithRunner swaps the command runner; used by tests.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// Extract returns the document's text: the embedded text layer when present
// and usable, otherwise rasterized OCR page by page.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	if !constants.IsPDFExt(ext) {
		e.logger.Error("unsupported extension", "path", path, "ext", ext)
		return Result{}, fmt.Errorf("unsupported extension: %q", ext)
	}
	e.logger.Debug("starting text extraction", "path", path, "force_ocr", e.cfg.ForceOCR)

	var res Result
	var err error
	if !e.cfg.ForceOCR {
		res, err = e.textLayer(ctx, path)
		if err == nil && usableText(res.Text) {
			res.Duration = time.Since(start)
			res.Language = e.cfg.Language
			return res, nil
		}
		if err != nil {
			res.Warnings = append(res.Warnings, err.Error())
		}
	}

	warns := res.Warnings
	res, err = e.rasterOCR(ctx, path)
	res.Warnings = append(warns, res.Warnings...)
	res.Duration = time.Since(start)
	res.Language = e.cfg.Language
	return res, err
}

// usableText reports whether a text layer carries enough real content to
// skip rasterized OCR.
func usableText(text string) bool {
	return len(strings.TrimSpace(text)) >= 32
}
