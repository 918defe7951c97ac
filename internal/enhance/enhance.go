// Package enhance adds a searchable text layer to scanned PDFs via ocrmypdf.
package enhance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jatenx/invoice-pipeline/internal/common"
	"github.com/jatenx/invoice-pipeline/internal/ocr"
)

type Config struct {
	Binary    string        // ocrmypdf binary, default "ocrmypdf"
	Language  string        // OCR language code, default "spa"
	Timeout   time.Duration // per-document cap, default 300s
	OutputDir string        // base dir for enhanced PDFs, default "ocr_processed"
}

// Result describes one enhanced document.
type Result struct {
	SourcePath string
	OutputPath string
	SizeKB     float64
	Duration   time.Duration
}

type Enhancer struct {
	cfg    Config
	runner ocr.Runner
	logger *slog.Logger
}

// New probes the ocrmypdf install and returns a ready Enhancer. A missing or
// broken toolchain is a setup error: the batch must not proceed.
func New(cfg Config, logger *slog.Logger) (*Enhancer, error) {
	return newWithRunner(cfg, ocr.ExecRunner{}, logger)
}

func newWithRunner(cfg Config, runner ocr.Runner, logger *slog.Logger) (*Enhancer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Binary == "" {
		cfg.Binary = "ocrmypdf"
	}
	if cfg.Language == "" {
		cfg.Language = "spa"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 300 * time.Second
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "ocr_processed"
	}

	e := &Enhancer{cfg: cfg, runner: runner, logger: logger}

	probeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, _, err := e.runner.Run(probeCtx, cfg.Binary, "--version"); err != nil {
		return nil, common.NewSetupError(
			"ocrmypdf is not installed (requires tesseract and ghostscript)", err)
	}
	return e, nil
}

// EnhanceFile runs ocrmypdf on one PDF, writing the result under
// <OutputDir>/<partition>/<name>. The per-document timeout turns a stuck
// document into a normal failure, not a batch abort.
func (e *Enhancer) EnhanceFile(ctx context.Context, pdfPath, partition string) (Result, error) {
	start := time.Now()

	if _, err := os.Stat(pdfPath); err != nil {
		return Result{SourcePath: pdfPath}, common.NewNotFoundError(fmt.Sprintf("file not found: %s", pdfPath))
	}

	outDir := e.cfg.OutputDir
	if partition != "" {
		outDir = filepath.Join(outDir, partition)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Result{SourcePath: pdfPath}, common.NewDocumentError("create output dir", err)
	}
	outPath := filepath.Join(outDir, filepath.Base(pdfPath))

	runCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	// ocrmypdf --language spa --force-ocr --output-type pdf <in> <out>
	_, errb, err := e.runner.Run(runCtx, e.cfg.Binary,
		"--language", e.cfg.Language,
		"--force-ocr",
		"--output-type", "pdf",
		pdfPath, outPath,
	)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return Result{SourcePath: pdfPath}, common.NewDocumentError(
				fmt.Sprintf("enhancement timeout after %s (file may be too large)", e.cfg.Timeout), err)
		}
		return Result{SourcePath: pdfPath}, common.NewDocumentError(
			fmt.Sprintf("ocrmypdf failed: %s", truncateStderr(string(errb))), err)
	}

	res := Result{
		SourcePath: pdfPath,
		OutputPath: outPath,
		Duration:   time.Since(start),
	}
	if st, statErr := os.Stat(outPath); statErr == nil {
		res.SizeKB = float64(st.Size()) / 1024
	}

	e.logger.Info("enhance.ok",
		"source", pdfPath,
		"output", outPath,
		"size_kb", res.SizeKB,
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// OutputDir returns the base directory for enhanced PDFs.
func (e *Enhancer) OutputDir() string {
	return e.cfg.OutputDir
}

func truncateStderr(s string) string {
	const max = 2 << 10
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
