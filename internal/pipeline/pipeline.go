// Package pipeline chains enhancement, OCR and parsing over batches of
// documents. Processing is strictly sequential; each document is independent
// and a per-document failure never aborts the batch.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jatenx/invoice-pipeline/constants"
	"github.com/jatenx/invoice-pipeline/internal/common"
	"github.com/jatenx/invoice-pipeline/internal/enhance"
	"github.com/jatenx/invoice-pipeline/internal/joblog"
	"github.com/jatenx/invoice-pipeline/internal/ocr"
	"github.com/jatenx/invoice-pipeline/internal/parser"
)

// FileResult is one document's outcome in a batch.
type FileResult struct {
	Source     string
	Status     string // constants.StatusSuccess | constants.StatusError
	OutputFile string
	Message    string
	Record     *parser.InvoiceRecord
}

// Summary aggregates a batch, ordered deterministically by sorted filename.
type Summary struct {
	Total       int
	Successful  int
	Failed      int
	FailedFiles []string
}

type Pipeline struct {
	enhancer *enhance.Enhancer
	ocr      *ocr.Extractor
	session  *parser.Session
	log      *joblog.Store
	textDir  string
	logger   *slog.Logger
}

// Config wires the pipeline's collaborators. Enhancer and Log may be nil for
// commands that do not use them.
type Config struct {
	Enhancer *enhance.Enhancer
	OCR      *ocr.Extractor
	Session  *parser.Session
	Log      *joblog.Store
	TextDir  string // base dir for extracted text, default "data_result"
}

func New(cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TextDir == "" {
		cfg.TextDir = "data_result"
	}
	return &Pipeline{
		enhancer: cfg.Enhancer,
		ocr:      cfg.OCR,
		session:  cfg.Session,
		log:      cfg.Log,
		textDir:  cfg.TextDir,
		logger:   logger,
	}
}

// EnhanceBatch adds a text layer to each PDF in source (file or directory).
func (p *Pipeline) EnhanceBatch(ctx context.Context, source, partition string) ([]FileResult, error) {
	files, err := listSources(source, constants.ExtPDF)
	if err != nil {
		return nil, err
	}
	if partition == "" {
		partition = parser.PartitionKeyFromPath(source)
	}

	var results []FileResult
	for _, path := range files {
		res, err := p.enhancer.EnhanceFile(ctx, path, partition)
		results = append(results, p.record(ctx, path, constants.StageEnhance, res.OutputPath, nil, err))
	}
	return results, nil
}

// ExtractBatch OCRs each PDF in source and writes the raw text under
// <textDir>/<partition>/<stem>.txt.
func (p *Pipeline) ExtractBatch(ctx context.Context, source, partition string) ([]FileResult, error) {
	files, err := listSources(source, constants.ExtPDF)
	if err != nil {
		return nil, err
	}
	if partition == "" {
		partition = parser.PartitionKeyFromPath(source)
	}

	var results []FileResult
	for _, path := range files {
		txtPath, err := p.extractOne(ctx, path, partition)
		results = append(results, p.record(ctx, path, constants.StageOCR, txtPath, nil, err))
	}
	return results, nil
}

// ParseBatch parses each OCR text file in source into a persisted record.
func (p *Pipeline) ParseBatch(ctx context.Context, source, partition string) ([]FileResult, error) {
	files, err := listSources(source, constants.ExtTXT)
	if err != nil {
		return nil, err
	}

	var results []FileResult
	for _, path := range files {
		rec, outPath, err := p.session.ParseFile(path, partition)
		results = append(results, p.record(ctx, path, constants.StageParse, outPath, rec, err))
	}
	return results, nil
}

// Run chains enhance, OCR and parse for each PDF in source, one document at
// a time. A stage failure marks that document failed and moves on.
func (p *Pipeline) Run(ctx context.Context, source, partition string) ([]FileResult, error) {
	files, err := listSources(source, constants.ExtPDF)
	if err != nil {
		return nil, err
	}
	if partition == "" {
		partition = parser.PartitionKeyFromPath(source)
	}

	var results []FileResult
	for _, path := range files {
		results = append(results, p.runOne(ctx, path, partition))
	}
	return results, nil
}

func (p *Pipeline) runOne(ctx context.Context, pdfPath, partition string) FileResult {
	workPath := pdfPath
	if p.enhancer != nil {
		enh, err := p.enhancer.EnhanceFile(ctx, pdfPath, partition)
		if r := p.record(ctx, pdfPath, constants.StageEnhance, enh.OutputPath, nil, err); r.Status == constants.StatusError {
			return r
		}
		workPath = enh.OutputPath
	}

	txtPath, err := p.extractOne(ctx, workPath, partition)
	if r := p.record(ctx, pdfPath, constants.StageOCR, txtPath, nil, err); r.Status == constants.StatusError {
		return r
	}

	rec, outPath, err := p.session.ParseFile(txtPath, partition)
	return p.record(ctx, pdfPath, constants.StageParse, outPath, rec, err)
}

func (p *Pipeline) extractOne(ctx context.Context, pdfPath, partition string) (string, error) {
	res, err := p.ocr.Extract(ctx, pdfPath)
	if err != nil {
		return "", common.NewDocumentError(fmt.Sprintf("ocr %s", filepath.Base(pdfPath)), err)
	}

	outDir := filepath.Join(p.textDir, partition)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", common.NewDocumentError("create text output dir", err)
	}
	stem := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	txtPath := filepath.Join(outDir, stem+constants.ExtTXT)
	if err := os.WriteFile(txtPath, []byte(res.Text), 0o644); err != nil {
		return "", common.NewDocumentError(fmt.Sprintf("write %s", txtPath), err)
	}

	p.logger.Info("pipeline.ocr.ok",
		"source", pdfPath,
		"output", txtPath,
		"method", res.Method,
		"pages", res.Pages,
		"bytes", len(res.Text),
	)
	return txtPath, nil
}

// record converts a stage outcome into a FileResult and mirrors it into the
// job log when one is attached.
func (p *Pipeline) record(ctx context.Context, source string, stage constants.Stage, output string, rec *parser.InvoiceRecord, err error) FileResult {
	r := FileResult{Source: source, OutputFile: output, Record: rec}
	if err != nil {
		r.Status = constants.StatusError
		r.Message = err.Error()
		r.OutputFile = ""
		p.logger.Error("pipeline.stage.failed", "stage", string(stage), "source", source, "error", err)
	} else {
		r.Status = constants.StatusSuccess
	}

	if p.log != nil {
		if _, logErr := p.log.Record(ctx, source, string(stage), r.Status, r.Message); logErr != nil {
			p.logger.Warn("pipeline.joblog.failed", "source", source, "error", logErr)
		}
	}
	return r
}

// Summarize aggregates per-document results into batch counts.
func Summarize(results []FileResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Status == constants.StatusSuccess {
			s.Successful++
		} else {
			s.Failed++
			s.FailedFiles = append(s.FailedFiles, filepath.Base(r.Source))
		}
	}
	return s
}

// listSources resolves a file-or-directory argument to a sorted list of
// files with the wanted extension. A missing path is a not-found error; a
// directory with no matching files is an empty (successful) batch.
func listSources(source, ext string) ([]string, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, common.NewNotFoundError(fmt.Sprintf("source not found: %s", source))
	}
	if !info.IsDir() {
		return []string{source}, nil
	}

	matches, err := filepath.Glob(filepath.Join(source, "*"+ext))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}
