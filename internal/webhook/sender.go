// Package webhook delivers processed PDFs to the remote collector endpoint.
package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jatenx/invoice-pipeline/constants"
	"github.com/jatenx/invoice-pipeline/internal/common"
)

type Config struct {
	URL     string        // collector endpoint; required
	Timeout time.Duration // per-request cap, default 120s for large files
	Delay   time.Duration // pacing delay between files in a batch, default 1s
}

// Result describes one delivery attempt.
type Result struct {
	File       string
	Success    bool
	StatusCode int
	Response   string
	Err        string
}

// Summary aggregates a directory send.
type Summary struct {
	Total   int
	Sent    int
	Failed  int
	Results []Result
}

type Sender struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// NewSender builds a sender for the configured endpoint. The endpoint always
// arrives through cfg; there is no package-level default to fall back to.
func NewSender(cfg Config, client *http.Client, logger *slog.Logger) (*Sender, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.URL == "" {
		return nil, common.NewAppError(common.CodeInvalidInput, "webhook URL is required", common.ErrInvalidInput)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Sender{cfg: cfg, client: client, logger: logger}, nil
}

// SendPDF posts one PDF as multipart form data with its metadata. Failures
// are returned in the Result, never panicked: a bad file or a down endpoint
// is a per-file outcome.
func (s *Sender) SendPDF(ctx context.Context, pdfPath string, metadata map[string]string) Result {
	name := filepath.Base(pdfPath)

	if _, err := os.Stat(pdfPath); err != nil {
		return Result{File: name, Err: fmt.Sprintf("file not found: %s", pdfPath)}
	}
	if !constants.IsPDFExt(filepath.Ext(pdfPath)) {
		return Result{File: name, Err: fmt.Sprintf("not a PDF file: %s", pdfPath)}
	}

	reqID := uuid.New().String()
	start := time.Now()

	body, contentType, err := buildMultipart(pdfPath, metadata)
	if err != nil {
		return Result{File: name, Err: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, body)
	if err != nil {
		return Result{File: name, Err: err.Error()}
	}
	req.Header.Set("Content-Type", contentType)

	s.logger.Info("webhook.send",
		"req_id", reqID,
		"url", s.cfg.URL,
		"file", name,
	)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("webhook.send_error",
			"req_id", reqID, "file", name,
			"error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return Result{File: name, Err: err.Error()}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			s.logger.Warn("webhook.body_close_error", "req_id", reqID, "error", cerr)
		}
	}()

	raw, _ := io.ReadAll(resp.Body)
	success := resp.StatusCode == http.StatusOK ||
		resp.StatusCode == http.StatusCreated ||
		resp.StatusCode == http.StatusAccepted

	s.logger.Info("webhook.response",
		"req_id", reqID,
		"file", name,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	res := Result{
		File:       name,
		Success:    success,
		StatusCode: resp.StatusCode,
		Response:   string(raw),
	}
	if !success {
		res.Err = fmt.Sprintf("non-2xx status: %d", resp.StatusCode)
	}
	return res
}

// SendDirectory delivers every PDF under dir, sorted by name, with the
// configured pacing delay between files. Per-file failures never abort the
// batch.
func (s *Sender) SendDirectory(ctx context.Context, dir string, recursive bool) (Summary, error) {
	files, err := listPDFs(dir, recursive)
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	sum.Total = len(files)
	for i, path := range files {
		res := s.SendPDF(ctx, path, nil)
		sum.Results = append(sum.Results, res)
		if res.Success {
			sum.Sent++
		} else {
			sum.Failed++
		}

		if i < len(files)-1 && s.cfg.Delay > 0 {
			select {
			case <-ctx.Done():
				return sum, ctx.Err()
			case <-time.After(s.cfg.Delay):
			}
		}
	}

	s.logger.Info("webhook.batch_done",
		"dir", dir,
		"total", sum.Total,
		"sent", sum.Sent,
		"failed", sum.Failed,
	)
	return sum, nil
}

// SendYear delivers one year partition under baseDir.
func (s *Sender) SendYear(ctx context.Context, baseDir, year string) (Summary, error) {
	yearDir := filepath.Join(baseDir, year)
	if _, err := os.Stat(yearDir); err != nil {
		return Summary{}, common.NewNotFoundError(fmt.Sprintf("year directory not found: %s", yearDir))
	}
	return s.SendDirectory(ctx, yearDir, false)
}

// SendAllYears delivers every numeric year partition under baseDir in order.
func (s *Sender) SendAllYears(ctx context.Context, baseDir string) (map[string]Summary, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, common.NewNotFoundError(fmt.Sprintf("base directory not found: %s", baseDir))
	}

	var years []string
	for _, e := range entries {
		if e.IsDir() && isDigits(e.Name()) {
			years = append(years, e.Name())
		}
	}
	sort.Strings(years)

	out := make(map[string]Summary, len(years))
	for _, y := range years {
		sum, err := s.SendYear(ctx, baseDir, y)
		if err != nil {
			return out, err
		}
		out[y] = sum
	}
	return out, nil
}

func buildMultipart(pdfPath string, metadata map[string]string) (*bytes.Buffer, string, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, "", err
	}
	defer func() {
		_ = f.Close()
	}()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, filepath.Base(pdfPath)))
	h.Set("Content-Type", "application/pdf")
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", err
	}

	fields := map[string]string{
		"filename": filepath.Base(pdfPath),
		"filepath": pdfPath,
	}
	for k, v := range metadata {
		fields[k] = v
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func listPDFs(dir string, recursive bool) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, common.NewNotFoundError(fmt.Sprintf("directory not found: %s", dir))
	}

	var files []string
	if recursive {
		err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if !d.IsDir() && constants.IsPDFExt(filepath.Ext(path)) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		files, err = filepath.Glob(filepath.Join(dir, "*.pdf"))
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
