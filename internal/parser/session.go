package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jatenx/invoice-pipeline/internal/common"
)

// Session owns one batch's parse-and-persist flow: each document's raw text
// is consumed exactly once, assembled into a fresh record, and written under
// a year-partitioned output directory.
type Session struct {
	outputBase string
	validate   bool
	logger     *slog.Logger
}

func NewSession(outputBase string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if outputBase == "" {
		outputBase = "invoices_json"
	}
	return &Session{outputBase: outputBase, validate: true, logger: logger}
}

// ParseText assembles a record from raw OCR text without persisting it.
func (s *Session) ParseText(rawText string) *InvoiceRecord {
	return Assemble(rawText)
}

// ParseFile reads an OCR text file, parses it, and writes the record as
// <outputBase>/<partition>/<stem>.json. partition overrides year
// auto-detection when non-empty. Returns the record and the output path.
func (s *Session) ParseFile(txtPath, partition string) (*InvoiceRecord, string, error) {
	start := time.Now()

	raw, err := os.ReadFile(txtPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", common.NewNotFoundError(fmt.Sprintf("text file not found: %s", txtPath))
		}
		return nil, "", common.NewParseError(fmt.Sprintf("read %s", txtPath), err)
	}

	rec := s.ParseText(string(raw))

	if partition == "" {
		partition = PartitionKeyFromPath(txtPath)
	}
	stem := strings.TrimSuffix(filepath.Base(txtPath), filepath.Ext(txtPath))
	outPath := filepath.Join(s.outputBase, partition, stem+".json")

	if err := s.WriteRecord(rec, outPath); err != nil {
		return rec, "", err
	}

	s.logger.Info("parser.session.ok",
		"source", txtPath,
		"output", outPath,
		"partition", partition,
		"suppliers", len(rec.Suppliers),
		"line_items", len(rec.LineItems),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, outPath, nil
}

// WriteRecord persists the record as pretty JSON, creating directories as
// needed. Accented text is written as raw UTF-8, not escaped.
func (s *Session) WriteRecord(rec *InvoiceRecord, path string) error {
	data, err := MarshalRecord(rec)
	if err != nil {
		return common.NewParseError("encode record", err)
	}
	if s.validate {
		if err := ValidateRecordJSON(data); err != nil {
			return common.NewParseError("record failed schema validation", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return common.NewParseError(fmt.Sprintf("create output dir for %s", path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return common.NewParseError(fmt.Sprintf("write %s", path), err)
	}
	return nil
}

// MarshalRecord encodes a record as 2-space-indented JSON with non-ASCII
// characters left unescaped so accented Spanish round-trips losslessly.
func MarshalRecord(rec *InvoiceRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalRecord decodes a persisted record.
func UnmarshalRecord(data []byte) (*InvoiceRecord, error) {
	var rec InvoiceRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
