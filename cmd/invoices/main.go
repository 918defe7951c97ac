package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/jatenx/invoice-pipeline/constants"
	"github.com/jatenx/invoice-pipeline/internal/common"
	"github.com/jatenx/invoice-pipeline/internal/enhance"
	"github.com/jatenx/invoice-pipeline/internal/export"
	"github.com/jatenx/invoice-pipeline/internal/joblog"
	"github.com/jatenx/invoice-pipeline/internal/ocr"
	"github.com/jatenx/invoice-pipeline/internal/parser"
	"github.com/jatenx/invoice-pipeline/internal/pipeline"
	"github.com/jatenx/invoice-pipeline/internal/webhook"
)

const usageText = `usage: invoices <command> [flags] <source>

Commands:
  enhance   add a searchable text layer to scanned PDFs (ocrmypdf)
  extract   OCR PDFs to raw text files
  parse     parse OCR text files into invoice records
  pipeline  enhance + extract + parse in one pass
  send      deliver PDFs to the collector webhook
  export    parse text files and write an XLSX batch report

<source> is a single file or a directory; directories are processed as a
sequential batch ordered by filename.
`

func main() {
	// .env is optional; real config comes from the environment.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var err error
	switch os.Args[1] {
	case "enhance":
		err = runEnhance(ctx, cfg, logger, os.Args[2:])
	case "extract":
		err = runExtract(ctx, cfg, logger, os.Args[2:])
	case "parse":
		err = runParse(ctx, cfg, logger, os.Args[2:])
	case "pipeline":
		err = runPipeline(ctx, cfg, logger, os.Args[2:])
	case "send":
		err = runSend(ctx, cfg, logger, os.Args[2:])
	case "export":
		err = runExport(ctx, cfg, logger, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n%s", os.Args[1], usageText)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func runEnhance(ctx context.Context, cfg *common.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("enhance", flag.ExitOnError)
	year := fs.String("year", "", "output partition (defaults to year detected from source path)")
	lang := fs.String("lang", cfg.Enhance.Language, "OCR language code")
	outDir := fs.String("output-dir", cfg.Paths.EnhancedDir, "base directory for enhanced PDFs")
	source := parseSource(fs, args)

	enhancer, err := enhance.New(enhance.Config{
		Binary:    cfg.Enhance.Binary,
		Language:  *lang,
		Timeout:   cfg.Enhance.Timeout,
		OutputDir: *outDir,
	}, logger)
	if err != nil {
		return err
	}

	p := newPipeline(ctx, cfg, logger, enhancer, nil)
	results, err := p.EnhanceBatch(ctx, source, *year)
	if err != nil {
		return err
	}
	printSummary("enhance", results)
	return nil
}

func runExtract(ctx context.Context, cfg *common.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	year := fs.String("year", "", "output partition (defaults to year detected from source path)")
	lang := fs.String("lang", cfg.OCR.Language, "OCR language code")
	forceOCR := fs.Bool("force-ocr", false, "always rasterize, ignore any embedded text layer")
	source := parseSource(fs, args)

	extractor := newExtractor(cfg, logger, *lang, *forceOCR)
	p := newPipeline(ctx, cfg, logger, nil, extractor)
	results, err := p.ExtractBatch(ctx, source, *year)
	if err != nil {
		return err
	}
	printSummary("extract", results)
	return nil
}

func runParse(ctx context.Context, cfg *common.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	year := fs.String("year", "", "output partition (defaults to year detected from each source path)")
	source := parseSource(fs, args)

	p := newPipeline(ctx, cfg, logger, nil, nil)
	results, err := p.ParseBatch(ctx, source, *year)
	if err != nil {
		return err
	}
	printSummary("parse", results)
	return nil
}

func runPipeline(ctx context.Context, cfg *common.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("pipeline", flag.ExitOnError)
	year := fs.String("year", "", "output partition (defaults to year detected from source path)")
	lang := fs.String("lang", cfg.Enhance.Language, "OCR language code")
	skipEnhance := fs.Bool("skip-enhance", false, "skip the ocrmypdf pass")
	report := fs.String("report", "", "optional XLSX report output path")
	source := parseSource(fs, args)

	var enhancer *enhance.Enhancer
	if !*skipEnhance {
		var err error
		enhancer, err = enhance.New(enhance.Config{
			Binary:    cfg.Enhance.Binary,
			Language:  *lang,
			Timeout:   cfg.Enhance.Timeout,
			OutputDir: cfg.Paths.EnhancedDir,
		}, logger)
		if err != nil {
			return err
		}
	}

	extractor := newExtractor(cfg, logger, *lang, *skipEnhance)
	p := newPipeline(ctx, cfg, logger, enhancer, extractor)
	results, err := p.Run(ctx, source, *year)
	if err != nil {
		return err
	}
	printSummary("pipeline", results)

	if *report != "" {
		return writeReport(logger, results, *report)
	}
	return nil
}

func runSend(ctx context.Context, cfg *common.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	url := fs.String("webhook-url", cfg.Webhook.URL, "collector endpoint override")
	recursive := fs.Bool("recursive", false, "include subdirectories")
	delay := fs.Duration("delay", cfg.Webhook.Delay, "pacing delay between files")
	year := fs.String("year", "", "send a single year partition under the source directory")
	allYears := fs.Bool("all-years", false, "send every year partition under the source directory")
	source := parseSource(fs, args)

	sender, err := webhook.NewSender(webhook.Config{
		URL:     *url,
		Timeout: cfg.Webhook.Timeout,
		Delay:   *delay,
	}, nil, logger)
	if err != nil {
		return err
	}

	var store *joblog.Store
	if cfg.JobLog.Path != "" {
		if store, err = joblog.Open(ctx, cfg.JobLog.Path, logger); err != nil {
			logger.Warn("job log unavailable, continuing without history", "error", err)
			store = nil
		}
	}
	logDeliveries := func(sum webhook.Summary) {
		if store == nil {
			return
		}
		for _, r := range sum.Results {
			status := constants.StatusSuccess
			if !r.Success {
				status = constants.StatusError
			}
			if _, logErr := store.Record(ctx, r.File, string(constants.StageDeliver), status, r.Err); logErr != nil {
				logger.Warn("job log write failed", "file", r.File, "error", logErr)
			}
		}
	}

	switch {
	case *allYears:
		byYear, err := sender.SendAllYears(ctx, source)
		if err != nil {
			return err
		}
		for y, sum := range byYear {
			logDeliveries(sum)
			fmt.Printf("%s: sent %d, failed %d, total %d\n", y, sum.Sent, sum.Failed, sum.Total)
		}
		return nil
	case *year != "":
		sum, err := sender.SendYear(ctx, source, *year)
		if err != nil {
			return err
		}
		logDeliveries(sum)
		printSendSummary(sum)
		return nil
	default:
		info, statErr := os.Stat(source)
		if statErr == nil && !info.IsDir() {
			res := sender.SendPDF(ctx, source, nil)
			logDeliveries(webhook.Summary{Results: []webhook.Result{res}})
			if !res.Success {
				return common.NewDeliveryError(res.Err, nil)
			}
			fmt.Printf("sent %s (status %d)\n", res.File, res.StatusCode)
			return nil
		}
		sum, err := sender.SendDirectory(ctx, source, *recursive)
		if err != nil {
			return err
		}
		logDeliveries(sum)
		printSendSummary(sum)
		return nil
	}
}

func runExport(ctx context.Context, cfg *common.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	year := fs.String("year", "", "output partition (defaults to year detected from each source path)")
	out := fs.String("out", "", "XLSX output path (defaults to <source dir>/report.xlsx)")
	source := parseSource(fs, args)

	if *out == "" {
		*out = filepath.Join(filepath.Dir(source), "report.xlsx")
	}

	p := newPipeline(ctx, cfg, logger, nil, nil)
	results, err := p.ParseBatch(ctx, source, *year)
	if err != nil {
		return err
	}
	printSummary("export", results)
	return writeReport(logger, results, *out)
}

// parseSource parses flags and returns the positional source argument,
// exiting with usage when it is missing.
func parseSource(fs *flag.FlagSet, args []string) string {
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "%s: exactly one source file or directory is required\n", fs.Name())
		fs.Usage()
		os.Exit(2)
	}
	return fs.Arg(0)
}

func newExtractor(cfg *common.Config, logger *slog.Logger, lang string, forceOCR bool) *ocr.Extractor {
	return ocr.NewExtractor(ocr.Config{
		Pdftotext: cfg.OCR.Pdftotext,
		Pdftoppm:  cfg.OCR.Pdftoppm,
		Tesseract: cfg.OCR.Tesseract,
		Language:  lang,
		DPI:       cfg.OCR.DPI,
		MaxPages:  cfg.OCR.MaxPages,
		ForceOCR:  forceOCR,
	}, logger)
}

func newPipeline(ctx context.Context, cfg *common.Config, logger *slog.Logger, enhancer *enhance.Enhancer, extractor *ocr.Extractor) *pipeline.Pipeline {
	var store *joblog.Store
	if cfg.JobLog.Path != "" {
		var err error
		store, err = joblog.Open(ctx, cfg.JobLog.Path, logger)
		if err != nil {
			logger.Warn("job log unavailable, continuing without history", "error", err)
		}
	}
	return pipeline.New(pipeline.Config{
		Enhancer: enhancer,
		OCR:      extractor,
		Session:  parser.NewSession(cfg.Paths.RecordDir, logger),
		Log:      store,
		TextDir:  cfg.Paths.TextDir,
	}, logger)
}

func writeReport(logger *slog.Logger, results []pipeline.FileResult, out string) error {
	rows := make([]export.Row, 0, len(results))
	for _, r := range results {
		rows = append(rows, export.Row{
			Source:     r.Source,
			Status:     r.Status,
			OutputFile: r.OutputFile,
			Message:    r.Message,
			Record:     r.Record,
		})
	}
	data, err := export.NewService(logger).BuildReportXLSX(rows)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Printf("report written to %s\n", out)
	return nil
}

func printSummary(command string, results []pipeline.FileResult) {
	for _, r := range results {
		mark := "ok "
		if r.Status != constants.StatusSuccess {
			mark = "ERR"
		}
		fmt.Printf("[%s] %s", mark, filepath.Base(r.Source))
		if r.Message != "" {
			fmt.Printf(" - %s", r.Message)
		}
		fmt.Println()
	}
	sum := pipeline.Summarize(results)
	fmt.Printf("%s: total %d, successful %d, failed %d\n", command, sum.Total, sum.Successful, sum.Failed)
	for _, f := range sum.FailedFiles {
		fmt.Printf("  failed: %s\n", f)
	}
}

func printSendSummary(sum webhook.Summary) {
	for _, r := range sum.Results {
		if r.Success {
			fmt.Printf("[ok ] %s (status %d)\n", r.File, r.StatusCode)
		} else {
			fmt.Printf("[ERR] %s - %s\n", r.File, r.Err)
		}
	}
	fmt.Printf("send: total %d, sent %d, failed %d\n", sum.Total, sum.Sent, sum.Failed)
}
