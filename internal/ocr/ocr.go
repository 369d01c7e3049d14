package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/contract-risk/constants"
)

// MinNativeTextChars is the trimmed length a PDF text layer must exceed before
// it is trusted over OCR.
const MinNativeTextChars = 30

// Extraction methods reported in ExtractionResult.Method.
const (
	MethodEmpty    = "empty"
	MethodImageOCR = "image-ocr"
	MethodPDFText  = "pdf-text"
	MethodPDFOCR   = "pdf-ocr"
	MethodRawText  = "raw-text"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string
	DPI           int // rasterization DPI for scanned PDFs, default 300
	MaxPages      int // 0 = no limit

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default
}

type ExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF | constants.IMAGE | constants.TEXT
	Method     string
	Duration   time.Duration
	Warnings   []string
}

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
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// WithRunner swaps the command runner, mainly for tests.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// ExtractText returns the best-effort plain text of an upload. It never fails;
// on any internal error the best text obtained so far (possibly "") is returned.
func (e *Extractor) ExtractText(ctx context.Context, filename string, data []byte) string {
	return e.Extract(ctx, filename, data).Text
}

// Extract picks a strategy based on the filename extension.
func (e *Extractor) Extract(ctx context.Context, filename string, data []byte) (res ExtractionResult) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(filename))
	format := constants.MapExtToFormat(ext)
	res.SourceType = format

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("ocr.extract.panic", "file_name", filename, "panic", fmt.Sprint(r))
			res.Warnings = append(res.Warnings, fmt.Sprintf("panic: %v", r))
		}
		res.Duration = time.Since(start)
		e.logger.Debug("ocr.extract.done",
			"file_name", filename,
			"method", res.Method,
			"pages", res.Pages,
			"chars", len(res.Text),
			"warnings", len(res.Warnings),
			"duration_ms", res.Duration.Milliseconds(),
		)
	}()

	if len(data) == 0 {
		res.Method = MethodEmpty
		return res
	}

	e.logger.Debug("ocr.extract.start", "file_name", filename, "ext", ext, "format", format, "bytes", len(data))
	switch format {
	case constants.IMAGE:
		return e.extractImage(ctx, ext, data, res)
	case constants.PDF:
		return e.extractPDF(ctx, data, res)
	default:
		res.Text = DecodeText(data)
		res.Pages = 1
		res.Method = MethodRawText
		return res
	}
}

// writeTemp stores data in a fresh temp dir and returns the file path and a cleanup func.
func (e *Extractor) writeTemp(name string, data []byte) (string, func(), error) {
	dir, err := os.MkdirTemp("", "contract-ocr-*")
	if err != nil {
		return "", func() {}, err
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			e.logger.Warn("failed to remove temp dir", "dir", dir, "error", err)
		}
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		cleanup()
		return "", func() {}, err
	}
	return path, cleanup, nil
}
