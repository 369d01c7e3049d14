package ocr

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// extractPDF tries the native text layer first and falls back to rasterize+OCR
// when the layer is missing or too short.
func (e *Extractor) extractPDF(ctx context.Context, data []byte, res ExtractionResult) ExtractionResult {
	path, cleanup, err := e.writeTemp("upload.pdf", data)
	defer cleanup()
	if err != nil {
		e.logger.Error("ocr.pdf.temp_failed", "error", err)
		res.Warnings = append(res.Warnings, err.Error())
		return res
	}

	native, pages, warns, err := e.pdfToText(ctx, path)
	res.Warnings = append(res.Warnings, warns...)
	if err != nil {
		e.logger.Warn("ocr.pdf.native_failed", "error", err)
		res.Warnings = append(res.Warnings, err.Error())
	}
	res.Text = native
	res.Pages = pages
	res.Method = MethodPDFText

	if utf8.RuneCountInString(strings.TrimSpace(native)) > MinNativeTextChars {
		return res
	}
	e.logger.Debug("ocr.pdf.native_short", "chars", len(strings.TrimSpace(native)))

	if _, err := e.runner.LookPath(e.cfg.Pdftoppm); err != nil {
		e.logger.Warn("ocr.pdf.rasterizer_unavailable", "binary", e.cfg.Pdftoppm, "error", err)
		res.Warnings = append(res.Warnings, "rasterizer unavailable: "+e.cfg.Pdftoppm)
		return res
	}

	ocrText, ocrPages, warns, err := e.pdfToOCR(ctx, path)
	res.Warnings = append(res.Warnings, warns...)
	if err != nil {
		e.logger.Warn("ocr.pdf.ocr_failed", "error", err)
		res.Warnings = append(res.Warnings, err.Error())
	}
	if strings.TrimSpace(ocrText) == "" {
		return res
	}
	res.Text = ocrText
	res.Pages = ocrPages
	res.Method = MethodPDFOCR
	return res
}

// pdfToText returns the text layer with pages joined by newlines.
func (e *Extractor) pdfToText(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	// pdftotext -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, []string{string(errb)}, fmt.Errorf("pdftotext: %w", err)
	}
	// A form-feed \f separates pages; the last page is followed by one too.
	parts := strings.Split(string(out), "\f")
	if len(parts) > 1 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	for i := range parts {
		parts[i] = Normalize(parts[i])
	}
	return strings.Join(parts, "\n"), len(parts), nil, nil
}

// pdfToOCR renders every page to PNG and OCRs each one. Pages that fail are
// skipped with a warning.
func (e *Extractor) pdfToOCR(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	prefix := filepath.Join(filepath.Dir(path), "page")
	// pdftoppm -r 300 -png [-l N] <in.pdf> <tmp/page>
	args := []string{"-r", strconv.Itoa(e.cfg.DPI), "-png"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(e.cfg.MaxPages))
	}
	args = append(args, path, prefix)
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, args...)
	if err != nil {
		return "", 0, []string{string(errb)}, fmt.Errorf("pdftoppm: %w", err)
	}

	// pdftoppm zero-pads page numbers, so lexical order is page order.
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", 0, []string{"pdftoppm produced no images"}, fmt.Errorf("no pages rendered")
	}

	var texts []string
	var warns []string
	for _, img := range matches {
		txt, w, err := e.tesseractOCR(ctx, img)
		warns = append(warns, w...)
		if err != nil {
			e.logger.Warn("ocr.pdf.page_failed", "page", filepath.Base(img), "error", err)
			warns = append(warns, err.Error())
			continue
		}
		if txt = Normalize(txt); txt != "" {
			texts = append(texts, txt)
		}
	}
	return strings.Join(texts, "\n"), len(matches), warns, nil
}
