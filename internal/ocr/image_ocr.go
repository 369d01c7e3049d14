package ocr

import (
	"context"
	"fmt"
	"strconv"
)

func (e *Extractor) extractImage(ctx context.Context, ext string, data []byte, res ExtractionResult) ExtractionResult {
	res.Method = MethodImageOCR
	res.Pages = 1

	path, cleanup, err := e.writeTemp("upload."+ext, data)
	defer cleanup()
	if err != nil {
		e.logger.Error("ocr.image.temp_failed", "error", err)
		res.Warnings = append(res.Warnings, err.Error())
		return res
	}

	txt, warn, err := e.tesseractOCR(ctx, path)
	res.Warnings = append(res.Warnings, warn...)
	if err != nil {
		e.logger.Warn("ocr.image.failed", "error", err)
		res.Warnings = append(res.Warnings, err.Error())
		return res
	}
	res.Text = Normalize(txt)
	return res
}

func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, []string, error) {
	// tesseract <file> stdout -l <lang>
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil, nil
}
