package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/contract-risk/internal/common"
	"github.com/joseph-ayodele/contract-risk/internal/ocr"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runocr <file>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg, err := common.LoadConfig()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "path", path, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	x := ocr.NewExtractor(ocr.Config{
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)

	res := x.Extract(ctx, filepath.Base(path), data)
	logger.Info("text extraction done",
		"source_type", res.SourceType,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"warnings", res.Warnings,
		"duration_ms", res.Duration.Milliseconds(),
	)
	if res.Text == "" {
		os.Exit(1)
	}
	_, _ = os.Stdout.WriteString(res.Text + "\n")
}
