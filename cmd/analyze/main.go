package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/joseph-ayodele/contract-risk/internal/analyzer"
	"github.com/joseph-ayodele/contract-risk/internal/batch"
	"github.com/joseph-ayodele/contract-risk/internal/common"
	"github.com/joseph-ayodele/contract-risk/internal/server"
)

func main() {
	lang := flag.String("lang", "en", "output language: en or hi")
	addr := flag.String("addr", "", "analyze through a running contractd gRPC endpoint instead of in-process")
	workers := flag.Int("workers", 4, "concurrent files when analyzing a directory or several files")
	fileTimeout := flag.Duration("file-timeout", batch.DefaultFileTimeout, "timeout per file")
	timeout := flag.Duration("timeout", 0, "overall timeout (0 = file-timeout for one file, scaled by workers for a batch)")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: analyze [--lang hi] [--addr host:port] <file>\n       analyze [--lang hi] [--workers n] [--file-timeout d] <file|dir>...")
		os.Exit(2)
	}

	cfg, err := common.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	// logs go to stderr so stdout stays pure JSON
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if st, err := os.Stat(flag.Arg(0)); flag.NArg() > 1 || (err == nil && st.IsDir()) {
		if err := analyzeBatch(cfg, logger, flag.Args(), *lang, *workers, *fileTimeout, *timeout); err != nil {
			logger.Error("analyze batch", "error", err)
			os.Exit(1)
		}
		return
	}

	if *timeout <= 0 {
		*timeout = *fileTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	path := flag.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "path", path, "error", err)
		os.Exit(1)
	}

	var out []byte
	if *addr != "" {
		out, err = analyzeRemote(ctx, *addr, filepath.Base(path), data, *lang)
	} else {
		out, err = analyzeLocal(ctx, cfg, logger, filepath.Base(path), data, *lang)
	}
	if err != nil {
		logger.Error("analyze", "path", path, "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func analyzeLocal(ctx context.Context, cfg *common.Config, logger *slog.Logger, name string, data []byte, lang string) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	svc, err := analyzer.NewFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	res := svc.Analyze(ctx, analyzer.Request{FileName: name, Data: data, Language: lang})
	return json.MarshalIndent(res, "", "  ")
}

func analyzeBatch(cfg *common.Config, logger *slog.Logger, args []string, lang string, workers int, fileTimeout, timeout time.Duration) error {
	paths, stats, err := batch.Collect(args, nil, true)
	if err != nil {
		return err
	}
	logger.Info("batch.collected", "scanned", stats.Scanned, "matched", stats.Matched)

	if err := cfg.Validate(); err != nil {
		return err
	}
	svc, err := analyzer.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}

	runner := batch.NewRunner(svc, logger,
		batch.WithWorkers(workers),
		batch.WithFileTimeout(fileTimeout),
		batch.WithLanguage(lang),
		batch.WithMaxFileMB(cfg.Server.MaxUploadMB),
	)
	if timeout <= 0 {
		timeout = runner.Budget(len(paths))
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	items := runner.Run(ctx, paths)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

func analyzeRemote(ctx context.Context, addr, name string, data []byte, lang string) ([]byte, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer func() { _ = conn.Close() }()

	res, err := server.AnalyzeRemote(ctx, conn, name, data, lang)
	if err != nil {
		return nil, err
	}
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(res)
}
