package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/contract-risk/internal/analyzer"
	"github.com/joseph-ayodele/contract-risk/internal/common"
	"github.com/joseph-ayodele/contract-risk/internal/entity"
)

// DefaultFileTimeout bounds one file's analysis, OCR included.
const DefaultFileTimeout = 3 * time.Minute

type Analyzer interface {
	Analyze(ctx context.Context, req analyzer.Request) entity.AnalysisResult
}

// Item is the outcome for one path. Err is set only when the file could not
// be read; analysis itself never fails.
type Item struct {
	Path   string                 `json:"path"`
	Result *entity.AnalysisResult `json:"result,omitempty"`
	Err    string                 `json:"error,omitempty"`
}

type Runner struct {
	svc      Analyzer
	logger   *slog.Logger
	workers  int
	timeout  time.Duration
	maxBytes int64
	language string
}

type Option func(*Runner)

func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

func WithFileTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithMaxFileMB(mb int) Option {
	return func(r *Runner) {
		if mb > 0 {
			r.maxBytes = int64(mb) << 20
		}
	}
}

func WithLanguage(lang string) Option {
	return func(r *Runner) { r.language = lang }
}

// Budget is the worst-case wall time for files paths: one file timeout per
// round of workers.
func (r *Runner) Budget(files int) time.Duration {
	if files <= 0 {
		return 0
	}
	rounds := (files + r.workers - 1) / r.workers
	return time.Duration(rounds) * r.timeout
}

func NewRunner(svc Analyzer, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		svc:      svc,
		logger:   logger,
		workers:  4,
		timeout:  DefaultFileTimeout,
		maxBytes: 20 << 20,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run analyzes paths on a fixed pool of workers. Results keep the input order.
// Cancelling ctx stops dispatch; unstarted paths are reported with ctx's error.
func (r *Runner) Run(ctx context.Context, paths []string) []Item {
	items := make([]Item, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 1; w <= r.workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := range jobs {
				items[i] = r.analyzeOne(ctx, workerID, paths[i])
			}
		}(w)
	}

	next := 0
dispatch:
	for ; next < len(paths); next++ {
		select {
		case jobs <- next:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(paths); i++ {
		items[i] = Item{Path: paths[i], Err: ctx.Err().Error()}
	}
	return items
}

func (r *Runner) analyzeOne(ctx context.Context, workerID int, path string) Item {
	rid := uuid.New().String()
	ctx = common.WithRequestID(ctx, rid)
	start := time.Now()

	data, err := r.read(path)
	if err != nil {
		r.logger.Error("batch.read_failed", "req_id", rid, "worker_id", workerID, "path", path, "error", err)
		return Item{Path: path, Err: err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	res := r.svc.Analyze(ctx, analyzer.Request{
		FileName: filepath.Base(path),
		Data:     data,
		Language: r.language,
	})
	r.logger.Info("batch.analyzed",
		"req_id", rid,
		"worker_id", workerID,
		"path", path,
		"risk_level", res.RiskLevel,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Item{Path: path, Result: &res}
}

func (r *Runner) read(path string) ([]byte, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if st.Size() > r.maxBytes {
		return nil, fmt.Errorf("%s is larger than %d bytes", path, r.maxBytes)
	}
	return os.ReadFile(path)
}
