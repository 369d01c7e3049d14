package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/contract-risk/constants"
	"github.com/joseph-ayodele/contract-risk/internal/analyzer"
	"github.com/joseph-ayodele/contract-risk/internal/common"
	"github.com/joseph-ayodele/contract-risk/internal/entity"
)

// Analyzer is the orchestrator surface the transports depend on.
type Analyzer interface {
	Analyze(ctx context.Context, req analyzer.Request) entity.AnalysisResult
}

// HTTPOptions configures the HTTP surface.
type HTTPOptions struct {
	StaticDir   string // directory holding index.html; empty serves a JSON status
	MaxUploadMB int
}

type HTTPHandler struct {
	svc            Analyzer
	staticDir      string
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewHTTPHandler(svc Analyzer, opts HTTPOptions, logger *slog.Logger) *HTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxUploadMB <= 0 {
		opts.MaxUploadMB = 20
	}
	return &HTTPHandler{
		svc:            svc,
		staticDir:      opts.StaticDir,
		maxUploadBytes: int64(opts.MaxUploadMB) << 20,
		logger:         logger,
	}
}

// NewRouter builds the gorilla/mux router with request-id, access-log and
// panic-recovery middleware.
func NewRouter(h *HTTPHandler, accessLog *zap.Logger) *mux.Router {
	if accessLog == nil {
		accessLog = zap.NewNop()
	}
	r := mux.NewRouter()
	r.Use(RequestID, AccessLog(accessLog), Recover(accessLog))
	h.Register(r)
	return r
}

// Register mounts the routes on r.
func (h *HTTPHandler) Register(r *mux.Router) {
	r.HandleFunc("/analyze", h.Analyze).Methods(http.MethodPost)
	r.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet)
	r.HandleFunc("/", h.Index).Methods(http.MethodGet)
}

// Analyze handles POST /analyze (multipart: file, language). It always
// answers 200 with an AnalysisResult; unreadable uploads become the no-text result.
func (h *HTTPHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rid := common.RequestIDFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.logger.Warn("http.analyze.too_large", "req_id", rid, "limit_bytes", tooBig.Limit)
		} else {
			h.logger.Warn("http.analyze.bad_form", "req_id", rid, "error", err)
		}
	}
	lang := constants.ParseLanguage(formValue(r, "language"))

	file, header, err := r.FormFile("file")
	if err != nil {
		h.logger.Warn("http.analyze.no_file", "req_id", rid, "error", err)
		writeJSON(w, http.StatusOK, analyzer.NoTextResult("", lang))
		return
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			h.logger.Warn("http.analyze.close_failed", "req_id", rid, "error", cerr)
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Warn("http.analyze.read_failed", "req_id", rid, "error", err)
		writeJSON(w, http.StatusOK, analyzer.NoTextResult(header.Filename, lang))
		return
	}

	res := h.svc.Analyze(ctx, analyzer.Request{
		FileName: header.Filename,
		Data:     data,
		Language: string(lang),
	})
	writeJSON(w, http.StatusOK, res)
}

// Index serves STATIC_DIR/index.html, or a JSON status when there is none.
func (h *HTTPHandler) Index(w http.ResponseWriter, r *http.Request) {
	if h.staticDir != "" {
		index := filepath.Join(h.staticDir, "index.html")
		if st, err := os.Stat(index); err == nil && !st.IsDir() {
			http.ServeFile(w, r, index)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Contract risk analyzer is running. POST a file to /analyze.",
	})
}

func (h *HTTPHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// formValue reads a multipart or urlencoded field without re-parsing the body.
func formValue(r *http.Request, key string) string {
	if r.MultipartForm != nil {
		if vs := r.MultipartForm.Value[key]; len(vs) > 0 {
			return vs[0]
		}
	}
	if r.Form != nil {
		return r.Form.Get(key)
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
