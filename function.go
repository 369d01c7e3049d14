// Package contractrisk is the Cloud Functions entry point for the contract
// risk analyzer.
package contractrisk

import (
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/contract-risk/constants"
	"github.com/joseph-ayodele/contract-risk/internal/analyzer"
	"github.com/joseph-ayodele/contract-risk/internal/common"
	"github.com/joseph-ayodele/contract-risk/internal/server"
)

func init() {
	functions.HTTP("AnalyzeContract", AnalyzeContract)
}

var (
	once     sync.Once
	router   http.Handler
	buildErr error
)

// buildRouter is run once per instance so warm invocations reuse the service.
func buildRouter() {
	cfg, err := common.LoadConfig()
	if err != nil {
		buildErr = err
		return
	}
	if err := cfg.Validate(); err != nil {
		buildErr = err
		return
	}

	slogger := common.NewLogger(cfg.Log.Level)
	slog.SetDefault(slogger)

	svc, err := analyzer.NewFromConfig(cfg, slogger)
	if err != nil {
		buildErr = err
		return
	}

	accessLog, err := common.NewZapLogger(cfg.Log.Level)
	if err != nil {
		accessLog = zap.NewNop()
	}
	handler := server.NewHTTPHandler(svc, server.HTTPOptions{
		StaticDir:   cfg.Server.StaticDir,
		MaxUploadMB: cfg.Server.MaxUploadMB,
	}, slogger)
	router = server.NewRouter(handler, accessLog)
}

// AnalyzeContract serves the same routes as contractd: POST /analyze,
// GET /healthz and GET /.
func AnalyzeContract(w http.ResponseWriter, r *http.Request) {
	once.Do(buildRouter)
	if buildErr != nil {
		logger := log.New(funcframework.LogWriter(r.Context()), "", 0)
		logger.Printf("analyzer unavailable: %v", buildErr)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(analyzer.DegradedResult("", constants.English))
		return
	}
	router.ServeHTTP(w, r)
}
