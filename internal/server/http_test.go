package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/contract-risk/constants"
	"github.com/joseph-ayodele/contract-risk/internal/analyzer"
	"github.com/joseph-ayodele/contract-risk/internal/common"
	"github.com/joseph-ayodele/contract-risk/internal/entity"
)

type fakeAnalyzer struct {
	got    analyzer.Request
	reqID  string
	calls  int
	panics bool
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, req analyzer.Request) entity.AnalysisResult {
	f.calls++
	f.got = req
	f.reqID = common.RequestIDFromContext(ctx)
	if f.panics {
		panic("boom")
	}
	return entity.AnalysisResult{
		FileName:  req.FileName,
		RiskScore: 50,
		RiskLevel: constants.RiskMedium,
		Summary:   "two risky clauses",
		Clauses: []entity.Clause{
			{Type: constants.ClauseLockIn, Title: "Lock-in period", Severity: constants.SeverityHigh, OriginalText: "lock-in of 12 months", SimplifiedText: "You cannot leave early."},
			{Type: constants.ClausePenalty, Title: "Penalty", Severity: constants.SeverityHigh, OriginalText: "penalty of 2%", SimplifiedText: "Late payment costs extra."},
		},
	}
}

func newTestRouter(t *testing.T, svc Analyzer, opts HTTPOptions) http.Handler {
	t.Helper()
	return NewRouter(NewHTTPHandler(svc, opts, nil), nil)
}

func multipartBody(t *testing.T, fileName string, content []byte, lang string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	if lang != "" {
		require.NoError(t, mw.WriteField("language", lang))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) entity.AnalysisResult {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var res entity.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestAnalyzeHandler_Success(t *testing.T) {
	fa := &fakeAnalyzer{}
	router := newTestRouter(t, fa, HTTPOptions{})

	body, ct := multipartBody(t, "loan.pdf", []byte("%PDF-1.4 data"), "hi")
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeResult(t, rec)
	assert.Equal(t, "loan.pdf", res.FileName)
	assert.Equal(t, 50, res.RiskScore)
	assert.Len(t, res.Clauses, 2)

	assert.Equal(t, 1, fa.calls)
	assert.Equal(t, "loan.pdf", fa.got.FileName)
	assert.Equal(t, []byte("%PDF-1.4 data"), fa.got.Data)
	assert.Equal(t, "hi", fa.got.Language)
	assert.NotEmpty(t, fa.reqID)
	assert.Equal(t, fa.reqID, rec.Header().Get(RequestIDHeader))
}

func TestAnalyzeHandler_UnknownLanguageBecomesEnglish(t *testing.T) {
	fa := &fakeAnalyzer{}
	router := newTestRouter(t, fa, HTTPOptions{})

	body, ct := multipartBody(t, "a.txt", []byte("text"), "fr")
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ct)
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "en", fa.got.Language)
}

func TestAnalyzeHandler_MissingFileIsNoTextResult(t *testing.T) {
	fa := &fakeAnalyzer{}
	router := newTestRouter(t, fa, HTTPOptions{})

	body, ct := multipartBody(t, "", nil, "en")
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeResult(t, rec)
	assert.Equal(t, analyzer.NoTextResult("", constants.English), res)
	assert.Equal(t, constants.RiskUnknown, res.RiskLevel)
	assert.NotNil(t, res.Clauses)
	assert.Contains(t, rec.Body.String(), `"clauses":[]`)
	assert.Zero(t, fa.calls)
}

func TestAnalyzeHandler_NotMultipart(t *testing.T) {
	fa := &fakeAnalyzer{}
	router := newTestRouter(t, fa, HTTPOptions{})

	form := url.Values{"language": {"hi"}}
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, analyzer.NoTextResult("", constants.Hinglish), decodeResult(t, rec))
	assert.Zero(t, fa.calls)
}

func TestAnalyzeHandler_TooLarge(t *testing.T) {
	fa := &fakeAnalyzer{}
	router := newTestRouter(t, fa, HTTPOptions{MaxUploadMB: 1})

	body, ct := multipartBody(t, "big.txt", bytes.Repeat([]byte("a"), 2<<20), "en")
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeResult(t, rec)
	assert.Equal(t, constants.RiskUnknown, res.RiskLevel)
	assert.Zero(t, fa.calls)
}

func TestAnalyzeHandler_PanicIsDegradedResult(t *testing.T) {
	router := newTestRouter(t, &fakeAnalyzer{panics: true}, HTTPOptions{})

	body, ct := multipartBody(t, "a.txt", []byte("text"), "en")
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeResult(t, rec)
	assert.Equal(t, constants.RiskLow, res.RiskLevel)
	assert.Equal(t, 0, res.RiskScore)
	assert.Empty(t, res.Clauses)
	assert.Equal(t, analyzer.DegradedResult("", constants.English).Summary, res.Summary)
}

func TestRequestIDHeaderIsEchoed(t *testing.T) {
	fa := &fakeAnalyzer{}
	router := newTestRouter(t, fa, HTTPOptions{})

	body, ct := multipartBody(t, "a.txt", []byte("text"), "")
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-123", fa.reqID)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, &fakeAnalyzer{}, HTTPOptions{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestIndex(t *testing.T) {
	t.Run("json status without static dir", func(t *testing.T) {
		router := newTestRouter(t, &fakeAnalyzer{}, HTTPOptions{})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body["status"])
	})

	t.Run("serves index.html", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Upload a contract</h1>"), 0o644))

		router := newTestRouter(t, &fakeAnalyzer{}, HTTPOptions{StaticDir: dir})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Upload a contract")
	})
}

func TestAnalyzeRouteRejectsGet(t *testing.T) {
	fa := &fakeAnalyzer{}
	router := newTestRouter(t, fa, HTTPOptions{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analyze", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Zero(t, fa.calls)
}
