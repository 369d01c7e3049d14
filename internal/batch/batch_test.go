package batch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/contract-risk/constants"
	"github.com/joseph-ayodele/contract-risk/internal/analyzer"
	"github.com/joseph-ayodele/contract-risk/internal/common"
	"github.com/joseph-ayodele/contract-risk/internal/entity"
)

type recordingAnalyzer struct {
	mu    sync.Mutex
	names []string
	ids   map[string]bool
}

func (a *recordingAnalyzer) Analyze(ctx context.Context, req analyzer.Request) entity.AnalysisResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.names = append(a.names, req.FileName)
	if a.ids == nil {
		a.ids = map[string]bool{}
	}
	a.ids[common.RequestIDFromContext(ctx)] = true
	return entity.AnalysisResult{FileName: req.FileName, RiskLevel: constants.RiskLow, Clauses: []entity.Clause{}}
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		p := filepath.Join(dir, n)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("text of "+n), 0o644))
	}
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.pdf", "b.PNG", "notes.md", ".hidden.pdf", ".git/c.pdf", "sub/d.txt")

	paths, stats, err := Collect([]string{dir}, nil, true)
	require.NoError(t, err)

	var rel []string
	for _, p := range paths {
		r, err := filepath.Rel(dir, p)
		require.NoError(t, err)
		rel = append(rel, r)
	}
	sort.Strings(rel)
	assert.Equal(t, []string{"a.pdf", "b.PNG", filepath.Join("sub", "d.txt")}, rel)
	assert.Equal(t, uint32(3), stats.Matched)
	assert.Equal(t, uint32(4), stats.Scanned)

	paths, _, err = Collect([]string{dir}, []string{".md"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "notes.md")}, paths)
}

func TestCollect_ExplicitFileAndErrors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "odd.docx")

	paths, _, err := Collect([]string{filepath.Join(dir, "odd.docx")}, nil, true)
	require.NoError(t, err)
	assert.Len(t, paths, 1)

	_, _, err = Collect(nil, nil, true)
	assert.Error(t, err)

	_, _, err = Collect([]string{filepath.Join(dir, "missing.pdf")}, nil, true)
	assert.Error(t, err)
}

func TestRunner_KeepsOrder(t *testing.T) {
	dir := t.TempDir()
	names := []string{"1.txt", "2.txt", "3.txt", "4.txt", "5.txt", "6.txt", "7.txt"}
	writeFiles(t, dir, names...)
	var paths []string
	for _, n := range names {
		paths = append(paths, filepath.Join(dir, n))
	}
	paths = append(paths, filepath.Join(dir, "missing.txt"))

	a := &recordingAnalyzer{}
	items := NewRunner(a, nil, WithWorkers(3), WithLanguage("hi")).Run(context.Background(), paths)

	require.Len(t, items, len(paths))
	for i, n := range names {
		assert.Equal(t, paths[i], items[i].Path)
		require.NotNil(t, items[i].Result)
		assert.Equal(t, n, items[i].Result.FileName)
		assert.Empty(t, items[i].Err)
	}
	last := items[len(items)-1]
	assert.Nil(t, last.Result)
	assert.NotEmpty(t, last.Err)

	assert.Len(t, a.names, len(names))
	assert.Len(t, a.ids, len(names))
}

func TestRunner_MaxFileSize(t *testing.T) {
	dir := t.TempDir()
	big := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(big, make([]byte, 2<<20), 0o644))

	a := &recordingAnalyzer{}
	items := NewRunner(a, nil, WithMaxFileMB(1)).Run(context.Background(), []string{big})

	require.Len(t, items, 1)
	assert.Contains(t, items[0].Err, "larger than")
	assert.Empty(t, a.names)
}

func TestRunner_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.txt", "b.txt")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := NewRunner(&recordingAnalyzer{}, nil, WithWorkers(1)).Run(ctx, []string{
		filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt"),
	})

	require.Len(t, items, 2)
	for _, it := range items {
		assert.True(t, it.Result != nil || it.Err == context.Canceled.Error())
	}
}

func TestRunner_Budget(t *testing.T) {
	r := NewRunner(&recordingAnalyzer{}, nil)
	assert.Equal(t, DefaultFileTimeout, r.Budget(1))
	assert.Equal(t, DefaultFileTimeout, r.Budget(4))
	assert.Equal(t, 2*DefaultFileTimeout, r.Budget(5))
	assert.Zero(t, r.Budget(0))

	r = NewRunner(&recordingAnalyzer{}, nil, WithWorkers(2), WithFileTimeout(time.Minute))
	assert.Equal(t, 5*time.Minute, r.Budget(9))
}
