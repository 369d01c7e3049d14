package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/contract-risk/constants"
)

type stubRunner struct {
	pdftotext    string
	pdftotextErr error
	pages        int
	pageText     map[string]string // page file base name -> OCR output
	pageErr      map[string]bool
	imageText    string
	noPdftoppm   bool
	calls        []string
	textArgs     []string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, name)
	switch name {
	case "pdftotext":
		s.textArgs = args
		if s.pdftotextErr != nil {
			return nil, []byte("bad pdf"), s.pdftotextErr
		}
		return []byte(s.pdftotext), nil, nil
	case "pdftoppm":
		prefix := args[len(args)-1]
		for i := 1; i <= s.pages; i++ {
			p := prefix + "-" + string(rune('0'+i)) + ".png"
			if err := os.WriteFile(p, []byte("png"), 0o600); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	case "tesseract":
		base := filepath.Base(args[0])
		if strings.HasPrefix(base, "upload.") {
			return []byte(s.imageText), nil, nil
		}
		if s.pageErr[base] {
			return nil, []byte("tesseract crashed"), errors.New("exit status 1")
		}
		return []byte(s.pageText[base]), nil, nil
	}
	return nil, nil, errors.New("unexpected command " + name)
}

func (s *stubRunner) LookPath(name string) (string, error) {
	if name == "pdftoppm" && s.noPdftoppm {
		return "", errors.New("not found")
	}
	return "/usr/bin/" + name, nil
}

func (s *stubRunner) called(name string) bool {
	for _, c := range s.calls {
		if c == name {
			return true
		}
	}
	return false
}

func newTestExtractor(r Runner) *Extractor {
	return NewExtractor(Config{}, nil).WithRunner(r)
}

func TestExtract_EmptyContent(t *testing.T) {
	r := &stubRunner{}
	res := newTestExtractor(r).Extract(context.Background(), "contract.pdf", nil)

	assert.Equal(t, "", res.Text)
	assert.Equal(t, MethodEmpty, res.Method)
	assert.Empty(t, r.calls)
}

func TestExtract_RawTextDropsInvalidUTF8(t *testing.T) {
	r := &stubRunner{}
	text := newTestExtractor(r).ExtractText(context.Background(), "terms.TXT", []byte("Lock-in \xff\xfeperiod"))

	assert.Equal(t, "Lock-in period", text)
	assert.Empty(t, r.calls)
}

func TestExtract_UnknownExtensionIsDecoded(t *testing.T) {
	res := newTestExtractor(&stubRunner{}).Extract(context.Background(), "agreement.docx", []byte("plain words"))

	assert.Equal(t, "plain words", res.Text)
	assert.Equal(t, constants.TEXT, res.SourceType)
	assert.Equal(t, MethodRawText, res.Method)
}

func TestExtract_ImageIsOCRdCaseInsensitive(t *testing.T) {
	r := &stubRunner{imageText: "  Late   payment\t\tpenalty applies  \r\n"}
	res := newTestExtractor(r).Extract(context.Background(), "SCAN.PNG", []byte{0x89, 'P', 'N', 'G'})

	assert.Equal(t, "Late payment penalty applies", res.Text)
	assert.Equal(t, MethodImageOCR, res.Method)
	assert.Equal(t, constants.IMAGE, res.SourceType)
	assert.True(t, r.called("tesseract"))
}

func TestExtract_PDFNativeTextWins(t *testing.T) {
	r := &stubRunner{pdftotext: "This agreement has a lock-in period of twelve months.\fSecond page text\f"}
	res := newTestExtractor(r).Extract(context.Background(), "loan.pdf", []byte("%PDF-1.7"))

	assert.Equal(t, "This agreement has a lock-in period of twelve months.\nSecond page text", res.Text)
	assert.Equal(t, MethodPDFText, res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.False(t, r.called("pdftoppm"))

	// reading order, not column layout, so sentences stay contiguous
	require.GreaterOrEqual(t, len(r.textArgs), 4)
	assert.Equal(t, []string{"-enc", "UTF-8", "-eol", "unix"}, r.textArgs[:4])
	assert.NotContains(t, r.textArgs, "-layout")
}

func TestExtract_PDFShortNativeFallsBackToOCR(t *testing.T) {
	r := &stubRunner{
		pdftotext: "scan\f",
		pages:     3,
		pageText: map[string]string{
			"page-1.png": "First page words",
			"page-3.png": "Third page words",
		},
		pageErr: map[string]bool{"page-2.png": true},
	}
	res := newTestExtractor(r).Extract(context.Background(), "scan.pdf", []byte("%PDF-1.7"))

	assert.Equal(t, "First page words\nThird page words", res.Text)
	assert.Equal(t, MethodPDFOCR, res.Method)
	assert.Equal(t, 3, res.Pages)
	assert.NotEmpty(t, res.Warnings)
}

func TestExtract_PDFNoRasterizerKeepsNativeText(t *testing.T) {
	r := &stubRunner{pdftotext: "short text\f", noPdftoppm: true}
	res := newTestExtractor(r).Extract(context.Background(), "scan.pdf", []byte("%PDF-1.7"))

	assert.Equal(t, "short text", res.Text)
	assert.Equal(t, MethodPDFText, res.Method)
	assert.False(t, r.called("pdftoppm"))
}

func TestExtract_PDFAllPagesFailKeepsNativeText(t *testing.T) {
	r := &stubRunner{
		pdftotext: "tiny\f",
		pages:     2,
		pageErr:   map[string]bool{"page-1.png": true, "page-2.png": true},
	}
	res := newTestExtractor(r).Extract(context.Background(), "scan.pdf", []byte("%PDF-1.7"))

	assert.Equal(t, "tiny", res.Text)
	assert.Equal(t, MethodPDFText, res.Method)
}

func TestExtract_PDFBrokenTextLayerStillOCRs(t *testing.T) {
	r := &stubRunner{
		pdftotextErr: errors.New("exit status 1"),
		pages:        1,
		pageText:     map[string]string{"page-1.png": "Recovered by OCR"},
	}
	res := newTestExtractor(r).Extract(context.Background(), "broken.pdf", []byte("%PDF"))

	require.Equal(t, MethodPDFOCR, res.Method)
	assert.Equal(t, "Recovered by OCR", res.Text)
}

func TestNormalize(t *testing.T) {
	in := "Clause 1\r\n\r\n\r\n\r\n-----\nTerms\t\tapply   here  \n"
	assert.Equal(t, "Clause 1\n\nTerms apply here", Normalize(in))
	assert.Equal(t, "", Normalize(""))
}
