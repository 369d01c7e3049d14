package constants

import "strings"

// Source formats understood by text acquisition.
const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
	TEXT  = "TEXT"
)

// ImageExtensions are OCR'd directly.
var ImageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// MapExtToFormat classifies an extension (with or without the dot).
// Anything that is neither a PDF nor a supported image is treated as TEXT.
func MapExtToFormat(ext string) string {
	e := NormalizeExt(ext)
	if e == "pdf" {
		return PDF
	}
	if _, ok := ImageExtensions[e]; ok {
		return IMAGE
	}
	return TEXT
}
