package constants

import "strings"

// Canonical file extensions handled by the pipeline.
const (
	ExtPDF = ".pdf"
	ExtTXT = ".txt"
)

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsPDFExt reports whether ext (with or without dot) is a PDF extension.
func IsPDFExt(ext string) bool {
	return NormalizeExt(ext) == "pdf"
}

// IsTextExt reports whether ext (with or without dot) is a plain-text extension.
func IsTextExt(ext string) bool {
	return NormalizeExt(ext) == "txt"
}
