package corpus

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	ErrOutsideCorpus = errors.New("path escapes the corpus directory")
	ErrNotPDF        = errors.New("only PDF documents are served")
)

// ResolvePDF maps a client-supplied relative path to an absolute file
// path under baseDir. Traversal sequences and absolute paths are
// rejected before touching the filesystem.
func ResolvePDF(baseDir, relativePath string) (string, error) {
	if !strings.EqualFold(filepath.Ext(relativePath), ".pdf") {
		return "", ErrNotPDF
	}
	if filepath.IsAbs(relativePath) {
		return "", ErrOutsideCorpus
	}

	cleaned := filepath.Clean(relativePath)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", ErrOutsideCorpus
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	absPath := filepath.Join(absBase, cleaned)
	if absPath != absBase && !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", ErrOutsideCorpus
	}
	return absPath, nil
}
