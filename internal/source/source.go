// ABOUTME: Document sources feeding the corpus builder
// ABOUTME: Supports in-memory pages and directories of txt, md, and pdf files
package source

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// Page is one document to be chunked and embedded. URL is the provenance
// carried through to citations.
type Page struct {
	URL  string
	Text string
}

// Source yields the pages a corpus is built from.
type Source interface {
	Pages() ([]Page, error)
}

// Static is a fixed in-memory page set.
type Static []Page

func (s Static) Pages() ([]Page, error) {
	return s, nil
}

// Dir reads pages from a directory tree of .txt, .md, and .pdf files.
type Dir struct {
	Path   string
	Logger *zap.Logger
}

// NewDir creates a directory source rooted at path.
func NewDir(path string, logger *zap.Logger) *Dir {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dir{Path: path, Logger: logger}
}

// Pages walks the directory and extracts text from every supported file.
// Unsupported extensions are skipped; a file that fails to read fails the
// whole walk so a build never silently misses a document.
func (d *Dir) Pages() ([]Page, error) {
	var pages []Page

	err := filepath.WalkDir(d.Path, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		var text string
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".md":
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			text = string(data)
		case ".pdf":
			text, err = extractPDF(path)
			if err != nil {
				return fmt.Errorf("extracting %s: %w", path, err)
			}
		default:
			d.Logger.Debug("skipping unsupported file", zap.String("path", path))
			return nil
		}

		if strings.TrimSpace(text) == "" {
			d.Logger.Warn("skipping empty document", zap.String("path", path))
			return nil
		}

		pages = append(pages, Page{URL: "file://" + path, Text: text})
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.Logger.Info("loaded documents", zap.String("dir", d.Path), zap.Int("pages", len(pages)))
	return pages, nil
}

func extractPDF(path string) (string, error) {
	f, rdr, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	b, err := rdr.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, b); err != nil {
		return "", err
	}
	return buf.String(), nil
}
