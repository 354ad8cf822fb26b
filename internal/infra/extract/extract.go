// Package extract converts stored document bytes into plain text. The format is
// chosen by the declared filename's extension only.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bryanwahyu/docmind/internal/domain/ai"
	"github.com/bryanwahyu/docmind/internal/domain/documents"
)

type handler func(data []byte) (string, error)

// formats is the closed set of supported extensions.
var formats = map[string]handler{
	".txt":  extractText,
	".pdf":  extractPDF,
	".docx": extractDOCX,
}

// Extractor implements format dispatch. The zero value is ready to use.
type Extractor struct{}

func New() *Extractor { return &Extractor{} }

// ExtractFile reads the file at path and extracts its text according to filename.
// The name of path itself plays no part in dispatch.
func (e *Extractor) ExtractFile(path, filename string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ai.ErrSourceNotFound, path)
		}
		return "", err
	}
	defer f.Close()
	return e.Extract(f, filename)
}

// filePather is implemented by stores that keep documents as local files.
type filePather interface {
	Path(key string) (string, error)
}

// ExtractStored extracts the document stored under key. Stores backed by the
// local filesystem are read straight from disk; others are streamed via Open.
func (e *Extractor) ExtractStored(ctx context.Context, store documents.ByteStore, key, filename string) (string, error) {
	if fp, ok := store.(filePather); ok {
		path, err := fp.Path(key)
		if err != nil {
			return "", err
		}
		return e.ExtractFile(path, filename)
	}
	rc, err := store.Open(ctx, key)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return e.Extract(rc, filename)
}

// Extract reads r fully and extracts its text according to filename.
// An empty result is valid and is not an error.
func (e *Extractor) Extract(r io.Reader, filename string) (string, error) {
	h, err := lookup(filename)
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return h(data)
}

// Supports reports whether filename has a supported extension.
func (e *Extractor) Supports(filename string) bool { return Supports(filename) }

// Supports reports whether filename has a supported extension.
func Supports(filename string) bool {
	_, ok := formats[ext(filename)]
	return ok
}

// SupportedExtensions lists the recognized extensions in sorted order.
func SupportedExtensions() []string {
	out := make([]string, 0, len(formats))
	for k := range formats {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func lookup(filename string) (handler, error) {
	x := ext(filename)
	h, ok := formats[x]
	if !ok {
		if x == "" {
			x = "(none)"
		}
		return nil, fmt.Errorf("%w: %s (expected one of %s)", ai.ErrUnsupportedFormat, x, strings.Join(SupportedExtensions(), ", "))
	}
	return h, nil
}

func ext(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// extractText decodes UTF-8, replacing invalid sequences instead of failing.
func extractText(data []byte) (string, error) {
	return string(bytes.ToValidUTF8(data, []byte("�"))), nil
}
