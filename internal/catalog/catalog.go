// Package catalog turns a product catalog source into plain text ready to be
// split and indexed.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyCatalog = errors.New("catalog: no content")
	ErrNoSource     = errors.New("catalog: source is required")
)

// Options control how remote and HTML catalogs are read.
type Options struct {
	// RenderJS loads pages in a headless browser before extracting text.
	RenderJS  bool
	UserAgent string
}

// Load returns the text of the catalog at source, which is a local file path
// or an http(s) URL.
func Load(ctx context.Context, source string, opts Options) (string, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", ErrNoSource
	}

	var (
		text string
		err  error
	)
	switch {
	case isURL(source):
		text, err = NewFetcher(opts).Fetch(ctx, source)
	default:
		text, err = loadFile(source)
	}
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyCatalog, source)
	}
	return text, nil
}

func loadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading catalog: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		products, err := ParseProducts(data)
		if err != nil {
			return "", fmt.Errorf("parsing catalog %s: %w", path, err)
		}
		return RenderProducts(products), nil
	case ".html", ".htm":
		abs, _ := filepath.Abs(path)
		return ExtractHTML(strings.NewReader(string(data)), "file://"+filepath.ToSlash(abs))
	default:
		return string(data), nil
	}
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
