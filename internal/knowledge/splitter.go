package knowledge

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

// Catalog chunking is fixed: paragraphs are the unit, and any paragraph longer
// than ChunkSize stays whole.
const (
	ChunkSize    = 10
	ChunkOverlap = 0
	separator    = "\n\n"
)

func newCatalogSplitter() textsplitter.RecursiveCharacter {
	return textsplitter.NewRecursiveCharacter(
		textsplitter.WithSeparators([]string{separator}),
		textsplitter.WithChunkSize(ChunkSize),
		textsplitter.WithChunkOverlap(ChunkOverlap),
	)
}

// SplitCatalog splits catalog text into trimmed, non-empty chunks.
func SplitCatalog(text string) ([]string, error) {
	raw, err := newCatalogSplitter().SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("splitting catalog: %w", err)
	}

	chunks := make([]string, 0, len(raw))
	for _, c := range raw {
		if c = strings.TrimSpace(c); c != "" {
			chunks = append(chunks, c)
		}
	}
	return chunks, nil
}
