package vectorstore

import (
	"errors"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

var ErrInvalidChunkOptions = errors.New("chunk size must be positive and overlap must be in [0, size)")

// ChunkOptions are supplied per request.
type ChunkOptions struct {
	Size    int
	Overlap int
}

func (o ChunkOptions) Validate() error {
	if o.Size <= 0 || o.Overlap < 0 || o.Overlap >= o.Size {
		return ErrInvalidChunkOptions
	}
	return nil
}

// SplitText splits text recursively on paragraph, line, word and character
// boundaries into pieces of at most opts.Size runes.
func SplitText(text string, opts ChunkOptions) ([]string, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(opts.Size),
		textsplitter.WithChunkOverlap(opts.Overlap),
	)
	parts, err := splitter.SplitText(text)
	if err != nil {
		return nil, err
	}
	chunks := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			chunks = append(chunks, p)
		}
	}
	return chunks, nil
}
