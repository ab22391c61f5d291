// Package chunk splits document text into overlapping fragments sized for
// embedding. Cuts prefer natural boundaries (paragraph, line, sentence,
// word) over mid-word positions.
package chunk

import (
	"fmt"
	"strings"

	"github.com/biblica-labs/biblica-go/internal/rag"
)

// Default fragment sizing, in characters.
const (
	DefaultSize    = 1000
	DefaultOverlap = 200
)

// separators are the cut boundaries tried in priority order. A hard cut at
// the size limit is the fallback when none occurs in the window.
var separators = []string{"\n\n", "\n", ". ", " "}

// Splitter cuts text into fragments of at most size characters, with
// consecutive fragments sharing overlap characters of context.
type Splitter struct {
	size    int
	overlap int
}

// New returns a Splitter with the given fragment size and overlap.
// Non-positive size falls back to DefaultSize; a negative overlap becomes
// zero, and an overlap at or above the size is clamped to size/5 so the
// splitter always makes forward progress.
func New(size, overlap int) *Splitter {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 5
	}
	return &Splitter{size: size, overlap: overlap}
}

// Split cuts text into fragments. Text no longer than the fragment size is
// returned whole as a single fragment; empty or all-whitespace text yields
// no fragments. Splitting is deterministic.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= s.size {
		return []string{text}
	}

	var fragments []string
	start := 0
	for {
		end := start + s.size
		if end >= len(text) {
			fragments = append(fragments, text[start:])
			return fragments
		}

		cut := s.cutPoint(text, start, end)
		fragments = append(fragments, text[start:cut])
		start = cut - s.overlap
	}
}

// cutPoint picks where to end the fragment starting at start. It scans the
// window for each separator in priority order and takes the last occurrence
// that still lands past the overlap region, so the next fragment begins on
// fresh text. With no usable separator the fragment is cut hard at the size
// limit.
func (s *Splitter) cutPoint(text string, start, end int) int {
	window := text[start:end]
	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		for idx >= 0 {
			cut := start + idx + len(sep)
			if cut > start+s.overlap {
				return cut
			}
			idx = strings.LastIndex(window[:idx], sep)
		}
	}
	return end
}

// SplitDocuments expands each document into its fragments. Documents that
// fit in a single fragment pass through unchanged, keeping their ID; larger
// documents become one document per fragment with "#<n>" appended to the ID
// and the source document's metadata copied onto every fragment.
func (s *Splitter) SplitDocuments(docs []rag.Document) []rag.Document {
	out := make([]rag.Document, 0, len(docs))
	for _, doc := range docs {
		fragments := s.Split(doc.Content)
		switch len(fragments) {
		case 0:
			continue
		case 1:
			d := doc
			d.Content = fragments[0]
			out = append(out, d)
		default:
			for i, frag := range fragments {
				d := rag.Document{
					ID:       fmt.Sprintf("%s#%d", doc.ID, i),
					Content:  frag,
					Source:   doc.Source,
					Metadata: copyMetadata(doc.Metadata),
				}
				out = append(out, d)
			}
		}
	}
	return out
}

func copyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
