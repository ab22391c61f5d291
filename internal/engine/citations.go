package engine

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/biblica-labs/biblica-go/internal/logging"
	"github.com/biblica-labs/biblica-go/internal/rag"
)

// referencePattern matches canonical verse references like "Genesis 1:1",
// "1 John 4:8", or "Song of Solomon 2:1" in answer text.
var referencePattern = regexp.MustCompile(`\b(?:[1-3] )?[A-Z][a-z]+(?: of [A-Z][a-z]+)?(?: [A-Z][a-z]+)* \d{1,3}:\d{1,3}\b`)

// extractCitations returns the verse references found in text, deduplicated
// in order of first appearance.
func extractCitations(text string) []string {
	matches := referencePattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	refs := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		refs = append(refs, m)
	}
	return refs
}

// logCitations records the verse references cited in an answer and flags
// any that do not appear among the retrieved passages. Observability only:
// the answer text itself is never modified.
func (e *Engine) logCitations(ctx context.Context, answer string, docs []rag.Document) {
	refs := extractCitations(answer)
	if len(refs) == 0 {
		return
	}

	retrieved := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		if ref := doc.Metadata["reference"]; ref != "" {
			retrieved[ref] = struct{}{}
		}
	}
	var ungrounded []string
	for _, ref := range refs {
		if _, ok := retrieved[ref]; !ok {
			ungrounded = append(ungrounded, ref)
		}
	}

	log := logging.FromContext(ctx)
	log.Debug("answer cited verses",
		slog.Int("count", len(refs)),
		slog.Any("references", refs),
	)
	if len(ungrounded) > 0 {
		log.Debug("citations outside retrieved passages",
			slog.Any("references", ungrounded),
		)
	}
}
