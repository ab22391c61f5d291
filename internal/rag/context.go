package rag

import (
	"fmt"
	"strings"
)

// FormatContext renders retrieved fragments into the context block handed to
// the chat model: each fragment as "[<reference>] <content>", fragments
// joined by a blank line, in the order given (similarity-descending as
// returned by the retriever).
//
// The reference comes from the fragment's metadata; fragments without one
// fall back to Source, then ID, so a fragment is never rendered anonymously.
func FormatContext(docs []Document) string {
	var sb strings.Builder
	for i, doc := range docs {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[%s] %s", displayRef(doc), doc.Content)
	}
	return sb.String()
}

// displayRef picks the human-readable label for a fragment.
func displayRef(doc Document) string {
	if ref := doc.Metadata["reference"]; ref != "" {
		return ref
	}
	if doc.Source != "" {
		return doc.Source
	}
	return doc.ID
}
