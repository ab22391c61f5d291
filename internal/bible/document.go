package bible

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/biblica-labs/biblica-go/internal/rag"
)

// Reference renders the canonical verse reference, "<book> <chapter>:<verse>".
func Reference(v Verse) string {
	return fmt.Sprintf("%s %d:%d", v.Book, v.Chapter, v.Verse)
}

// Documents maps each verse to exactly one retrievable document. Pure and
// deterministic: the output depends only on the input verses and the fixed
// canon tables. Each document carries the full provenance metadata used for
// citation rendering and faceting.
func Documents(verses []Verse) []rag.Document {
	docs := make([]rag.Document, 0, len(verses))
	for _, v := range verses {
		docs = append(docs, document(v))
	}
	return docs
}

// document maps a single verse. Unknown book names keep testament "New" and
// book_number "0" — a data-quality signal from the source corpus, not an
// error.
func document(v Verse) rag.Document {
	translation := v.Translation
	if translation == "" {
		translation = "KJV"
	}
	return rag.Document{
		ID:      docID(v),
		Content: v.Text,
		Metadata: map[string]string{
			"book":        v.Book,
			"chapter":     strconv.Itoa(v.Chapter),
			"verse":       strconv.Itoa(v.Verse),
			"reference":   Reference(v),
			"translation": translation,
			"testament":   Testament(v.Book),
			"book_number": strconv.Itoa(BookNumber(v.Book)),
			"chunk_type":  "verse",
		},
	}
}

// docID returns the stable fragment ID for a verse, e.g. "genesis-1-1" or
// "song-of-solomon-2-1".
func docID(v Verse) string {
	book := strings.ToLower(strings.ReplaceAll(v.Book, " ", "-"))
	return fmt.Sprintf("%s-%d-%d", book, v.Chapter, v.Verse)
}
