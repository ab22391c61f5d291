// Package bible loads the scripture corpus and shapes it into retrievable
// documents with canonical metadata (reference, testament, book number).
package bible

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Sentinel errors for corpus loading. Callers branch on these with errors.Is.
var (
	// ErrCorpusNotFound reports a missing corpus resource. Recoverable:
	// callers fall back to PlaceholderCorpus so the pipeline still works
	// end to end with degraded data.
	ErrCorpusNotFound = errors.New("corpus not found")

	// ErrParse reports a malformed corpus resource. Never recovered.
	ErrParse = errors.New("malformed corpus")
)

// Verse is one scripture verse as loaded from the corpus, flattened out of
// the book/chapter hierarchy. Immutable once loaded.
type Verse struct {
	// Book is the book name as spelled in the corpus (e.g. "Genesis").
	Book string

	// Chapter is the 1-based chapter number within the book.
	Chapter int

	// Verse is the 1-based verse number within the chapter.
	Verse int

	// Text is the verse text.
	Text string

	// Translation identifies the corpus translation (e.g. "KJV").
	Translation string
}

// corpusFile mirrors the JSON layout of the corpus resource.
type corpusFile struct {
	Translation string `json:"translation"`
	Books       []struct {
		Name     string `json:"name"`
		Chapters []struct {
			Chapter int `json:"chapter"`
			Verses  []struct {
				Verse int    `json:"verse"`
				Text  string `json:"text"`
			} `json:"verses"`
		} `json:"chapters"`
	} `json:"books"`
}

// LoadCorpus reads the corpus JSON at path and flattens it into one Verse
// per (book, chapter, verse) triple, preserving source order throughout —
// book order, then chapter order, then verse order, with no re-sorting.
//
// A missing file fails with ErrCorpusNotFound; malformed JSON fails with
// ErrParse.
func LoadCorpus(path string) ([]Verse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("bible: %s: %w", path, ErrCorpusNotFound)
		}
		return nil, fmt.Errorf("bible: read corpus %s: %w", path, err)
	}

	var file corpusFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("bible: %s: %w: %w", path, ErrParse, err)
	}

	var verses []Verse
	for _, book := range file.Books {
		for _, ch := range book.Chapters {
			for _, v := range ch.Verses {
				verses = append(verses, Verse{
					Book:        book.Name,
					Chapter:     ch.Chapter,
					Verse:       v.Verse,
					Text:        v.Text,
					Translation: file.Translation,
				})
			}
		}
	}
	return verses, nil
}

// PlaceholderCorpus returns the single-verse degraded corpus used when the
// real resource is unavailable: Genesis 1:1. It keeps the pipeline able to
// demonstrate end-to-end behavior without the full download.
func PlaceholderCorpus() []Verse {
	return []Verse{{
		Book:        "Genesis",
		Chapter:     1,
		Verse:       1,
		Text:        "In the beginning God created the heaven and the earth.",
		Translation: "KJV",
	}}
}
