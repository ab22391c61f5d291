package bible

import "testing"

func Test_Reference(t *testing.T) {
	t.Parallel()

	cases := []struct {
		verse Verse
		want  string
	}{
		{Verse{Book: "Genesis", Chapter: 1, Verse: 1}, "Genesis 1:1"},
		{Verse{Book: "Song of Solomon", Chapter: 2, Verse: 1}, "Song of Solomon 2:1"},
		{Verse{Book: "1 John", Chapter: 4, Verse: 8}, "1 John 4:8"},
	}

	for _, tc := range cases {
		if got := Reference(tc.verse); got != tc.want {
			t.Errorf("Reference(%+v) = %q, want %q", tc.verse, got, tc.want)
		}
	}
}

func Test_Documents_OnePerVerse(t *testing.T) {
	t.Parallel()

	verses := []Verse{
		{Book: "Genesis", Chapter: 1, Verse: 1, Text: "In the beginning God created the heaven and the earth.", Translation: "KJV"},
		{Book: "Genesis", Chapter: 1, Verse: 2, Text: "And the earth was without form, and void.", Translation: "KJV"},
		{Book: "John", Chapter: 3, Verse: 16, Text: "For God so loved the world.", Translation: "KJV"},
	}

	docs := Documents(verses)
	if len(docs) != len(verses) {
		t.Fatalf("got %d documents for %d verses", len(docs), len(verses))
	}

	ids := make(map[string]bool, len(docs))
	for i, doc := range docs {
		if ids[doc.ID] {
			t.Errorf("duplicate document ID %q", doc.ID)
		}
		ids[doc.ID] = true
		if doc.Content != verses[i].Text {
			t.Errorf("document %d content = %q, want %q", i, doc.Content, verses[i].Text)
		}
	}
}

func Test_Documents_Metadata(t *testing.T) {
	t.Parallel()

	docs := Documents(PlaceholderCorpus())
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}
	doc := docs[0]

	if doc.ID != "genesis-1-1" {
		t.Errorf("ID = %q, want %q", doc.ID, "genesis-1-1")
	}

	wantMeta := map[string]string{
		"book":        "Genesis",
		"chapter":     "1",
		"verse":       "1",
		"reference":   "Genesis 1:1",
		"translation": "KJV",
		"testament":   "Old",
		"book_number": "1",
		"chunk_type":  "verse",
	}
	for key, want := range wantMeta {
		if got := doc.Metadata[key]; got != want {
			t.Errorf("metadata[%q] = %q, want %q", key, got, want)
		}
	}
	if len(doc.Metadata) != len(wantMeta) {
		t.Errorf("metadata has %d keys, want %d: %v", len(doc.Metadata), len(wantMeta), doc.Metadata)
	}
}

func Test_Documents_TranslationDefault(t *testing.T) {
	t.Parallel()

	docs := Documents([]Verse{{Book: "John", Chapter: 11, Verse: 35, Text: "Jesus wept."}})
	if got := docs[0].Metadata["translation"]; got != "KJV" {
		t.Errorf("translation = %q, want default %q", got, "KJV")
	}
}

func Test_DocID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		verse Verse
		want  string
	}{
		{Verse{Book: "Genesis", Chapter: 1, Verse: 1}, "genesis-1-1"},
		{Verse{Book: "Song of Solomon", Chapter: 2, Verse: 1}, "song-of-solomon-2-1"},
		{Verse{Book: "1 Corinthians", Chapter: 13, Verse: 4}, "1-corinthians-13-4"},
	}

	for _, tc := range cases {
		if got := docID(tc.verse); got != tc.want {
			t.Errorf("docID(%+v) = %q, want %q", tc.verse, got, tc.want)
		}
	}
}
