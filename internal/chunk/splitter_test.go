package chunk

import (
	"fmt"
	"strings"
	"testing"

	"github.com/biblica-labs/biblica-go/internal/rag"
)

func Test_New_ClampsArguments(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		size        int
		overlap     int
		wantSize    int
		wantOverlap int
	}{
		{"defaults", 0, -5, DefaultSize, 0},
		{"overlap equals size", 100, 100, 100, 20},
		{"overlap above size", 100, 250, 100, 20},
		{"valid passthrough", 500, 50, 500, 50},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := New(tc.size, tc.overlap)
			if s.size != tc.wantSize || s.overlap != tc.wantOverlap {
				t.Errorf("New(%d, %d) = {size: %d, overlap: %d}, want {size: %d, overlap: %d}",
					tc.size, tc.overlap, s.size, s.overlap, tc.wantSize, tc.wantOverlap)
			}
		})
	}
}

func Test_Split_ShortTextIsSingleFragment(t *testing.T) {
	t.Parallel()

	s := New(1000, 200)
	text := "In the beginning God created the heaven and the earth."

	got := s.Split(text)
	if len(got) != 1 || got[0] != text {
		t.Fatalf("Split(short text) = %q, want [%q]", got, text)
	}
}

func Test_Split_EmptyAndWhitespace(t *testing.T) {
	t.Parallel()

	s := New(100, 10)
	if got := s.Split(""); got != nil {
		t.Errorf("Split(empty) = %q, want nil", got)
	}
	if got := s.Split("  \n\t  "); got != nil {
		t.Errorf("Split(whitespace) = %q, want nil", got)
	}
	if got := s.Split("  hi  "); len(got) != 1 || got[0] != "hi" {
		t.Errorf("Split(padded) = %q, want [%q]", got, "hi")
	}
}

func Test_Split_PrefersParagraphBoundary(t *testing.T) {
	t.Parallel()

	s := New(50, 10)
	text := "First paragraph sits here.\n\nSecond paragraph follows after."

	got := s.Split(text)
	if len(got) != 2 {
		t.Fatalf("got %d fragments, want 2: %q", len(got), got)
	}
	if !strings.HasSuffix(got[0], "\n\n") {
		t.Errorf("first fragment not cut at paragraph break: %q", got[0])
	}
	if !strings.HasPrefix(text, got[0]) {
		t.Errorf("first fragment is not a prefix of the input: %q", got[0])
	}
	if !strings.HasSuffix(text, got[1]) {
		t.Errorf("last fragment is not a suffix of the input: %q", got[1])
	}
	if rebuilt := got[0] + got[1][10:]; rebuilt != text {
		t.Errorf("fragments do not reconstruct the input:\n got %q\nwant %q", rebuilt, text)
	}
}

func Test_Split_PrefersSentenceOverWordBoundary(t *testing.T) {
	t.Parallel()

	s := New(40, 5)
	text := "One fish. Two fish. Red fish and more words beyond the line."

	got := s.Split(text)
	if len(got) < 2 {
		t.Fatalf("got %d fragments, want at least 2: %q", len(got), got)
	}
	if got[0] != "One fish. Two fish. " {
		t.Errorf("first fragment = %q, want cut after the last sentence boundary", got[0])
	}
}

func Test_Split_HardCutWithoutSeparators(t *testing.T) {
	t.Parallel()

	s := New(10, 3)
	text := strings.Repeat("a", 25)

	got := s.Split(text)
	if len(got) != 4 {
		t.Fatalf("got %d fragments, want 4: %q", len(got), got)
	}
	for i, frag := range got {
		if len(frag) > 10 {
			t.Errorf("fragment %d has %d chars, want <= 10", i, len(frag))
		}
	}

	rebuilt := got[0]
	for _, frag := range got[1:] {
		rebuilt += frag[3:]
	}
	if rebuilt != text {
		t.Errorf("fragments do not reconstruct the input: %q", rebuilt)
	}
}

func Test_Split_Deterministic(t *testing.T) {
	t.Parallel()

	s := New(80, 20)
	text := strings.Repeat("And God said, Let there be light: and there was light. ", 10)

	first := s.Split(text)
	second := s.Split(text)
	if len(first) != len(second) {
		t.Fatalf("fragment counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("fragment %d differs between runs", i)
		}
	}
}

func Test_SplitDocuments_PassthroughKeepsID(t *testing.T) {
	t.Parallel()

	s := New(1000, 200)
	docs := []rag.Document{
		{ID: "genesis-1-1", Content: "In the beginning God created the heaven and the earth.", Metadata: map[string]string{"reference": "Genesis 1:1"}},
		{ID: "genesis-1-2", Content: "And the earth was without form, and void.", Metadata: map[string]string{"reference": "Genesis 1:2"}},
	}

	got := s.SplitDocuments(docs)
	if len(got) != 2 {
		t.Fatalf("got %d documents, want 2", len(got))
	}
	for i, doc := range got {
		if doc.ID != docs[i].ID {
			t.Errorf("document %d ID = %q, want %q", i, doc.ID, docs[i].ID)
		}
		if doc.Content != docs[i].Content {
			t.Errorf("document %d content changed", i)
		}
	}
}

func Test_SplitDocuments_LargeDocumentFansOut(t *testing.T) {
	t.Parallel()

	s := New(200, 40)
	doc := rag.Document{
		ID:      "psalm-119",
		Content: strings.Repeat("Blessed are the undefiled in the way, who walk in the law of the LORD. ", 30),
		Metadata: map[string]string{
			"reference": "Psalms 119:1",
			"book":      "Psalms",
		},
	}

	got := s.SplitDocuments([]rag.Document{doc})
	if len(got) < 2 {
		t.Fatalf("got %d fragments, want several", len(got))
	}
	for i, frag := range got {
		if wantID := fmt.Sprintf("psalm-119#%d", i); frag.ID != wantID {
			t.Errorf("fragment %d ID = %q, want %q", i, frag.ID, wantID)
		}
		if len(frag.Content) > 200 {
			t.Errorf("fragment %d has %d chars, want <= 200", i, len(frag.Content))
		}
		if frag.Metadata["reference"] != "Psalms 119:1" || frag.Metadata["book"] != "Psalms" {
			t.Errorf("fragment %d metadata not inherited: %v", i, frag.Metadata)
		}
	}

	// Fragment metadata must be independent copies, not shared maps.
	got[0].Metadata["book"] = "mutated"
	if doc.Metadata["book"] != "Psalms" {
		t.Error("mutating a fragment's metadata changed the source document")
	}
	if len(got) > 1 && got[1].Metadata["book"] != "Psalms" {
		t.Error("mutating one fragment's metadata changed a sibling fragment")
	}
}

func Test_SplitDocuments_DropsEmptyContent(t *testing.T) {
	t.Parallel()

	s := New(100, 10)
	docs := []rag.Document{
		{ID: "blank", Content: "   "},
		{ID: "kept", Content: "Jesus wept."},
	}

	got := s.SplitDocuments(docs)
	if len(got) != 1 || got[0].ID != "kept" {
		t.Fatalf("got %v, want only the non-empty document", got)
	}
}
