package engine

import (
	"reflect"
	"testing"
)

func Test_ExtractCitations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single reference",
			text: "In the beginning (Genesis 1:1) God created the heaven and the earth.",
			want: []string{"Genesis 1:1"},
		},
		{
			name: "numbered book",
			text: "Love is patient, as 1 Corinthians 13:4 says, and 1 John 4:8 adds that God is love.",
			want: []string{"1 Corinthians 13:4", "1 John 4:8"},
		},
		{
			name: "multi-word book",
			text: "The rose of Sharon appears in Song of Solomon 2:1.",
			want: []string{"Song of Solomon 2:1"},
		},
		{
			name: "deduplicates preserving order",
			text: "John 3:16 is central; Genesis 1:1 opens the canon; John 3:16 again.",
			want: []string{"John 3:16", "Genesis 1:1"},
		},
		{
			name: "ignores bare verse numbers and ratios",
			text: "A ratio of 3:1 and the phrase verse 4:2 cite nothing.",
			want: nil,
		},
		{
			name: "no references",
			text: "The provided passages do not answer this question.",
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := extractCitations(tc.text)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("extractCitations(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}
