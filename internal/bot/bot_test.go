package bot

import (
	"strings"
	"testing"

	"github.com/varoOP/kinobot/internal/format"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{name: "short", text: "a\nb\n", limit: 10, want: []string{"a\nb\n"}},
		{name: "on lines", text: "aaa\nbbb\nccc\n", limit: 8, want: []string{"aaa\nbbb\n", "ccc\n"}},
		{name: "long line", text: "abcdefgh", limit: 3, want: []string{"abc", "def", "gh"}},
		{name: "surrogate pairs", text: "👤👤👤", limit: 4, want: []string{"👤👤", "👤"}},
		{name: "cyrillic", text: "дюна\nдюна\n", limit: 5, want: []string{"дюна\n", "дюна\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := split(tt.text, tt.limit)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Fatalf("split(%q, %d) = %q, want %q", tt.text, tt.limit, got, tt.want)
			}
		})
	}
}

func TestSplitKeepsEverything(t *testing.T) {
	text := strings.Repeat("👤 42: Дюна — 3\n", 1000)

	chunks := split(text, maxMessageLength)
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := format.Units(c); n > maxMessageLength {
			t.Fatalf("chunk %d has %d units", i, n)
		}
	}
	if strings.Join(chunks, "") != text {
		t.Fatal("chunks do not reassemble the text")
	}
}
