package extract

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitChunks(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		maxSize int
		minSize int
		want    []string
	}{
		{
			name:    "empty input",
			text:    "",
			maxSize: 10,
			minSize: 5,
			want:    []string(nil),
		},
		{
			name:    "whitespace only",
			text:    "   \n\t  ",
			maxSize: 10,
			minSize: 5,
			want:    []string(nil),
		},
		{
			name:    "below minimum size",
			text:    "ab",
			maxSize: 10,
			minSize: 5,
			want:    []string(nil),
		},
		{
			name:    "single chunk",
			text:    "hello world",
			maxSize: 100,
			minSize: 5,
			want:    []string{"hello world"},
		},
		{
			name:    "exact window split",
			text:    "aaaaabbbbb",
			maxSize: 5,
			minSize: 1,
			want:    []string{"aaaaa", "bbbbb"},
		},
		{
			name:    "chunks are trimmed",
			text:    "aaaa \n bbbb",
			maxSize: 6,
			minSize: 1,
			want:    []string{"aaaa", "bbbb"},
		},
		{
			name:    "short tail dropped",
			text:    "aaaaaaaaaa bcd",
			maxSize: 11,
			minSize: 5,
			want:    []string{"aaaaaaaaaa"},
		},
		{
			name:    "multibyte runes split by rune count",
			text:    strings.Repeat("深", 7),
			maxSize: 5,
			minSize: 1,
			want:    []string{strings.Repeat("深", 5), strings.Repeat("深", 2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitChunks(tt.text, tt.maxSize, tt.minSize)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitChunks() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplitChunksDefaults(t *testing.T) {
	text := strings.Repeat("a", DefaultMaxChunkSize+10)
	got := splitChunks(text, 0, 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(got))
	}
	if len(got[0]) != DefaultMaxChunkSize {
		t.Errorf("first chunk length = %d, want %d", len(got[0]), DefaultMaxChunkSize)
	}
}
