package util

import "testing"

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "empty", value: "", want: ""},
		{name: "clean text", value: "深度学习 deep learning", want: "深度学习 deep learning"},
		{name: "nul bytes removed", value: "a\x00b\x00c", want: "abc"},
		{name: "invalid utf8 removed", value: "ok\xff\xfetext", want: "oktext"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeText(tt.value); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
