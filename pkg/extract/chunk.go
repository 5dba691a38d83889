package extract

import (
	"strings"

	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/logger"
)

// Default chunk bounds, in characters, accepted by the annotation service.
const (
	DefaultMaxChunkSize = 6000
	DefaultMinChunkSize = 5
)

// splitChunks partitions text into non-overlapping contiguous windows of at
// most maxSize characters, preserving original order. Each window is
// trimmed; windows whose trimmed length falls below minSize are dropped, not
// merged with neighbors. Empty or whitespace-only input yields no chunks.
func splitChunks(text string, maxSize int, minSize int) []string {
	if maxSize <= 0 {
		maxSize = DefaultMaxChunkSize
	}
	if minSize <= 0 {
		minSize = DefaultMinChunkSize
	}

	runes := []rune(text)
	var chunks []string

	for start := 0; start < len(runes); start += maxSize {
		end := start + maxSize
		if end > len(runes) {
			end = len(runes)
		}

		trimmed := strings.TrimSpace(string(runes[start:end]))
		if trimmed == "" {
			continue
		}
		if len([]rune(trimmed)) < minSize {
			logger.Debug("[Extract] Dropping chunk below minimum size", "length", len([]rune(trimmed)))
			continue
		}
		chunks = append(chunks, trimmed)
	}

	return chunks
}
