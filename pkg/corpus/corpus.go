package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Corpus is the static set of recognized concept titles, loaded once at
// process start and immutable afterwards.
type Corpus struct {
	titles map[string]struct{}
}

// Load reads a newline-delimited UTF-8 title file into a Corpus.
// Titles are stored as found in the file; membership checks tolerate
// mixed-case entries via Contains.
func Load(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read builds a Corpus from a newline-delimited reader. Blank lines are
// skipped.
func Read(r io.Reader) (*Corpus, error) {
	titles := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		title := strings.TrimSpace(scanner.Text())
		if title == "" {
			continue
		}
		titles[title] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}

	return &Corpus{titles: titles}, nil
}

// New builds a Corpus from an in-memory title list.
func New(titles []string) *Corpus {
	set := make(map[string]struct{}, len(titles))
	for _, title := range titles {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		set[title] = struct{}{}
	}
	return &Corpus{titles: set}
}

// Contains reports whether term, in its original or lower-cased form, is a
// corpus title.
func (c *Corpus) Contains(term string) bool {
	if _, ok := c.titles[term]; ok {
		return true
	}
	_, ok := c.titles[strings.ToLower(term)]
	return ok
}

// Len returns the number of loaded titles.
func (c *Corpus) Len() int {
	return len(c.titles)
}
