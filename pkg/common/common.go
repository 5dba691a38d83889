package common

// Concept is a normalized term that survived every filtering stage of the
// extraction pipeline. Concepts are value objects identified by their
// normalized text: trimmed, lower-cased, 3 to 25 characters, and not a
// stopword. Uniqueness is by exact string equality, both within one
// document's result and across documents in the global graph.
type Concept struct {
	Term string `json:"term"`
}

// Relationship is a directed, labeled edge between two concepts of one
// document. Direction follows the dependency grammar: Source is the
// dependent token's concept and Target is its head's concept. The label is
// a human-readable remap of the raw dependency tag, or the raw tag itself
// when no remap exists. Source and Target are never equal.
type Relationship struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}

// DifficultySegment carries the cognitive-difficulty score of one layout
// block on one page. Segments are computed per upload request and never
// persisted. Reasons are sorted and de-duplicated.
type DifficultySegment struct {
	SegmentID   string   `json:"segment_id"`
	PageIndex   int      `json:"page_index"`
	BlockIndex  int      `json:"block_index_on_page"`
	TextPreview string   `json:"text_preview"`
	Score       float64  `json:"score"`
	Reasons     []string `json:"reasons"`
}

// Document identifies one ingested document in the global graph.
type Document struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ExtractionResult is the per-document output of the concept pipeline.
type ExtractionResult struct {
	Concepts      []Concept      `json:"concepts"`
	Relationships []Relationship `json:"relationships"`
}
