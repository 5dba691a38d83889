package annotate

import (
	"context"
	"encoding/json"
	"fmt"
)

// Task names requested from the annotation service.
const (
	TaskTokenize   = "tok/coarse"
	TaskPOS        = "pos/pku"
	TaskNER        = "ner/ontonotes"
	TaskDependency = "dep"
)

// SkipTasks lists service tasks never needed by the pipeline.
const SkipTasks = "tok/fine"

// Arc is one dependency arc: the 1-based index of the head token within the
// sentence (0 means root or unattached) and the raw relation label.
// On the wire it is a two-element array, e.g. [3, "nsubj"].
type Arc struct {
	Head     int
	Relation string
}

func (a *Arc) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 2 {
		return fmt.Errorf("dependency arc has %d elements, want 2", len(raw))
	}
	if err := json.Unmarshal(raw[0], &a.Head); err != nil {
		return fmt.Errorf("invalid arc head: %w", err)
	}
	if err := json.Unmarshal(raw[1], &a.Relation); err != nil {
		return fmt.Errorf("invalid arc relation: %w", err)
	}
	return nil
}

func (a Arc) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{a.Head, a.Relation})
}

// Entity is one named-entity span. On the wire it is an array of surface
// text, label and token offsets, e.g. ["深度学习", "CONCEPT", 0, 2].
// Only the surface text is required; offsets default to zero when absent.
type Entity struct {
	Text  string
	Label string
	Begin int
	End   int
}

func (e *Entity) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		return fmt.Errorf("entity span is empty")
	}
	if err := json.Unmarshal(raw[0], &e.Text); err != nil {
		return fmt.Errorf("invalid entity text: %w", err)
	}
	if len(raw) > 1 {
		if err := json.Unmarshal(raw[1], &e.Label); err != nil {
			return fmt.Errorf("invalid entity label: %w", err)
		}
	}
	if len(raw) > 3 {
		if err := json.Unmarshal(raw[2], &e.Begin); err != nil {
			return fmt.Errorf("invalid entity begin offset: %w", err)
		}
		if err := json.Unmarshal(raw[3], &e.End); err != nil {
			return fmt.Errorf("invalid entity end offset: %w", err)
		}
	}
	return nil
}

func (e Entity) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Text, e.Label, e.Begin, e.End})
}

// Annotation is the typed result of annotating one chunk. All fields are
// parallel per-sentence arrays. A missing task in the service response
// leaves the corresponding field empty; consumers must treat sentences with
// mismatched token/tag or token/arc lengths as malformed and skip them.
type Annotation struct {
	Tokens   [][]string `json:"tok/coarse"`
	Tags     [][]string `json:"pos/pku"`
	Entities [][]Entity `json:"ner/ontonotes"`
	Arcs     [][]Arc    `json:"dep"`
}

// Parse decodes a raw annotation service response into an Annotation.
// Absent task keys are tolerated; they degrade the dependent pipeline
// stages rather than failing the chunk.
func Parse(data []byte) (*Annotation, error) {
	var a Annotation
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode annotation response: %w", err)
	}
	return &a, nil
}

// SentenceWellFormed reports whether sentence i carries matching token and
// tag arrays. Sentences failing this check are skipped one at a time, never
// failing the whole chunk.
func (a *Annotation) SentenceWellFormed(i int) bool {
	if i >= len(a.Tokens) || i >= len(a.Tags) {
		return false
	}
	return len(a.Tokens[i]) == len(a.Tags[i]) && len(a.Tokens[i]) > 0
}

// Annotator is the external linguistic annotation collaborator. Given one
// chunk of text it returns tokenized sentences, POS tags, NER spans and
// dependency arcs.
type Annotator interface {
	Annotate(ctx context.Context, text string) (*Annotation, error)
}
