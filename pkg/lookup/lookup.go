package lookup

import "context"

// DefinitionClient is the external knowledge collaborator that resolves a
// short natural-language description for a term. Implementations return an
// empty definition on lookup failure; a failed lookup is never an error for
// the caller.
type DefinitionClient interface {
	Definition(ctx context.Context, term string) (string, error)
}
