package query

import (
	"fmt"

	"github.com/gowri-arun/astraq-kg/pkg/graph"
)

// SchemaValidationError rejects a request that references an unknown
// label, edge type, alias or column. It is raised during compilation,
// before any traversal.
type SchemaValidationError struct {
	Identifier string
	Detail     string
}

func (e *SchemaValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("schema validation failed for %q", e.Identifier)
	}
	return fmt.Sprintf("schema validation failed for %q: %s", e.Identifier, e.Detail)
}

// UnknownPropertyError rejects a filter whose property key is not
// declared in the schema for the filtered label. A key that is declared
// but absent from a given node is a non-match, not an error.
type UnknownPropertyError struct {
	Label    graph.Label
	Property string
}

func (e *UnknownPropertyError) Error() string {
	return fmt.Sprintf("property %q is not defined for label %s", e.Property, e.Label)
}
