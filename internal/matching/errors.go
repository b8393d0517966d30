package matching

import "fmt"

// SchemaError reports an input table that does not fit the expected columns.
type SchemaError struct {
	Table  string
	Column string
	// Reason is empty when the column is missing.
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: missing required column %q", e.Table, e.Column)
	}
	return fmt.Sprintf("%s: column %q: %s", e.Table, e.Column, e.Reason)
}

// ConsistencyError reports a match that references an id absent from its
// source table. It points at a bug in the pipeline, not at bad input.
type ConsistencyError struct {
	Kind string
	ID   string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("match references unknown %s id %q", e.Kind, e.ID)
}
