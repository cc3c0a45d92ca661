package adder

import (
	"fmt"
	"sort"
)

// ModelNameColumn is the column selecting a model variant.
const ModelNameColumn = "model_name"

// Variants selects a build function per row from the value of a model name
// column. An unknown or missing model name fails the row, which aborts the
// invocation before any target is touched.
type Variants[T, O any] struct {
	// Column defaults to ModelNameColumn.
	Column string
	// Default is used when the column is absent for a row. Empty means the
	// model name is mandatory.
	Default string
	Models  map[string]BuildFunc[T, O]
}

// Names returns the accepted model names, sorted.
func (v Variants[T, O]) Names() []string {
	names := make([]string, 0, len(v.Models))
	for name := range v.Models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build dispatches the row to the selected variant.
func (v Variants[T, O]) Build(row *Row) (Deferred[T, O], error) {
	col := v.Column
	if col == "" {
		col = ModelNameColumn
	}
	name, ok := row.Primary().String(col)
	if !ok {
		name = v.Default
	}
	if name == "" {
		return nil, fmt.Errorf("%w: %s is missing", ErrUnknownModel, col)
	}
	build, ok := v.Models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	return build(row)
}
