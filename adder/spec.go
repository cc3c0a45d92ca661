// Package adder builds domain objects from a primary table and secondary
// tables correlated with it through a shared identifier column.
//
// An invocation runs in fixed phases. The supplied tables are first checked
// against the declared shape and columns; nothing is read before that check
// passes. Each secondary table is then indexed by its join column, and every
// primary row is turned into a Deferred constructor. Deferred constructors are
// evaluated later against a concrete target; a constructor that cannot find
// the elements it references returns false and its row is dropped while the
// rest of the batch proceeds.
package adder

import (
	"fmt"

	"github.com/hugr-lab/gridframe/table"
)

// ColumnSpec declares one column an adder reads.
type ColumnSpec struct {
	Name     string
	Kind     table.Kind
	Required bool
	// Index marks the identifier column of the primary table.
	Index bool
	// EnumValues lists the accepted names of an Enum column.
	EnumValues []string
}

// TableSpec declares one input table of an adder.
// The first table of a definition is the primary table; every following
// table is a secondary table joined to it through JoinColumn.
type TableSpec struct {
	Name    string
	Columns []ColumnSpec
	// JoinColumn holds the primary identifier a secondary row belongs to.
	JoinColumn string
	// Optional secondary tables may be omitted by the caller. Optional
	// tables must follow every required one.
	Optional bool
}

// Column returns the named column spec.
func (s TableSpec) Column(name string) (ColumnSpec, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// IDColumn returns the name of the primary identifier column.
func (s TableSpec) IDColumn() string {
	for _, c := range s.Columns {
		if c.Index {
			return c.Name
		}
	}
	return ""
}

// Descriptors converts the spec to column descriptors for schema introspection.
func (s TableSpec) Descriptors() []table.ColumnDescriptor {
	out := make([]table.ColumnDescriptor, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = table.ColumnDescriptor{
			Name:       c.Name,
			Kind:       c.Kind,
			Index:      c.Index || c.Name == s.JoinColumn,
			Modifiable: true,
			Default:    c.Required,
			EnumValues: c.EnumValues,
		}
	}
	return out
}

// validateSpecs checks a definition's table declarations.
func validateSpecs(category string, specs []TableSpec) error {
	if len(specs) == 0 {
		return fmt.Errorf("adder %s: no tables declared", category)
	}
	if specs[0].Optional {
		return fmt.Errorf("adder %s: primary table cannot be optional", category)
	}
	id, ok := specs[0].Column(specs[0].IDColumn())
	if !ok {
		return fmt.Errorf("adder %s: primary table %s declares no index column", category, specs[0].Name)
	}
	if id.Kind != table.String || !id.Required {
		return fmt.Errorf("adder %s: index column %s must be a required string", category, id.Name)
	}

	optional := false
	for _, s := range specs[1:] {
		if s.Optional {
			optional = true
		} else if optional {
			return fmt.Errorf("adder %s: required table %s follows an optional one", category, s.Name)
		}
		join, ok := s.Column(s.JoinColumn)
		if !ok || join.Kind != table.String || !join.Required {
			return fmt.Errorf("adder %s: table %s must declare required string join column %q", category, s.Name, s.JoinColumn)
		}
	}
	return nil
}

// requiredTables returns the number of tables a caller must supply.
func requiredTables(specs []TableSpec) int {
	n := 0
	for _, s := range specs {
		if !s.Optional {
			n++
		}
	}
	return n
}

// checkColumns verifies that tbl carries every required column of spec and
// that every declared column it carries has an acceptable kind.
func checkColumns(spec TableSpec, tbl *table.UpdatingTable) error {
	for _, c := range spec.Columns {
		s, ok := tbl.Column(c.Name)
		if !ok {
			if c.Required {
				return &table.SchemaError{Table: spec.Name, Column: c.Name, Msg: "required column missing"}
			}
			continue
		}
		if !kindAccepted(c.Kind, s.Kind()) {
			return &table.SchemaError{Table: spec.Name, Column: c.Name,
				Msg: fmt.Sprintf("got %s values, expected %s", s.Kind(), c.Kind)}
		}
	}
	return nil
}

func kindAccepted(want, got table.Kind) bool {
	if want == got {
		return true
	}
	return want == table.Enum && got == table.String
}
