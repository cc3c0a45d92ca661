package table

import (
	"errors"
	"strings"
)

// ErrSchema is matched by every SchemaError through errors.Is.
var ErrSchema = errors.New("schema error")

// SchemaError reports a missing or duplicate column, a missing index or a
// column of the wrong kind. Calls failing with a SchemaError have no effect.
type SchemaError struct {
	Table  string // table or category name, may be empty
	Column string // offending column, may be empty
	Msg    string
}

func (e *SchemaError) Error() string {
	var buf strings.Builder
	buf.WriteString("schema error")
	if e.Table != "" {
		buf.WriteString(" in ")
		buf.WriteString(e.Table)
	}
	if e.Column != "" {
		buf.WriteString(" column ")
		buf.WriteString(e.Column)
	}
	if e.Msg != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Msg)
	}
	return buf.String()
}

// Is makes errors.Is(err, ErrSchema) true for any SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// schemaErr builds a SchemaError.
func schemaErr(tbl, col, msg string) error {
	return &SchemaError{Table: tbl, Column: col, Msg: msg}
}
