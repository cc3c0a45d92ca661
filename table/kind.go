// Package table provides the columnar representation exchanged with callers:
// named, typed Series backed by Arrow arrays, and UpdatingTable, the read-only
// view over caller-supplied columns used to update or create domain objects.
//
// A Series is reference counted like every Arrow object. Callers that keep a
// Series beyond the callback it was handed to MUST call Retain, and every
// Retain or constructor call MUST be balanced by Release.
package table

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// Kind is the logical type of a column.
type Kind int

const (
	// String columns hold UTF-8 text.
	String Kind = iota
	// Int columns hold 64-bit integers. 32-bit input arrays are accepted.
	Int
	// Double columns hold 64-bit floats. NaN is the absent marker.
	Double
	// Bool columns hold booleans.
	Bool
	// Enum columns hold ordinals into a fixed list of value names.
	Enum
)

var kindNames = [...]string{
	String: "string",
	Int:    "int",
	Double: "double",
	Bool:   "bool",
	Enum:   "enum",
}

// String returns the lowercase kind name used in field metadata.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= String && k <= Enum
}

// ParseKind converts a kind name back to a Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown column kind %q", name)
}

// ArrowType returns the Arrow data type produced for the kind.
func (k Kind) ArrowType() arrow.DataType {
	switch k {
	case String:
		return arrow.BinaryTypes.String
	case Int:
		return arrow.PrimitiveTypes.Int64
	case Double:
		return arrow.PrimitiveTypes.Float64
	case Bool:
		return arrow.FixedWidthTypes.Boolean
	case Enum:
		return arrow.PrimitiveTypes.Int32
	default:
		return nil
	}
}

// accepts reports whether an Arrow array of the given type can back a column of kind k.
func (k Kind) accepts(dt arrow.DataType) bool {
	if dt == nil {
		return false
	}
	switch k {
	case String:
		return dt.ID() == arrow.STRING
	case Int:
		return dt.ID() == arrow.INT64 || dt.ID() == arrow.INT32
	case Double:
		return dt.ID() == arrow.FLOAT64
	case Bool:
		return dt.ID() == arrow.BOOL
	case Enum:
		return dt.ID() == arrow.INT32
	default:
		return false
	}
}

// kindFromType infers a kind from an Arrow type when no "kind" metadata is present.
func kindFromType(dt arrow.DataType) (Kind, bool) {
	switch dt.ID() {
	case arrow.STRING:
		return String, true
	case arrow.INT64, arrow.INT32:
		return Int, true
	case arrow.FLOAT64:
		return Double, true
	case arrow.BOOL:
		return Bool, true
	default:
		return 0, false
	}
}
