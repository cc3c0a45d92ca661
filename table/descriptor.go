package table

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
)

// Field metadata keys describing a column on the wire.
const (
	MetaIndex      = "is_index"
	MetaKind       = "kind"
	MetaModifiable = "modifiable"
	MetaDefault    = "default"
	MetaEnumValues = "enum_values"
)

// ColumnDescriptor is the data-independent description of a column.
// Callers can validate a table against descriptors before sending any data.
type ColumnDescriptor struct {
	Name string
	Kind Kind

	// Index marks the column as (part of) the row identifier.
	Index bool

	// Modifiable reports whether the column can be used in updates.
	Modifiable bool

	// Default reports whether the column is produced with DefaultAttributes.
	Default bool

	// EnumValues lists value names for Enum columns, indexed by ordinal.
	EnumValues []string
}

// Field returns the Arrow field carrying the descriptor as metadata.
func (d ColumnDescriptor) Field() arrow.Field {
	keys := []string{MetaKind, MetaIndex, MetaModifiable, MetaDefault}
	values := []string{
		d.Kind.String(),
		strconv.FormatBool(d.Index),
		strconv.FormatBool(d.Modifiable),
		strconv.FormatBool(d.Default),
	}
	if d.Kind == Enum {
		keys = append(keys, MetaEnumValues)
		values = append(values, strings.Join(d.EnumValues, ","))
	}
	return arrow.Field{
		Name:     d.Name,
		Type:     d.Kind.ArrowType(),
		Nullable: !d.Index,
		Metadata: arrow.NewMetadata(keys, values),
	}
}

// DescriptorOf reads a descriptor back from an Arrow field.
// Fields without "kind" metadata get a kind inferred from their type.
func DescriptorOf(field arrow.Field) (ColumnDescriptor, error) {
	d := ColumnDescriptor{Name: field.Name, Modifiable: true, Default: true}
	md := field.Metadata

	if v, ok := metaValue(md, MetaKind); ok {
		k, err := ParseKind(v)
		if err != nil {
			return d, schemaErr("", field.Name, err.Error())
		}
		d.Kind = k
	} else {
		k, ok := kindFromType(field.Type)
		if !ok {
			return d, schemaErr("", field.Name, fmt.Sprintf("unsupported arrow type %s", field.Type))
		}
		d.Kind = k
	}
	if !d.Kind.accepts(field.Type) {
		return d, schemaErr("", field.Name, fmt.Sprintf("arrow type %s does not match kind %s", field.Type, d.Kind))
	}

	d.Index = metaBool(md, MetaIndex, false)
	d.Modifiable = metaBool(md, MetaModifiable, true)
	d.Default = metaBool(md, MetaDefault, true)
	if v, ok := metaValue(md, MetaEnumValues); ok && v != "" {
		d.EnumValues = strings.Split(v, ",")
	}
	return d, nil
}

// NewSchema builds the Arrow schema for a list of descriptors.
func NewSchema(descs []ColumnDescriptor) *arrow.Schema {
	fields := make([]arrow.Field, len(descs))
	for i, d := range descs {
		fields[i] = d.Field()
	}
	return arrow.NewSchema(fields, nil)
}

// FindIndexColumns returns the positions of the index columns in the schema,
// in schema order. Returns nil if no index column is found or schema is nil.
//
// Index columns are identified by metadata key "is_index" with value "true".
//
// Example:
//
//	idx := table.FindIndexColumns(rec.Schema())
//	if len(idx) == 0 {
//	    return errors.New("index column required")
//	}
func FindIndexColumns(schema *arrow.Schema) []int {
	if schema == nil {
		return nil
	}

	var out []int
	for i := 0; i < schema.NumFields(); i++ {
		if metaBool(schema.Field(i).Metadata, MetaIndex, false) {
			out = append(out, i)
		}
	}
	return out
}

func metaValue(md arrow.Metadata, key string) (string, bool) {
	if md.Len() == 0 {
		return "", false
	}
	idx := md.FindKey(key)
	if idx < 0 {
		return "", false
	}
	return md.Values()[idx], true
}

func metaBool(md arrow.Metadata, key string, def bool) bool {
	v, ok := metaValue(md, key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
