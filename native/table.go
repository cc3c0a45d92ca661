package native

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/gridframe/table"
)

// Table is a named series array (gf_table), the form in which callers hand
// tables to adders and updates.
type Table struct {
	Name    *byte
	Columns Array
}

// ImportTable copies a caller-owned table. Index flags are taken from the
// series headers. Caller MUST call Release on the result.
func ImportTable(t *Table, mem memory.Allocator) (*table.UpdatingTable, error) {
	if t == nil {
		return nil, &table.SchemaError{Msg: "table is NULL"}
	}
	name := GoString(t.Name)
	series, err := ImportSeriesArray(t.Columns, mem)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", name, err)
	}
	defer func() {
		for _, s := range series {
			s.Release()
		}
	}()
	return table.NewUpdatingTableFromSeries(name, series...)
}

// ImportTables copies a caller-owned array of tables, in order.
// Caller MUST call Release on each result.
func ImportTables(a Array, mem memory.Allocator) ([]*table.UpdatingTable, error) {
	view := View[Table](a)
	out := make([]*table.UpdatingTable, 0, len(view))
	for i := range view {
		t, err := ImportTable(&view[i], mem)
		if err != nil {
			for _, prev := range out {
				prev.Release()
			}
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
