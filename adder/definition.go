package adder

import (
	"fmt"
	"log/slog"

	"github.com/hugr-lab/gridframe/table"
)

// Deferred constructs a domain object against a concrete target.
// It returns false when an element the row references is missing from the
// target; the row is then dropped and the batch continues.
type Deferred[T, O any] func(target T) (O, bool)

// BuildFunc turns one primary row into a deferred constructor.
// An error aborts the whole invocation.
type BuildFunc[T, O any] func(row *Row) (Deferred[T, O], error)

// Definition declares how one category of domain object is built.
type Definition[T, O any] struct {
	// Category is the registry key of the definition.
	Category string
	// Tables lists the primary table followed by its secondary tables.
	Tables []TableSpec
	// Build constructs one deferred per primary row.
	Build BuildFunc[T, O]
	// Check validates every resolved object against the target before any
	// of them is attached. Conflicts it can see, such as ids already used in
	// the target or repeated within the batch, belong here.
	Check func(target T, objs []O) error
	// Attach stores a resolved object in the target. Definitions used only
	// through Prepare may leave it nil.
	Attach func(target T, obj O) error
}

// Name returns the category.
func (d *Definition[T, O]) Name() string { return d.Category }

// Schemas returns the declared tables.
func (d *Definition[T, O]) Schemas() []TableSpec { return d.Tables }

// Validate checks the table declarations.
func (d *Definition[T, O]) Validate() error {
	if d.Category == "" {
		return fmt.Errorf("adder: category cannot be empty")
	}
	if d.Build == nil {
		return fmt.Errorf("adder %s: build function is required", d.Category)
	}
	return validateSpecs(d.Category, d.Tables)
}

// Prepare checks the supplied tables and builds one deferred constructor per
// primary row. Nothing is read from the tables until the shape and columns
// have been checked, and the target is never touched.
func (d *Definition[T, O]) Prepare(tables []*table.UpdatingTable, logger *slog.Logger) (*Batch[T, O], error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := d.checkShape(tables); err != nil {
		return nil, err
	}
	for i, tbl := range tables {
		if err := checkColumns(d.Tables[i], tbl); err != nil {
			return nil, err
		}
	}

	primary := tables[0]
	ids, err := primaryIDs(d.Tables[0], primary)
	if err != nil {
		return nil, err
	}

	indexes := make([]map[string][]int, len(d.Tables)-1)
	for i := 1; i < len(tables); i++ {
		indexes[i-1] = correlate(d.Category, d.Tables[i], tables[i], ids, logger)
	}

	batch := &Batch[T, O]{category: d.Category}
	for row, id := range ids.order {
		r := &Row{
			ID:      id,
			Index:   row,
			primary: NewRowView(primary, row),
			related: make([][]RowView, len(d.Tables)-1),
		}
		for i, idx := range indexes {
			if idx == nil {
				continue
			}
			rows := idx[id]
			views := make([]RowView, len(rows))
			for j, sr := range rows {
				views[j] = NewRowView(tables[i+1], sr)
			}
			r.related[i] = views
		}

		deferred, err := d.Build(r)
		if err != nil {
			return nil, &RowError{Category: d.Category, Row: row, ID: id, Err: err}
		}
		if deferred == nil {
			continue
		}
		batch.ids = append(batch.ids, id)
		batch.deferred = append(batch.deferred, deferred)
	}
	return batch, nil
}

// Add prepares the batch, resolves it against target, runs Check over the
// resolved objects and then attaches them. A preparation or Check failure
// leaves the target untouched. An Attach failure stops the call and the
// objects attached so far stay in the target; the count reports them.
// It returns the number of attached objects.
func (d *Definition[T, O]) Add(target T, tables []*table.UpdatingTable, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if d.Attach == nil {
		return 0, fmt.Errorf("adder %s: attach function is required", d.Category)
	}
	batch, err := d.Prepare(tables, logger)
	if err != nil {
		return 0, err
	}
	objs := batch.Resolve(target, logger)
	if d.Check != nil {
		if err := d.Check(target, objs); err != nil {
			return 0, fmt.Errorf("adder %s: %w", d.Category, err)
		}
	}
	added := 0
	for _, obj := range objs {
		if err := d.Attach(target, obj); err != nil {
			return added, fmt.Errorf("adder %s: %w", d.Category, err)
		}
		added++
	}
	return added, nil
}

func (d *Definition[T, O]) checkShape(tables []*table.UpdatingTable) error {
	lo, hi := requiredTables(d.Tables), len(d.Tables)
	if len(tables) < lo || len(tables) > hi {
		return &ShapeError{Category: d.Category, Got: len(tables), Min: lo, Max: hi}
	}
	for i, tbl := range tables {
		if tbl == nil {
			return &ShapeError{Category: d.Category, Got: len(tables), Min: lo, Max: hi,
				Msg: fmt.Sprintf("table %d (%s) is nil", i, d.Tables[i].Name)}
		}
	}
	return nil
}

type idSet struct {
	order []string
	known map[string]bool
}

// primaryIDs reads the identifier column. Absent or repeated ids are schema
// errors.
func primaryIDs(spec TableSpec, tbl *table.UpdatingTable) (*idSet, error) {
	col, _ := tbl.Column(spec.IDColumn())
	set := &idSet{
		order: make([]string, tbl.NumRows()),
		known: make(map[string]bool, tbl.NumRows()),
	}
	for row := 0; row < tbl.NumRows(); row++ {
		id, ok, err := col.StringAt(row)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &table.SchemaError{Table: spec.Name, Column: col.Name(),
				Msg: fmt.Sprintf("missing id at row %d", row)}
		}
		if set.known[id] {
			return nil, &table.SchemaError{Table: spec.Name, Column: col.Name(),
				Msg: fmt.Sprintf("duplicate id %q at row %d", id, row)}
		}
		set.known[id] = true
		set.order[row] = id
	}
	return set, nil
}

// correlate indexes the rows of a secondary table by the primary id they
// reference. Rows referencing no known primary id are skipped.
func correlate(category string, spec TableSpec, tbl *table.UpdatingTable, ids *idSet, logger *slog.Logger) map[string][]int {
	col, _ := tbl.Column(spec.JoinColumn)
	idx := make(map[string][]int, len(ids.order))
	for row := 0; row < tbl.NumRows(); row++ {
		id, ok, err := col.StringAt(row)
		if err != nil || !ok || !ids.known[id] {
			logger.Debug("Secondary row references no primary row",
				"category", category,
				"table", spec.Name,
				"row", row,
				"ref", id,
			)
			continue
		}
		idx[id] = append(idx[id], row)
	}
	return idx
}

// Batch holds the deferred constructors of one prepared invocation.
type Batch[T, O any] struct {
	category string
	ids      []string
	deferred []Deferred[T, O]
}

// Len returns the number of deferred constructors.
func (b *Batch[T, O]) Len() int { return len(b.deferred) }

// IDs returns the primary ids in construction order.
func (b *Batch[T, O]) IDs() []string { return b.ids }

// Deferred returns the deferred constructors in construction order.
func (b *Batch[T, O]) Deferred() []Deferred[T, O] { return b.deferred }

// Resolve evaluates every constructor against target and returns the objects
// that could be built, in order. Rows whose references are missing are dropped.
func (b *Batch[T, O]) Resolve(target T, logger *slog.Logger) []O {
	if logger == nil {
		logger = slog.Default()
	}
	out := make([]O, 0, len(b.deferred))
	for i, fn := range b.deferred {
		obj, ok := fn(target)
		if !ok {
			logger.Debug("Dropped row with unresolved reference",
				"category", b.category,
				"id", b.ids[i],
			)
			continue
		}
		out = append(out, obj)
	}
	return out
}

// Resolve evaluates deferred constructors against target, dropping the ones
// that report a missing reference.
func Resolve[T, O any](target T, deferred []Deferred[T, O]) []O {
	out := make([]O, 0, len(deferred))
	for _, fn := range deferred {
		if obj, ok := fn(target); ok {
			out = append(out, obj)
		}
	}
	return out
}
