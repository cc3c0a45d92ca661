package gridframe

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/gridframe/adder"
	"github.com/hugr-lab/gridframe/adders"
	"github.com/hugr-lab/gridframe/dynamic"
	"github.com/hugr-lab/gridframe/geometry"
	"github.com/hugr-lab/gridframe/internal/msgpack"
	"github.com/hugr-lab/gridframe/internal/serialize"
	"github.com/hugr-lab/gridframe/mapper"
	"github.com/hugr-lab/gridframe/mappers"
	"github.com/hugr-lab/gridframe/network"
	"github.com/hugr-lab/gridframe/results"
	"github.com/hugr-lab/gridframe/table"
)

// Registry is the immutable set of adder categories and mapped element types
// available to callers. Safe for concurrent use.
type Registry struct {
	config   Config
	elements map[string]adders.ElementAdder
	models   map[string]adders.ModelAdder
	codec    *serialize.Codec
}

// Close releases compression resources.
func (r *Registry) Close() error {
	if r.codec != nil {
		return r.codec.Close()
	}
	return nil
}

// DefaultProvider returns the configured default engine provider name.
func (r *Registry) DefaultProvider() string { return r.config.DefaultProvider }

// Allocator returns the allocator used for produced series.
func (r *Registry) Allocator() memory.Allocator { return r.config.Allocator }

// Logger returns the registry logger.
func (r *Registry) Logger() *slog.Logger { return r.config.Logger }

// Categories returns every element and model category name, sorted.
func (r *Registry) Categories() []string {
	out := make([]string, 0, len(r.elements)+len(r.models))
	for name := range r.elements {
		out = append(out, name)
	}
	for name := range r.models {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// IsDynamicModel reports whether category declares dynamic models.
func (r *Registry) IsDynamicModel(category string) bool {
	_, ok := r.models[category]
	return ok
}

// ExpectedSchemas returns the table specs a category expects, primary first.
func (r *Registry) ExpectedSchemas(category string) ([]adder.TableSpec, error) {
	if a, ok := r.elements[category]; ok {
		return a.Schemas(), nil
	}
	if a, ok := r.models[category]; ok {
		return a.Schemas(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, category)
}

// EncodeSchemas returns the expected schemas of a category as MessagePack.
func (r *Registry) EncodeSchemas(category string) ([]byte, error) {
	specs, err := r.ExpectedSchemas(category)
	if err != nil {
		return nil, err
	}

	doc := msgpack.Category{Name: category, Tables: make([]msgpack.Table, len(specs))}
	for i, spec := range specs {
		t := msgpack.Table{
			Name:       spec.Name,
			JoinColumn: spec.JoinColumn,
			Optional:   spec.Optional,
			Columns:    make([]msgpack.Column, len(spec.Columns)),
		}
		for j, col := range spec.Columns {
			t.Columns[j] = msgpack.Column{
				Name:       col.Name,
				Kind:       col.Kind.String(),
				Required:   col.Required,
				Index:      col.Index,
				EnumValues: col.EnumValues,
			}
		}
		doc.Tables[i] = t
	}
	return msgpack.Encode(doc)
}

// AddElements creates the elements of category in net from tables.
// Returns the number of elements attached.
func (r *Registry) AddElements(net *network.Network, category string, tables []*table.UpdatingTable) (int, error) {
	a, ok := r.elements[category]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrCategoryNotFound, category)
	}
	n, err := a.Add(net, tables, r.config.Logger)
	if err != nil {
		return n, fmt.Errorf("add %s: %w", category, err)
	}
	r.config.Logger.Debug("Elements added", "category", category, "network", net.ID(), "count", n)
	return n, nil
}

// AddDynamicModels prepares the models of category and hands their deferred
// constructors to supplier. Returns the number of constructors added.
func (r *Registry) AddDynamicModels(supplier *dynamic.Supplier, category string, tables []*table.UpdatingTable) (int, error) {
	a, ok := r.models[category]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrCategoryNotFound, category)
	}
	batch, err := a.Prepare(tables, r.config.Logger)
	if err != nil {
		return 0, fmt.Errorf("add %s: %w", category, err)
	}
	supplier.Add(batch.Deferred()...)
	return batch.Len(), nil
}

// ElementTypes returns every mapped network and result element type.
func (r *Registry) ElementTypes() []mappers.ElementType {
	return append(mappers.NetworkTypes(), mappers.ResultTypes()...)
}

// Schema returns the column descriptors of an element type.
func (r *Registry) Schema(t mappers.ElementType) ([]table.ColumnDescriptor, error) {
	if m, ok := mappers.Network(t); ok {
		return m.Schema(), nil
	}
	if m, ok := mappers.Results(t); ok {
		return m.Schema(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownElementType, t)
}

func networkTable(t mappers.ElementType) (mappers.Table[*network.Network], error) {
	m, ok := mappers.Network(t)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownElementType, t)
	}
	return m, nil
}

// Produce streams the columns of element type t selected by filter.
func (r *Registry) Produce(net *network.Network, t mappers.ElementType, filter mapper.Filter, emit func(*table.Series) error) error {
	m, err := networkTable(t)
	if err != nil {
		return err
	}
	return m.Produce(net, filter, r.config.Allocator, emit)
}

// ProduceAll collects the columns of element type t. Caller MUST release each
// returned series.
func (r *Registry) ProduceAll(net *network.Network, t mappers.ElementType, filter mapper.Filter) ([]*table.Series, error) {
	m, err := networkTable(t)
	if err != nil {
		return nil, err
	}
	return m.ProduceAll(net, filter, r.config.Allocator)
}

// Update applies tbl to the elements of type t. Returns the matched row count.
func (r *Registry) Update(net *network.Network, t mappers.ElementType, tbl *table.UpdatingTable) (int, error) {
	m, err := networkTable(t)
	if err != nil {
		return 0, err
	}
	n, err := m.ApplyUpdates(net, tbl)
	if err != nil {
		return n, fmt.Errorf("update %s: %w", t, err)
	}
	r.config.Logger.Debug("Elements updated", "type", string(t), "network", net.ID(), "rows", n)
	return n, nil
}

// ProduceResults streams the columns of a result table.
func (r *Registry) ProduceResults(sa *results.SecurityAnalysis, t mappers.ElementType, filter mapper.Filter, emit func(*table.Series) error) error {
	m, ok := mappers.Results(t)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownElementType, t)
	}
	return m.Produce(sa, filter, r.config.Allocator, emit)
}

// ProduceIPC serializes the columns of element type t as an Arrow IPC stream,
// zstd compressed when the registry was built with Compression.
func (r *Registry) ProduceIPC(net *network.Network, t mappers.ElementType, filter mapper.Filter) ([]byte, error) {
	series, err := r.ProduceAll(net, t, filter)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, s := range series {
			s.Release()
		}
	}()

	if r.codec != nil {
		return r.codec.EncodeSeries(series, r.config.Allocator)
	}
	return serialize.SerializeSeries(series, r.config.Allocator)
}

// UpdateIPC applies every record of an IPC stream to the elements of type t,
// decompressing first when the registry was built with Compression.
// Returns the total matched row count.
func (r *Registry) UpdateIPC(net *network.Network, t mappers.ElementType, data []byte) (int, error) {
	var (
		tables []*table.UpdatingTable
		err    error
	)
	if r.codec != nil {
		tables, err = r.codec.DecodeTables(string(t), data, r.config.Allocator)
	} else {
		tables, err = serialize.ReadTables(string(t), data, r.config.Allocator)
	}
	if err != nil {
		return 0, err
	}
	defer func() {
		for _, tbl := range tables {
			tbl.Release()
		}
	}()

	total := 0
	for _, tbl := range tables {
		n, err := r.Update(net, t, tbl)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func checkLayer(layer geometry.Layer) error {
	if _, err := geometry.Schema(layer); err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownElementType, layer)
	}
	return nil
}

// ProduceGeometry serializes a geometry layer as an Arrow IPC stream,
// compressed like ProduceIPC.
func (r *Registry) ProduceGeometry(net *network.Network, layer geometry.Layer) ([]byte, error) {
	if err := checkLayer(layer); err != nil {
		return nil, err
	}
	rec, err := geometry.NewRecord(net, layer, r.config.Allocator)
	if err != nil {
		return nil, err
	}
	defer rec.Release()

	if r.codec != nil {
		return r.codec.EncodeRecord(rec, r.config.Allocator)
	}
	return serialize.WriteRecord(rec, r.config.Allocator)
}

// UpdateGeometry applies a geometry layer IPC stream to net.
// Returns the number of elements updated.
func (r *Registry) UpdateGeometry(net *network.Network, layer geometry.Layer, data []byte) (int, error) {
	if err := checkLayer(layer); err != nil {
		return 0, err
	}
	var (
		records []arrow.Record
		err     error
	)
	if r.codec != nil {
		records, err = r.codec.DecodeRecords(data, r.config.Allocator)
	} else {
		records, err = serialize.ReadRecords(data, r.config.Allocator)
	}
	if err != nil {
		return 0, err
	}
	defer func() {
		for _, rec := range records {
			rec.Release()
		}
	}()

	total := 0
	for _, rec := range records {
		n, err := geometry.Apply(net, layer, rec)
		total += n
		if err != nil {
			return total, err
		}
	}
	r.config.Logger.Debug("Geometry updated", "layer", string(layer), "network", net.ID(), "elements", total)
	return total, nil
}
