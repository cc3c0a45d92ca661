// Package mappers binds the network model and security analysis results to
// tables. Every mapper is built once at package initialization and shared.
package mappers

import (
	"fmt"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/gridframe/mapper"
	"github.com/hugr-lab/gridframe/network"
	"github.com/hugr-lab/gridframe/results"
	"github.com/hugr-lab/gridframe/table"
)

// ElementType names a table exposed by a mapper.
type ElementType string

const (
	Substations        ElementType = "SUBSTATION"
	SubstationPosition ElementType = "SUBSTATION_POSITION"
	Buses              ElementType = "BUS"
	Generators         ElementType = "GENERATOR"
	Loads              ElementType = "LOAD"
	Lines              ElementType = "LINE"
	LinePosition       ElementType = "LINE_POSITION"
	Transformers       ElementType = "TWO_WINDINGS_TRANSFORMER"
	TapChangers        ElementType = "RATIO_TAP_CHANGER"
	CurrentLimits      ElementType = "CURRENT_LIMITS"
	LimitViolations    ElementType = "LIMIT_VIOLATION"
)

// Table is the container-typed view of a mapper.
type Table[C any] interface {
	Schema() []table.ColumnDescriptor
	ArrowSchema(filter mapper.Filter) (*arrow.Schema, error)
	Produce(container C, filter mapper.Filter, mem memory.Allocator, emit func(*table.Series) error) error
	ProduceAll(container C, filter mapper.Filter, mem memory.Allocator) ([]*table.Series, error)
	NewRecord(container C, filter mapper.Filter, mem memory.Allocator) (arrow.Record, error)
	ApplyUpdates(container C, tbl *table.UpdatingTable) (int, error)
}

var networkTables = map[ElementType]Table[*network.Network]{
	Substations:        substations,
	SubstationPosition: substationPositions,
	Buses:              buses,
	Generators:         generators,
	Loads:              loads,
	Lines:              lines,
	LinePosition:       linePositions,
	Transformers:       transformers,
	TapChangers:        tapChangers,
	CurrentLimits:      currentLimits,
}

var resultTables = map[ElementType]Table[*results.SecurityAnalysis]{
	LimitViolations: violations,
}

// Network returns the mapper for a network element type.
func Network(t ElementType) (Table[*network.Network], bool) {
	m, ok := networkTables[t]
	return m, ok
}

// Results returns the mapper for a result table.
func Results(t ElementType) (Table[*results.SecurityAnalysis], bool) {
	m, ok := resultTables[t]
	return m, ok
}

// NetworkTypes returns the network element types, sorted.
func NetworkTypes() []ElementType {
	return sortedKeys(networkTables)
}

// ResultTypes returns the result table types, sorted.
func ResultTypes() []ElementType {
	return sortedKeys(resultTables)
}

func sortedKeys[V any](m map[ElementType]V) []ElementType {
	out := make([]ElementType, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func must[C, I any](m *mapper.Mapper[C, I], err error) *mapper.Mapper[C, I] {
	if err != nil {
		panic(fmt.Sprintf("mappers: %v", err))
	}
	return m
}

func set[I, V any](f func(I, V)) func(I, V) error {
	return func(it I, v V) error {
		f(it, v)
		return nil
	}
}

func enumOrdinal(names []string, v int) error {
	if v < 0 || v >= len(names) {
		return fmt.Errorf("ordinal %d out of range", v)
	}
	return nil
}

func sideOf(name string) (network.Side, bool) {
	for i, s := range network.Sides {
		if s == name {
			return network.Side(i), true
		}
	}
	return 0, false
}
