// Package adders declares how network elements, network extensions and
// dynamic models are created from tables. Elements and DynamicModels return
// the fixed set of categories a registry is populated with.
package adders

import (
	"log/slog"

	"github.com/hugr-lab/gridframe/adder"
	"github.com/hugr-lab/gridframe/dynamic"
	"github.com/hugr-lab/gridframe/network"
	"github.com/hugr-lab/gridframe/table"
)

// ElementAdder adds objects of one category to a network.
type ElementAdder interface {
	Name() string
	Schemas() []adder.TableSpec
	Validate() error
	Add(net *network.Network, tables []*table.UpdatingTable, logger *slog.Logger) (int, error)
}

// ModelAdder declares dynamic models of one category.
type ModelAdder interface {
	Name() string
	Schemas() []adder.TableSpec
	Validate() error
	Prepare(tables []*table.UpdatingTable, logger *slog.Logger) (*adder.Batch[*network.Network, dynamic.Model], error)
}

// Elements returns the element and extension categories.
func Elements() []ElementAdder {
	return []ElementAdder{
		Substations,
		Buses,
		Generators,
		Loads,
		Lines,
		Transformers,
		SubstationPositions,
		LinePositions,
		RatioTapChangers,
		SecondaryVoltageControl,
	}
}

// DynamicModels returns the dynamic model categories.
func DynamicModels() []ModelAdder {
	return []ModelAdder{
		GeneratorModels,
		LoadModels,
	}
}

func id(name string) adder.ColumnSpec {
	return adder.ColumnSpec{Name: name, Kind: table.String, Required: true, Index: true}
}

func required(name string, kind table.Kind) adder.ColumnSpec {
	return adder.ColumnSpec{Name: name, Kind: kind, Required: true}
}

func optional(name string, kind table.Kind) adder.ColumnSpec {
	return adder.ColumnSpec{Name: name, Kind: kind}
}

func enum(name string, values []string) adder.ColumnSpec {
	return adder.ColumnSpec{Name: name, Kind: table.Enum, EnumValues: values}
}

// unclaimed checks that the ids of a batch of elements are free in the
// network and distinct.
func unclaimed[E any](typ string, idOf func(E) string) func(*network.Network, []E) error {
	return func(n *network.Network, elems []E) error {
		ids := make([]string, len(elems))
		for i, e := range elems {
			ids[i] = idOf(e)
		}
		return n.CheckIDs(typ, ids)
	}
}

// clone returns a deferred constructor handing out a copy of proto whenever
// ready reports that its references exist in the network. Copies keep one
// prepared batch usable against several networks.
func clone[E any](proto *E, ready func(n *network.Network) bool) adder.Deferred[*network.Network, *E] {
	return func(n *network.Network) (*E, bool) {
		if !ready(n) {
			return nil, false
		}
		e := *proto
		return &e, true
	}
}

func hasBus(busIDs ...string) func(*network.Network) bool {
	return func(n *network.Network) bool {
		for _, b := range busIDs {
			if _, ok := n.Bus(b); !ok {
				return false
			}
		}
		return true
	}
}
