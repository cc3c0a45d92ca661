// Package dynamic holds dynamic simulation model descriptors. Models are
// declared against static elements by id and bound to a concrete network only
// when the simulation asks for them.
package dynamic

import (
	"sync"

	"github.com/hugr-lab/gridframe/adder"
	"github.com/hugr-lab/gridframe/network"
)

// Model binds a dynamic model to a static network element.
type Model struct {
	// Category is the adder category the model was declared with.
	Category string
	// DynamicModelID identifies the model instance; defaults to StaticID.
	DynamicModelID string
	StaticID       string
	// Lib is the model variant selected by the model_name column.
	Lib            string
	ParameterSetID string
}

// Constructor builds a model against a network, returning false when the
// static element it references does not exist there.
type Constructor = adder.Deferred[*network.Network, Model]

// Supplier collects model constructors and evaluates them per network.
// It is safe for concurrent use.
type Supplier struct {
	mu           sync.Mutex
	constructors []Constructor
}

// NewSupplier creates an empty supplier.
func NewSupplier() *Supplier {
	return &Supplier{}
}

// Add appends constructors.
func (s *Supplier) Add(constructors ...Constructor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.constructors = append(s.constructors, constructors...)
}

// Len returns the number of declared models.
func (s *Supplier) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.constructors)
}

// Get returns the models that resolve against net, in declaration order.
// Models referencing elements absent from net are skipped.
func (s *Supplier) Get(net *network.Network) []Model {
	s.mu.Lock()
	constructors := append([]Constructor(nil), s.constructors...)
	s.mu.Unlock()
	return adder.Resolve(net, constructors)
}
