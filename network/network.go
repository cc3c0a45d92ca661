// Package network is the in-memory grid model that mappers read and adders
// extend. Elements are kept in insertion order and indexed by id.
package network

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateID is returned when an element id is already used.
	ErrDuplicateID = errors.New("duplicate element id")

	// ErrUnknownReference is returned when an element references a missing one.
	ErrUnknownReference = errors.New("unknown element reference")
)

// store keeps elements in insertion order with an id index.
type store[E any] struct {
	items []E
	pos   map[string]int
}

func (s *store[E]) add(id string, e E) error {
	if id == "" {
		return fmt.Errorf("element id cannot be empty")
	}
	if s.pos == nil {
		s.pos = make(map[string]int)
	}
	if _, ok := s.pos[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	s.pos[id] = len(s.items)
	s.items = append(s.items, e)
	return nil
}

func (s *store[E]) get(id string) (E, bool) {
	i, ok := s.pos[id]
	if !ok {
		var zero E
		return zero, false
	}
	return s.items[i], true
}

// Network is a grid model. It is not safe for concurrent mutation.
type Network struct {
	id string

	ids          map[string]string
	substations  store[*Substation]
	buses        store[*Bus]
	generators   store[*Generator]
	loads        store[*Load]
	lines        store[*Line]
	transformers store[*Transformer]
	svc          *SecondaryVoltageControl
}

// New creates an empty network.
func New(id string) *Network {
	return &Network{id: id, ids: make(map[string]string)}
}

// ID returns the network id.
func (n *Network) ID() string { return n.id }

// ElementType returns the type name of the element with the given id.
func (n *Network) ElementType(id string) (string, bool) {
	t, ok := n.ids[id]
	return t, ok
}

func (n *Network) claim(id, typ string) error {
	if id == "" {
		return fmt.Errorf("%s id cannot be empty", typ)
	}
	if other, ok := n.ids[id]; ok {
		return fmt.Errorf("%w: %s already used by a %s", ErrDuplicateID, id, other)
	}
	n.ids[id] = typ
	return nil
}

// CheckIDs reports the first of ids that is empty, already used by an
// element of the network, or repeated in ids. typ names the element type in
// errors. The network is not modified.
func (n *Network) CheckIDs(typ string, ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("%s id cannot be empty", typ)
		}
		if other, ok := n.ids[id]; ok {
			return fmt.Errorf("%w: %s already used by a %s", ErrDuplicateID, id, other)
		}
		if seen[id] {
			return fmt.Errorf("%w: %s given twice", ErrDuplicateID, id)
		}
		seen[id] = true
	}
	return nil
}

func (n *Network) requireBus(owner, busID string) error {
	if _, ok := n.buses.get(busID); !ok {
		return fmt.Errorf("%w: %s references bus %q", ErrUnknownReference, owner, busID)
	}
	return nil
}

// Substations returns all substations in insertion order.
func (n *Network) Substations() []*Substation { return n.substations.items }

// Substation returns the substation with the given id.
func (n *Network) Substation(id string) (*Substation, bool) { return n.substations.get(id) }

// AddSubstation adds a substation.
func (n *Network) AddSubstation(s *Substation) error {
	if err := n.claim(s.ID, "substation"); err != nil {
		return err
	}
	return n.substations.add(s.ID, s)
}

// Buses returns all buses in insertion order.
func (n *Network) Buses() []*Bus { return n.buses.items }

// Bus returns the bus with the given id.
func (n *Network) Bus(id string) (*Bus, bool) { return n.buses.get(id) }

// AddBus adds a bus. Its substation, when set, must exist.
func (n *Network) AddBus(b *Bus) error {
	if b.SubstationID != "" {
		if _, ok := n.substations.get(b.SubstationID); !ok {
			return fmt.Errorf("%w: bus %s references substation %q", ErrUnknownReference, b.ID, b.SubstationID)
		}
	}
	if err := n.claim(b.ID, "bus"); err != nil {
		return err
	}
	return n.buses.add(b.ID, b)
}

// Generators returns all generators in insertion order.
func (n *Network) Generators() []*Generator { return n.generators.items }

// Generator returns the generator with the given id.
func (n *Network) Generator(id string) (*Generator, bool) { return n.generators.get(id) }

// AddGenerator adds a generator connected to an existing bus.
func (n *Network) AddGenerator(g *Generator) error {
	if err := n.requireBus(g.ID, g.BusID); err != nil {
		return err
	}
	if err := n.claim(g.ID, "generator"); err != nil {
		return err
	}
	return n.generators.add(g.ID, g)
}

// Loads returns all loads in insertion order.
func (n *Network) Loads() []*Load { return n.loads.items }

// Load returns the load with the given id.
func (n *Network) Load(id string) (*Load, bool) { return n.loads.get(id) }

// AddLoad adds a load connected to an existing bus.
func (n *Network) AddLoad(l *Load) error {
	if err := n.requireBus(l.ID, l.BusID); err != nil {
		return err
	}
	if err := n.claim(l.ID, "load"); err != nil {
		return err
	}
	return n.loads.add(l.ID, l)
}

// Lines returns all lines in insertion order.
func (n *Network) Lines() []*Line { return n.lines.items }

// Line returns the line with the given id.
func (n *Network) Line(id string) (*Line, bool) { return n.lines.get(id) }

// AddLine adds a line between two existing buses.
func (n *Network) AddLine(l *Line) error {
	if err := n.requireBus(l.ID, l.Bus1ID); err != nil {
		return err
	}
	if err := n.requireBus(l.ID, l.Bus2ID); err != nil {
		return err
	}
	if err := n.claim(l.ID, "line"); err != nil {
		return err
	}
	return n.lines.add(l.ID, l)
}

// Transformers returns all two-winding transformers in insertion order.
func (n *Network) Transformers() []*Transformer { return n.transformers.items }

// Transformer returns the transformer with the given id.
func (n *Network) Transformer(id string) (*Transformer, bool) { return n.transformers.get(id) }

// AddTransformer adds a two-winding transformer between two existing buses.
func (n *Network) AddTransformer(t *Transformer) error {
	if err := n.requireBus(t.ID, t.Bus1ID); err != nil {
		return err
	}
	if err := n.requireBus(t.ID, t.Bus2ID); err != nil {
		return err
	}
	if err := n.claim(t.ID, "transformer"); err != nil {
		return err
	}
	return n.transformers.add(t.ID, t)
}

// SecondaryVoltageControl returns the secondary voltage control extension,
// or nil when the network has none.
func (n *Network) SecondaryVoltageControl() *SecondaryVoltageControl { return n.svc }

// CheckControlZones reports the first of names that is empty, already a zone
// of the network, or repeated in names. The network is not modified.
func (n *Network) CheckControlZones(names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" {
			return fmt.Errorf("control zone name cannot be empty")
		}
		if n.svc != nil {
			if _, ok := n.svc.Zone(name); ok {
				return fmt.Errorf("%w: control zone %s", ErrDuplicateID, name)
			}
		}
		if seen[name] {
			return fmt.Errorf("%w: control zone %s given twice", ErrDuplicateID, name)
		}
		seen[name] = true
	}
	return nil
}

// AddControlZone adds a zone to the secondary voltage control extension,
// creating the extension on first use. Zone names are unique.
func (n *Network) AddControlZone(z *ControlZone) error {
	if n.svc == nil {
		n.svc = &SecondaryVoltageControl{}
	}
	return n.svc.addZone(z)
}
