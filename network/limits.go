package network

import "fmt"

// PermanentLimit is the name of the permanent current limit.
const PermanentLimit = "permanent"

// CurrentLimit is a current limit on one side of a branch. A permanent limit
// has no acceptable duration; temporary limits carry one in seconds.
type CurrentLimit struct {
	Side               Side
	Name               string
	Value              float64
	AcceptableDuration int
}

// LimitRef is a current limit together with the branch it belongs to.
type LimitRef struct {
	ElementID string
	*CurrentLimit
}

// CurrentLimits returns the current limits of every line and transformer,
// lines first, each in insertion order.
func (n *Network) CurrentLimits() []LimitRef {
	var out []LimitRef
	for _, l := range n.lines.items {
		for _, cl := range l.Limits {
			out = append(out, LimitRef{ElementID: l.ID, CurrentLimit: cl})
		}
	}
	for _, t := range n.transformers.items {
		for _, cl := range t.Limits {
			out = append(out, LimitRef{ElementID: t.ID, CurrentLimit: cl})
		}
	}
	return out
}

// CurrentLimit returns the limit identified by branch, side and name.
func (n *Network) CurrentLimit(elementID string, side Side, name string) (*CurrentLimit, bool) {
	limits, ok := n.branchLimits(elementID)
	if !ok {
		return nil, false
	}
	for _, cl := range *limits {
		if cl.Side == side && cl.Name == name {
			return cl, true
		}
	}
	return nil, false
}

// AddCurrentLimit attaches a limit to a line or transformer. A limit with the
// same side and name is replaced.
func (n *Network) AddCurrentLimit(elementID string, cl *CurrentLimit) error {
	limits, ok := n.branchLimits(elementID)
	if !ok {
		return fmt.Errorf("%w: no branch %q", ErrUnknownReference, elementID)
	}
	for i, existing := range *limits {
		if existing.Side == cl.Side && existing.Name == cl.Name {
			(*limits)[i] = cl
			return nil
		}
	}
	*limits = append(*limits, cl)
	return nil
}

func (n *Network) branchLimits(elementID string) (*[]*CurrentLimit, bool) {
	if l, ok := n.lines.get(elementID); ok {
		return &l.Limits, true
	}
	if t, ok := n.transformers.get(elementID); ok {
		return &t.Limits, true
	}
	return nil, false
}
