package mappers

import (
	"fmt"

	"github.com/hugr-lab/gridframe/mapper"
	"github.com/hugr-lab/gridframe/network"
)

var lines = must(mapper.NewBuilder[*network.Network, *network.Line]().
	StringIndex("id", func(l *network.Line) string { return l.ID }).
	Strings("name", func(l *network.Line) string { return l.Name }, nil).
	Strings("bus1_id", func(l *network.Line) string { return l.Bus1ID }, nil).
	Strings("bus2_id", func(l *network.Line) string { return l.Bus2ID }, nil).
	Doubles("r",
		func(l *network.Line) float64 { return l.R },
		set(func(l *network.Line, v float64) { l.R = v })).
	Doubles("x",
		func(l *network.Line) float64 { return l.X },
		set(func(l *network.Line, v float64) { l.X = v })).
	Doubles("g1",
		func(l *network.Line) float64 { return l.G1 },
		set(func(l *network.Line, v float64) { l.G1 = v })).
	Doubles("b1",
		func(l *network.Line) float64 { return l.B1 },
		set(func(l *network.Line, v float64) { l.B1 = v })).
	Doubles("g2",
		func(l *network.Line) float64 { return l.G2 },
		set(func(l *network.Line, v float64) { l.G2 = v })).
	Doubles("b2",
		func(l *network.Line) float64 { return l.B2 },
		set(func(l *network.Line, v float64) { l.B2 = v })).
	Bools("connected1",
		func(l *network.Line) bool { return l.Connected1 },
		set(func(l *network.Line, v bool) { l.Connected1 = v })).
	Bools("connected2",
		func(l *network.Line) bool { return l.Connected2 },
		set(func(l *network.Line, v bool) { l.Connected2 = v })).
	Build(
		(*network.Network).Lines,
		func(n *network.Network, k mapper.Key) (*network.Line, bool) { return n.Line(k.Str(0)) }))

var transformers = must(mapper.NewBuilder[*network.Network, *network.Transformer]().
	StringIndex("id", func(t *network.Transformer) string { return t.ID }).
	Strings("name", func(t *network.Transformer) string { return t.Name }, nil).
	Strings("bus1_id", func(t *network.Transformer) string { return t.Bus1ID }, nil).
	Strings("bus2_id", func(t *network.Transformer) string { return t.Bus2ID }, nil).
	Doubles("r",
		func(t *network.Transformer) float64 { return t.R },
		set(func(t *network.Transformer, v float64) { t.R = v })).
	Doubles("x",
		func(t *network.Transformer) float64 { return t.X },
		set(func(t *network.Transformer, v float64) { t.X = v })).
	Doubles("g",
		func(t *network.Transformer) float64 { return t.G },
		set(func(t *network.Transformer, v float64) { t.G = v })).
	Doubles("b",
		func(t *network.Transformer) float64 { return t.B },
		set(func(t *network.Transformer, v float64) { t.B = v })).
	Doubles("rated_u1",
		func(t *network.Transformer) float64 { return t.RatedU1 },
		set(func(t *network.Transformer, v float64) { t.RatedU1 = v })).
	Doubles("rated_u2",
		func(t *network.Transformer) float64 { return t.RatedU2 },
		set(func(t *network.Transformer, v float64) { t.RatedU2 = v })).
	Bools("connected1",
		func(t *network.Transformer) bool { return t.Connected1 },
		set(func(t *network.Transformer, v bool) { t.Connected1 = v })).
	Bools("connected2",
		func(t *network.Transformer) bool { return t.Connected2 },
		set(func(t *network.Transformer, v bool) { t.Connected2 = v })).
	Build(
		(*network.Network).Transformers,
		func(n *network.Network, k mapper.Key) (*network.Transformer, bool) { return n.Transformer(k.Str(0)) }))

// tapChangers exposes the ratio tap changer of every transformer that has one,
// indexed by transformer id.
var tapChangers = must(mapper.NewBuilder[*network.Network, *network.Transformer]().
	StringIndex("id", func(t *network.Transformer) string { return t.ID }).
	Ints("low_tap", func(t *network.Transformer) int { return t.TapChanger.LowTap }, nil).
	Ints("high_tap", func(t *network.Transformer) int { return t.TapChanger.HighTap() }, nil).
	Ints("step_count", func(t *network.Transformer) int { return len(t.TapChanger.Steps) }, nil,
		mapper.NotDefault()).
	Ints("tap",
		func(t *network.Transformer) int { return t.TapChanger.Tap },
		func(t *network.Transformer, v int) error {
			tc := t.TapChanger
			if v < tc.LowTap || v > tc.HighTap() {
				return fmt.Errorf("tap %d outside [%d, %d]", v, tc.LowTap, tc.HighTap())
			}
			tc.Tap = v
			return nil
		}).
	Bools("on_load",
		func(t *network.Transformer) bool { return t.TapChanger.LoadTapChanging },
		set(func(t *network.Transformer, v bool) { t.TapChanger.LoadTapChanging = v })).
	Bools("regulating",
		func(t *network.Transformer) bool { return t.TapChanger.Regulating },
		set(func(t *network.Transformer, v bool) { t.TapChanger.Regulating = v })).
	Doubles("target_v",
		func(t *network.Transformer) float64 { return t.TapChanger.TargetV },
		set(func(t *network.Transformer, v float64) { t.TapChanger.TargetV = v })).
	Doubles("target_deadband",
		func(t *network.Transformer) float64 { return t.TapChanger.TargetDeadband },
		set(func(t *network.Transformer, v float64) { t.TapChanger.TargetDeadband = v })).
	Build(
		func(n *network.Network) []*network.Transformer {
			var out []*network.Transformer
			for _, t := range n.Transformers() {
				if t.TapChanger != nil {
					out = append(out, t)
				}
			}
			return out
		},
		func(n *network.Network, k mapper.Key) (*network.Transformer, bool) {
			t, ok := n.Transformer(k.Str(0))
			if !ok || t.TapChanger == nil {
				return nil, false
			}
			return t, true
		}))

// currentLimits is indexed by (element_id, side, name).
var currentLimits = must(mapper.NewBuilder[*network.Network, network.LimitRef]().
	StringIndex("element_id", func(l network.LimitRef) string { return l.ElementID }).
	StringIndex("side", func(l network.LimitRef) string { return l.Side.String() }).
	StringIndex("name", func(l network.LimitRef) string { return l.Name }).
	Doubles("value",
		func(l network.LimitRef) float64 { return l.Value },
		func(l network.LimitRef, v float64) error {
			if v <= 0 {
				return fmt.Errorf("limit value must be positive, got %v", v)
			}
			l.Value = v
			return nil
		}).
	Ints("acceptable_duration", func(l network.LimitRef) int { return l.AcceptableDuration }, nil).
	Build(
		(*network.Network).CurrentLimits,
		func(n *network.Network, k mapper.Key) (network.LimitRef, bool) {
			side, ok := sideOf(k.Str(1))
			if !ok {
				return network.LimitRef{}, false
			}
			cl, ok := n.CurrentLimit(k.Str(0), side, k.Str(2))
			if !ok {
				return network.LimitRef{}, false
			}
			return network.LimitRef{ElementID: k.Str(0), CurrentLimit: cl}, true
		}))
