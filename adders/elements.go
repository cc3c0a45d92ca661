package adders

import (
	"github.com/hugr-lab/gridframe/adder"
	"github.com/hugr-lab/gridframe/network"
	"github.com/hugr-lab/gridframe/table"
)

// Substations creates substations.
var Substations = &adder.Definition[*network.Network, *network.Substation]{
	Category: "substations",
	Tables: []adder.TableSpec{{Name: "substations", Columns: []adder.ColumnSpec{
		id("id"),
		optional("name", table.String),
		optional("country", table.String),
		optional("tso", table.String),
	}}},
	Build: func(r *adder.Row) (adder.Deferred[*network.Network, *network.Substation], error) {
		s := &network.Substation{ID: r.ID}
		err := adder.Apply(r.Primary(), s,
			adder.String("name", func(s *network.Substation, v string) { s.Name = v }),
			adder.String("country", func(s *network.Substation, v string) { s.Country = v }),
			adder.String("tso", func(s *network.Substation, v string) { s.TSO = v }),
		)
		if err != nil {
			return nil, err
		}
		return clone(s, func(*network.Network) bool { return true }), nil
	},
	Check:  unclaimed("substation", func(e *network.Substation) string { return e.ID }),
	Attach: (*network.Network).AddSubstation,
}

// Buses creates buses, optionally inside an existing substation.
var Buses = &adder.Definition[*network.Network, *network.Bus]{
	Category: "buses",
	Tables: []adder.TableSpec{{Name: "buses", Columns: []adder.ColumnSpec{
		id("id"),
		optional("name", table.String),
		optional("substation_id", table.String),
		required("nominal_v", table.Double),
	}}},
	Build: func(r *adder.Row) (adder.Deferred[*network.Network, *network.Bus], error) {
		b := &network.Bus{ID: r.ID}
		err := adder.Apply(r.Primary(), b,
			adder.String("name", func(b *network.Bus, v string) { b.Name = v }),
			adder.String("substation_id", func(b *network.Bus, v string) { b.SubstationID = v }),
			adder.Double("nominal_v", func(b *network.Bus, v float64) { b.NominalV = v }),
		)
		if err != nil {
			return nil, err
		}
		return clone(b, func(n *network.Network) bool {
			if b.SubstationID == "" {
				return true
			}
			_, ok := n.Substation(b.SubstationID)
			return ok
		}), nil
	},
	Check:  unclaimed("bus", func(e *network.Bus) string { return e.ID }),
	Attach: (*network.Network).AddBus,
}

var generatorSteps = []adder.Step[*network.Generator]{
	adder.String("name", func(g *network.Generator, v string) { g.Name = v }),
	adder.String("bus_id", func(g *network.Generator, v string) { g.BusID = v }),
	adder.Enum("energy_source", network.EnergySources, func(g *network.Generator, v int) { g.EnergySource = network.EnergySource(v) }),
	adder.Double("min_p", func(g *network.Generator, v float64) { g.MinP = v }),
	adder.Double("max_p", func(g *network.Generator, v float64) { g.MaxP = v }),
	adder.Double("target_p", func(g *network.Generator, v float64) { g.TargetP = v }),
	adder.Double("target_q", func(g *network.Generator, v float64) { g.TargetQ = v }),
	adder.Double("target_v", func(g *network.Generator, v float64) { g.TargetV = v }),
	adder.Bool("voltage_regulator_on", func(g *network.Generator, v bool) { g.VoltageRegulatorOn = v }),
	adder.Double("rated_s", func(g *network.Generator, v float64) { g.RatedS = v }),
}

// Generators creates generators on existing buses.
var Generators = &adder.Definition[*network.Network, *network.Generator]{
	Category: "generators",
	Tables: []adder.TableSpec{{Name: "generators", Columns: []adder.ColumnSpec{
		id("id"),
		required("bus_id", table.String),
		optional("name", table.String),
		enum("energy_source", network.EnergySources),
		optional("min_p", table.Double),
		optional("max_p", table.Double),
		required("target_p", table.Double),
		optional("target_q", table.Double),
		optional("target_v", table.Double),
		optional("voltage_regulator_on", table.Bool),
		optional("rated_s", table.Double),
	}}},
	Build: func(r *adder.Row) (adder.Deferred[*network.Network, *network.Generator], error) {
		g := &network.Generator{ID: r.ID, EnergySource: network.OtherSource, Connected: true}
		if err := adder.Apply(r.Primary(), g, generatorSteps...); err != nil {
			return nil, err
		}
		return clone(g, hasBus(g.BusID)), nil
	},
	Check:  unclaimed("generator", func(e *network.Generator) string { return e.ID }),
	Attach: (*network.Network).AddGenerator,
}

// Loads creates loads on existing buses.
var Loads = &adder.Definition[*network.Network, *network.Load]{
	Category: "loads",
	Tables: []adder.TableSpec{{Name: "loads", Columns: []adder.ColumnSpec{
		id("id"),
		required("bus_id", table.String),
		optional("name", table.String),
		enum("type", network.LoadTypes),
		required("p0", table.Double),
		optional("q0", table.Double),
	}}},
	Build: func(r *adder.Row) (adder.Deferred[*network.Network, *network.Load], error) {
		l := &network.Load{ID: r.ID, Connected: true}
		err := adder.Apply(r.Primary(), l,
			adder.String("name", func(l *network.Load, v string) { l.Name = v }),
			adder.String("bus_id", func(l *network.Load, v string) { l.BusID = v }),
			adder.Enum("type", network.LoadTypes, func(l *network.Load, v int) { l.Type = network.LoadType(v) }),
			adder.Double("p0", func(l *network.Load, v float64) { l.P0 = v }),
			adder.Double("q0", func(l *network.Load, v float64) { l.Q0 = v }),
		)
		if err != nil {
			return nil, err
		}
		return clone(l, hasBus(l.BusID)), nil
	},
	Check:  unclaimed("load", func(e *network.Load) string { return e.ID }),
	Attach: (*network.Network).AddLoad,
}

var limitTable = adder.TableSpec{
	Name:       "current_limits",
	JoinColumn: "id",
	Optional:   true,
	Columns: []adder.ColumnSpec{
		required("id", table.String),
		{Name: "side", Kind: table.Enum, Required: true, EnumValues: network.Sides},
		required("name", table.String),
		required("value", table.Double),
		optional("acceptable_duration", table.Int),
	},
}

// limits reads the current limits correlated with a branch row.
func limits(rows []adder.RowView) ([]*network.CurrentLimit, error) {
	var out []*network.CurrentLimit
	for _, v := range rows {
		cl := &network.CurrentLimit{}
		err := adder.Apply(v, cl,
			adder.Enum("side", network.Sides, func(cl *network.CurrentLimit, s int) { cl.Side = network.Side(s) }),
			adder.String("name", func(cl *network.CurrentLimit, s string) { cl.Name = s }),
			adder.Double("value", func(cl *network.CurrentLimit, f float64) { cl.Value = f }),
			adder.Int("acceptable_duration", func(cl *network.CurrentLimit, d int) { cl.AcceptableDuration = d }),
		)
		if err != nil {
			return nil, err
		}
		out = append(out, cl)
	}
	return out, nil
}

func copyLimits(in []*network.CurrentLimit) []*network.CurrentLimit {
	if in == nil {
		return nil
	}
	out := make([]*network.CurrentLimit, len(in))
	for i, cl := range in {
		c := *cl
		out[i] = &c
	}
	return out
}

// Lines creates lines between existing buses, with optional current limits.
var Lines = &adder.Definition[*network.Network, *network.Line]{
	Category: "lines",
	Tables: []adder.TableSpec{
		{Name: "lines", Columns: []adder.ColumnSpec{
			id("id"),
			required("bus1_id", table.String),
			required("bus2_id", table.String),
			optional("name", table.String),
			required("r", table.Double),
			required("x", table.Double),
			optional("g1", table.Double),
			optional("b1", table.Double),
			optional("g2", table.Double),
			optional("b2", table.Double),
		}},
		limitTable,
	},
	Build: func(r *adder.Row) (adder.Deferred[*network.Network, *network.Line], error) {
		l := &network.Line{ID: r.ID, Connected1: true, Connected2: true}
		err := adder.Apply(r.Primary(), l,
			adder.String("name", func(l *network.Line, v string) { l.Name = v }),
			adder.String("bus1_id", func(l *network.Line, v string) { l.Bus1ID = v }),
			adder.String("bus2_id", func(l *network.Line, v string) { l.Bus2ID = v }),
			adder.Double("r", func(l *network.Line, v float64) { l.R = v }),
			adder.Double("x", func(l *network.Line, v float64) { l.X = v }),
			adder.Double("g1", func(l *network.Line, v float64) { l.G1 = v }),
			adder.Double("b1", func(l *network.Line, v float64) { l.B1 = v }),
			adder.Double("g2", func(l *network.Line, v float64) { l.G2 = v }),
			adder.Double("b2", func(l *network.Line, v float64) { l.B2 = v }),
		)
		if err != nil {
			return nil, err
		}
		cls, err := limits(r.Related(1))
		if err != nil {
			return nil, err
		}
		ready := hasBus(l.Bus1ID, l.Bus2ID)
		return func(n *network.Network) (*network.Line, bool) {
			if !ready(n) {
				return nil, false
			}
			line := *l
			line.Limits = copyLimits(cls)
			return &line, true
		}, nil
	},
	Check:  unclaimed("line", func(e *network.Line) string { return e.ID }),
	Attach: (*network.Network).AddLine,
}

// Transformers creates two-winding transformers, with optional current limits.
var Transformers = &adder.Definition[*network.Network, *network.Transformer]{
	Category: "two_windings_transformers",
	Tables: []adder.TableSpec{
		{Name: "two_windings_transformers", Columns: []adder.ColumnSpec{
			id("id"),
			required("bus1_id", table.String),
			required("bus2_id", table.String),
			optional("name", table.String),
			required("r", table.Double),
			required("x", table.Double),
			optional("g", table.Double),
			optional("b", table.Double),
			required("rated_u1", table.Double),
			required("rated_u2", table.Double),
		}},
		limitTable,
	},
	Build: func(r *adder.Row) (adder.Deferred[*network.Network, *network.Transformer], error) {
		t := &network.Transformer{ID: r.ID, Connected1: true, Connected2: true}
		err := adder.Apply(r.Primary(), t,
			adder.String("name", func(t *network.Transformer, v string) { t.Name = v }),
			adder.String("bus1_id", func(t *network.Transformer, v string) { t.Bus1ID = v }),
			adder.String("bus2_id", func(t *network.Transformer, v string) { t.Bus2ID = v }),
			adder.Double("r", func(t *network.Transformer, v float64) { t.R = v }),
			adder.Double("x", func(t *network.Transformer, v float64) { t.X = v }),
			adder.Double("g", func(t *network.Transformer, v float64) { t.G = v }),
			adder.Double("b", func(t *network.Transformer, v float64) { t.B = v }),
			adder.Double("rated_u1", func(t *network.Transformer, v float64) { t.RatedU1 = v }),
			adder.Double("rated_u2", func(t *network.Transformer, v float64) { t.RatedU2 = v }),
		)
		if err != nil {
			return nil, err
		}
		cls, err := limits(r.Related(1))
		if err != nil {
			return nil, err
		}
		ready := hasBus(t.Bus1ID, t.Bus2ID)
		return func(n *network.Network) (*network.Transformer, bool) {
			if !ready(n) {
				return nil, false
			}
			tr := *t
			tr.Limits = copyLimits(cls)
			return &tr, true
		}, nil
	},
	Check:  unclaimed("transformer", func(e *network.Transformer) string { return e.ID }),
	Attach: (*network.Network).AddTransformer,
}
