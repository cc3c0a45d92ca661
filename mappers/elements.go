package mappers

import (
	"github.com/hugr-lab/gridframe/mapper"
	"github.com/hugr-lab/gridframe/network"
)

var substations = must(mapper.NewBuilder[*network.Network, *network.Substation]().
	StringIndex("id", func(s *network.Substation) string { return s.ID }).
	Strings("name",
		func(s *network.Substation) string { return s.Name },
		set(func(s *network.Substation, v string) { s.Name = v })).
	Strings("country",
		func(s *network.Substation) string { return s.Country },
		set(func(s *network.Substation, v string) { s.Country = v })).
	Strings("tso",
		func(s *network.Substation) string { return s.TSO },
		set(func(s *network.Substation, v string) { s.TSO = v })).
	Build(
		(*network.Network).Substations,
		func(n *network.Network, k mapper.Key) (*network.Substation, bool) { return n.Substation(k.Str(0)) }))

var buses = must(mapper.NewBuilder[*network.Network, *network.Bus]().
	StringIndex("id", func(b *network.Bus) string { return b.ID }).
	Strings("name", func(b *network.Bus) string { return b.Name }, nil).
	Strings("substation_id", func(b *network.Bus) string { return b.SubstationID }, nil).
	Doubles("nominal_v", func(b *network.Bus) float64 { return b.NominalV }, nil).
	Doubles("v_mag",
		func(b *network.Bus) float64 { return b.V },
		set(func(b *network.Bus, v float64) { b.V = v })).
	Doubles("v_angle",
		func(b *network.Bus) float64 { return b.Angle },
		set(func(b *network.Bus, v float64) { b.Angle = v })).
	Build(
		(*network.Network).Buses,
		func(n *network.Network, k mapper.Key) (*network.Bus, bool) { return n.Bus(k.Str(0)) }))

var generators = must(mapper.NewBuilder[*network.Network, *network.Generator]().
	StringIndex("id", func(g *network.Generator) string { return g.ID }).
	Strings("name", func(g *network.Generator) string { return g.Name }, nil).
	Strings("bus_id", func(g *network.Generator) string { return g.BusID }, nil).
	Enums("energy_source", network.EnergySources,
		func(g *network.Generator) int { return int(g.EnergySource) }, nil).
	Doubles("min_p",
		func(g *network.Generator) float64 { return g.MinP },
		set(func(g *network.Generator, v float64) { g.MinP = v })).
	Doubles("max_p",
		func(g *network.Generator) float64 { return g.MaxP },
		set(func(g *network.Generator, v float64) { g.MaxP = v })).
	Doubles("target_p",
		func(g *network.Generator) float64 { return g.TargetP },
		set(func(g *network.Generator, v float64) { g.TargetP = v })).
	Doubles("target_q",
		func(g *network.Generator) float64 { return g.TargetQ },
		set(func(g *network.Generator, v float64) { g.TargetQ = v })).
	Doubles("target_v",
		func(g *network.Generator) float64 { return g.TargetV },
		set(func(g *network.Generator, v float64) { g.TargetV = v })).
	Bools("voltage_regulator_on",
		func(g *network.Generator) bool { return g.VoltageRegulatorOn },
		set(func(g *network.Generator, v bool) { g.VoltageRegulatorOn = v })).
	Doubles("rated_s",
		func(g *network.Generator) float64 { return g.RatedS },
		set(func(g *network.Generator, v float64) { g.RatedS = v }),
		mapper.NotDefault()).
	Doubles("p", func(g *network.Generator) float64 { return g.P }, nil).
	Doubles("q", func(g *network.Generator) float64 { return g.Q }, nil).
	Bools("connected",
		func(g *network.Generator) bool { return g.Connected },
		set(func(g *network.Generator, v bool) { g.Connected = v })).
	Build(
		(*network.Network).Generators,
		func(n *network.Network, k mapper.Key) (*network.Generator, bool) { return n.Generator(k.Str(0)) }))

var loads = must(mapper.NewBuilder[*network.Network, *network.Load]().
	StringIndex("id", func(l *network.Load) string { return l.ID }).
	Strings("name", func(l *network.Load) string { return l.Name }, nil).
	Strings("bus_id", func(l *network.Load) string { return l.BusID }, nil).
	Enums("type", network.LoadTypes,
		func(l *network.Load) int { return int(l.Type) },
		func(l *network.Load, v int) error {
			if err := enumOrdinal(network.LoadTypes, v); err != nil {
				return err
			}
			l.Type = network.LoadType(v)
			return nil
		}).
	Doubles("p0",
		func(l *network.Load) float64 { return l.P0 },
		set(func(l *network.Load, v float64) { l.P0 = v })).
	Doubles("q0",
		func(l *network.Load) float64 { return l.Q0 },
		set(func(l *network.Load, v float64) { l.Q0 = v })).
	Doubles("p", func(l *network.Load) float64 { return l.P }, nil).
	Doubles("q", func(l *network.Load) float64 { return l.Q }, nil).
	Bools("connected",
		func(l *network.Load) bool { return l.Connected },
		set(func(l *network.Load, v bool) { l.Connected = v })).
	Build(
		(*network.Network).Loads,
		func(n *network.Network, k mapper.Key) (*network.Load, bool) { return n.Load(k.Str(0)) }))
