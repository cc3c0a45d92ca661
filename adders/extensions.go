package adders

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/hugr-lab/gridframe/adder"
	"github.com/hugr-lab/gridframe/network"
	"github.com/hugr-lab/gridframe/table"
)

// SubstationPosition places an existing substation.
type SubstationPosition struct {
	Substation *network.Substation
	Position   orb.Point
}

// SubstationPositions sets the geographical position of existing substations.
var SubstationPositions = &adder.Definition[*network.Network, SubstationPosition]{
	Category: "substation_positions",
	Tables: []adder.TableSpec{{Name: "substation_positions", Columns: []adder.ColumnSpec{
		id("id"),
		required("latitude", table.Double),
		required("longitude", table.Double),
	}}},
	Build: func(r *adder.Row) (adder.Deferred[*network.Network, SubstationPosition], error) {
		lat, okLat := r.Primary().Double("latitude")
		lon, okLon := r.Primary().Double("longitude")
		if !okLat || !okLon {
			return nil, fmt.Errorf("latitude and longitude are required")
		}
		return func(n *network.Network) (SubstationPosition, bool) {
			s, ok := n.Substation(r.ID)
			if !ok {
				return SubstationPosition{}, false
			}
			return SubstationPosition{Substation: s, Position: orb.Point{lon, lat}}, true
		}, nil
	},
	Attach: func(_ *network.Network, p SubstationPosition) error {
		pos := p.Position
		p.Substation.Position = &pos
		return nil
	},
}

// LineRoute traces an existing line.
type LineRoute struct {
	Line  *network.Line
	Route orb.LineString
}

// LinePositions sets the route of existing lines from their coordinates, one
// secondary row per point, in table order.
var LinePositions = &adder.Definition[*network.Network, LineRoute]{
	Category: "line_positions",
	Tables: []adder.TableSpec{
		{Name: "lines", Columns: []adder.ColumnSpec{id("id")}},
		{Name: "coordinates", JoinColumn: "id", Columns: []adder.ColumnSpec{
			required("id", table.String),
			required("latitude", table.Double),
			required("longitude", table.Double),
		}},
	},
	Build: func(r *adder.Row) (adder.Deferred[*network.Network, LineRoute], error) {
		points := r.Related(1)
		route := make(orb.LineString, 0, len(points))
		for _, v := range points {
			lat, okLat := v.Double("latitude")
			lon, okLon := v.Double("longitude")
			if !okLat || !okLon {
				return nil, fmt.Errorf("coordinate row %d has no position", v.Row())
			}
			route = append(route, orb.Point{lon, lat})
		}
		return func(n *network.Network) (LineRoute, bool) {
			l, ok := n.Line(r.ID)
			if !ok {
				return LineRoute{}, false
			}
			return LineRoute{Line: l, Route: append(orb.LineString(nil), route...)}, true
		}, nil
	},
	Attach: func(_ *network.Network, lr LineRoute) error {
		lr.Line.Coordinates = lr.Route
		return nil
	},
}

// TapChangerAttachment adds a ratio tap changer to an existing transformer.
type TapChangerAttachment struct {
	Transformer *network.Transformer
	TapChanger  *network.RatioTapChanger
}

// RatioTapChangers adds ratio tap changers to existing transformers, with
// one step per secondary row in table order.
var RatioTapChangers = &adder.Definition[*network.Network, TapChangerAttachment]{
	Category: "ratio_tap_changers",
	Tables: []adder.TableSpec{
		{Name: "ratio_tap_changers", Columns: []adder.ColumnSpec{
			id("id"),
			required("tap", table.Int),
			optional("low_tap", table.Int),
			optional("on_load", table.Bool),
			optional("regulating", table.Bool),
			optional("target_v", table.Double),
			optional("target_deadband", table.Double),
		}},
		{Name: "steps", JoinColumn: "id", Columns: []adder.ColumnSpec{
			required("id", table.String),
			required("rho", table.Double),
			optional("r", table.Double),
			optional("x", table.Double),
			optional("g", table.Double),
			optional("b", table.Double),
		}},
	},
	Build: func(r *adder.Row) (adder.Deferred[*network.Network, TapChangerAttachment], error) {
		tc := &network.RatioTapChanger{}
		err := adder.Apply(r.Primary(), tc,
			adder.Int("tap", func(tc *network.RatioTapChanger, v int) { tc.Tap = v }),
			adder.Int("low_tap", func(tc *network.RatioTapChanger, v int) { tc.LowTap = v }),
			adder.Bool("on_load", func(tc *network.RatioTapChanger, v bool) { tc.LoadTapChanging = v }),
			adder.Bool("regulating", func(tc *network.RatioTapChanger, v bool) { tc.Regulating = v }),
			adder.Double("target_v", func(tc *network.RatioTapChanger, v float64) { tc.TargetV = v }),
			adder.Double("target_deadband", func(tc *network.RatioTapChanger, v float64) { tc.TargetDeadband = v }),
		)
		if err != nil {
			return nil, err
		}
		for _, v := range r.Related(1) {
			step := network.RatioTapChangerStep{Rho: 1}
			v.ApplyDouble("rho", func(f float64) { step.Rho = f })
			v.ApplyDouble("r", func(f float64) { step.R = f })
			v.ApplyDouble("x", func(f float64) { step.X = f })
			v.ApplyDouble("g", func(f float64) { step.G = f })
			v.ApplyDouble("b", func(f float64) { step.B = f })
			tc.Steps = append(tc.Steps, step)
		}
		if len(tc.Steps) == 0 {
			return nil, fmt.Errorf("tap changer has no steps")
		}
		if tc.Tap < tc.LowTap || tc.Tap > tc.HighTap() {
			return nil, fmt.Errorf("tap %d outside [%d, %d]", tc.Tap, tc.LowTap, tc.HighTap())
		}
		return func(n *network.Network) (TapChangerAttachment, bool) {
			t, ok := n.Transformer(r.ID)
			if !ok {
				return TapChangerAttachment{}, false
			}
			c := *tc
			c.Steps = append([]network.RatioTapChangerStep(nil), tc.Steps...)
			return TapChangerAttachment{Transformer: t, TapChanger: &c}, true
		}, nil
	},
	Attach: func(_ *network.Network, a TapChangerAttachment) error {
		a.Transformer.TapChanger = a.TapChanger
		return nil
	},
}

// SecondaryVoltageControl creates voltage control zones. A zone is built from
// its pilot point buses and its control units; it is dropped when a pilot
// point bus is missing, and units on missing generators are left out.
var SecondaryVoltageControl = &adder.Definition[*network.Network, *network.ControlZone]{
	Category: "secondary_voltage_control",
	Tables: []adder.TableSpec{
		{Name: "zones", Columns: []adder.ColumnSpec{
			id("name"),
			required("target_v", table.Double),
		}},
		{Name: "pilot_points", JoinColumn: "zone_name", Columns: []adder.ColumnSpec{
			required("zone_name", table.String),
			required("busbar_section_id", table.String),
		}},
		{Name: "units", JoinColumn: "zone_name", Columns: []adder.ColumnSpec{
			required("zone_name", table.String),
			required("unit_id", table.String),
			optional("participate", table.Bool),
		}},
	},
	Build: func(r *adder.Row) (adder.Deferred[*network.Network, *network.ControlZone], error) {
		targetV, ok := r.Primary().Double("target_v")
		if !ok {
			return nil, fmt.Errorf("target_v is required")
		}

		var pilots []string
		for _, v := range r.Related(1) {
			v.ApplyString("busbar_section_id", func(s string) { pilots = append(pilots, s) })
		}
		if len(pilots) == 0 {
			return nil, fmt.Errorf("zone %s has no pilot point", r.ID)
		}

		var units []network.ControlUnit
		for _, v := range r.Related(2) {
			u := network.ControlUnit{Participate: true}
			v.ApplyString("unit_id", func(s string) { u.ID = s })
			v.ApplyBool("participate", func(b bool) { u.Participate = b })
			units = append(units, u)
		}

		return func(n *network.Network) (*network.ControlZone, bool) {
			if !hasBus(pilots...)(n) {
				return nil, false
			}
			z := &network.ControlZone{
				Name:       r.ID,
				PilotPoint: network.PilotPoint{BusbarSectionIDs: append([]string(nil), pilots...), TargetV: targetV},
			}
			for _, u := range units {
				if _, ok := n.Generator(u.ID); ok {
					z.Units = append(z.Units, u)
				}
			}
			return z, true
		}, nil
	},
	Check: func(n *network.Network, zones []*network.ControlZone) error {
		names := make([]string, len(zones))
		for i, z := range zones {
			names[i] = z.Name
		}
		return n.CheckControlZones(names)
	},
	Attach: (*network.Network).AddControlZone,
}
