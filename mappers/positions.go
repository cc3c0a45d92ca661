package mappers

import (
	"github.com/paulmach/orb"

	"github.com/hugr-lab/gridframe/mapper"
	"github.com/hugr-lab/gridframe/network"
)

// substationPositions lists substations with a known position.
var substationPositions = must(mapper.NewBuilder[*network.Network, *network.Substation]().
	StringIndex("id", func(s *network.Substation) string { return s.ID }).
	Doubles("latitude",
		func(s *network.Substation) float64 { return s.Position.Lat() },
		set(func(s *network.Substation, v float64) { s.Position[1] = v })).
	Doubles("longitude",
		func(s *network.Substation) float64 { return s.Position.Lon() },
		set(func(s *network.Substation, v float64) { s.Position[0] = v })).
	Build(
		func(n *network.Network) []*network.Substation {
			var out []*network.Substation
			for _, s := range n.Substations() {
				if s.Position != nil {
					out = append(out, s)
				}
			}
			return out
		},
		func(n *network.Network, k mapper.Key) (*network.Substation, bool) {
			s, ok := n.Substation(k.Str(0))
			if !ok || s.Position == nil {
				return nil, false
			}
			return s, true
		}))

// linePoint is one coordinate of a line route.
type linePoint struct {
	line *network.Line
	num  int
}

func (p linePoint) point() *orb.Point { return &p.line.Coordinates[p.num] }

// linePositions is indexed by (id, num), num being the position of the
// coordinate along the route.
var linePositions = must(mapper.NewBuilder[*network.Network, linePoint]().
	StringIndex("id", func(p linePoint) string { return p.line.ID }).
	IntIndex("num", func(p linePoint) int { return p.num }).
	Doubles("latitude",
		func(p linePoint) float64 { return p.point().Lat() },
		set(func(p linePoint, v float64) { p.point()[1] = v })).
	Doubles("longitude",
		func(p linePoint) float64 { return p.point().Lon() },
		set(func(p linePoint, v float64) { p.point()[0] = v })).
	Build(
		func(n *network.Network) []linePoint {
			var out []linePoint
			for _, l := range n.Lines() {
				for i := range l.Coordinates {
					out = append(out, linePoint{line: l, num: i})
				}
			}
			return out
		},
		func(n *network.Network, k mapper.Key) (linePoint, bool) {
			l, ok := n.Line(k.Str(0))
			num := k.Int(1)
			if !ok || num < 0 || num >= len(l.Coordinates) {
				return linePoint{}, false
			}
			return linePoint{line: l, num: num}, true
		}))
