package network

import "github.com/paulmach/orb"

// Substation groups buses at one site.
type Substation struct {
	ID      string
	Name    string
	Country string
	TSO     string
	// Position is the geographical position (longitude, latitude), nil when
	// unknown.
	Position *orb.Point
}

// Bus is an electrical node.
type Bus struct {
	ID           string
	Name         string
	SubstationID string
	NominalV     float64
	// V and Angle are computed by a load flow.
	V     float64
	Angle float64
}

// Generator injects power at a bus.
type Generator struct {
	ID                 string
	Name               string
	BusID              string
	EnergySource       EnergySource
	MinP               float64
	MaxP               float64
	TargetP            float64
	TargetQ            float64
	TargetV            float64
	VoltageRegulatorOn bool
	RatedS             float64
	Connected          bool
	// P and Q are computed by a load flow.
	P float64
	Q float64
}

// Load draws power at a bus.
type Load struct {
	ID        string
	Name      string
	BusID     string
	Type      LoadType
	P0        float64
	Q0        float64
	Connected bool
	P         float64
	Q         float64
}

// Line is an AC line between two buses.
type Line struct {
	ID         string
	Name       string
	Bus1ID     string
	Bus2ID     string
	R          float64
	X          float64
	G1         float64
	B1         float64
	G2         float64
	B2         float64
	Connected1 bool
	Connected2 bool
	// Coordinates traces the line route, empty when unknown.
	Coordinates orb.LineString
	Limits      []*CurrentLimit
}

// Transformer is a two-winding transformer.
type Transformer struct {
	ID         string
	Name       string
	Bus1ID     string
	Bus2ID     string
	R          float64
	X          float64
	G          float64
	B          float64
	RatedU1    float64
	RatedU2    float64
	Connected1 bool
	Connected2 bool
	TapChanger *RatioTapChanger
	Limits     []*CurrentLimit
}

// RatioTapChanger adjusts the transformer ratio in discrete steps.
type RatioTapChanger struct {
	LowTap          int
	Tap             int
	Regulating      bool
	LoadTapChanging bool
	TargetV         float64
	TargetDeadband  float64
	Steps           []RatioTapChangerStep
}

// HighTap returns the highest tap position.
func (tc *RatioTapChanger) HighTap() int {
	return tc.LowTap + len(tc.Steps) - 1
}

// RatioTapChangerStep holds the deviations of one tap position.
type RatioTapChangerStep struct {
	Rho float64
	R   float64
	X   float64
	G   float64
	B   float64
}
