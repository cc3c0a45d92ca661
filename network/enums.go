package network

// EnergySource is the primary energy of a generator.
type EnergySource int

const (
	Hydro EnergySource = iota
	Nuclear
	Wind
	Thermal
	Solar
	OtherSource
)

// EnergySources lists the enum names, indexed by ordinal.
var EnergySources = []string{"HYDRO", "NUCLEAR", "WIND", "THERMAL", "SOLAR", "OTHER"}

func (e EnergySource) String() string { return enumName(EnergySources, int(e)) }

// LoadType classifies loads.
type LoadType int

const (
	UndefinedLoad LoadType = iota
	AuxiliaryLoad
	FictitiousLoad
)

// LoadTypes lists the enum names, indexed by ordinal.
var LoadTypes = []string{"UNDEFINED", "AUXILIARY", "FICTITIOUS"}

func (t LoadType) String() string { return enumName(LoadTypes, int(t)) }

// Side identifies a branch end.
type Side int

const (
	One Side = iota
	Two
)

// Sides lists the enum names, indexed by ordinal.
var Sides = []string{"ONE", "TWO"}

func (s Side) String() string { return enumName(Sides, int(s)) }

func enumName(names []string, ord int) string {
	if ord < 0 || ord >= len(names) {
		return "UNKNOWN"
	}
	return names[ord]
}
