package network

import "fmt"

// SecondaryVoltageControl holds the voltage control zones of a network.
type SecondaryVoltageControl struct {
	Zones []*ControlZone
}

// Zone returns the zone with the given name.
func (s *SecondaryVoltageControl) Zone(name string) (*ControlZone, bool) {
	for _, z := range s.Zones {
		if z.Name == name {
			return z, true
		}
	}
	return nil, false
}

func (s *SecondaryVoltageControl) addZone(z *ControlZone) error {
	if z.Name == "" {
		return fmt.Errorf("control zone name cannot be empty")
	}
	if _, ok := s.Zone(z.Name); ok {
		return fmt.Errorf("%w: control zone %s", ErrDuplicateID, z.Name)
	}
	s.Zones = append(s.Zones, z)
	return nil
}

// ControlZone regulates the voltage of a pilot point with a set of units.
type ControlZone struct {
	Name       string
	PilotPoint PilotPoint
	Units      []ControlUnit
}

// PilotPoint is the regulated node of a zone.
type PilotPoint struct {
	BusbarSectionIDs []string
	TargetV          float64
}

// ControlUnit is a generator taking part in a zone.
type ControlUnit struct {
	ID          string
	Participate bool
}
