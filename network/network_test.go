package network

import (
	"errors"
	"testing"
)

func sample(t *testing.T) *Network {
	t.Helper()
	n := New("test")
	steps := []func() error{
		func() error { return n.AddSubstation(&Substation{ID: "S1"}) },
		func() error { return n.AddBus(&Bus{ID: "B1", SubstationID: "S1", NominalV: 400}) },
		func() error { return n.AddBus(&Bus{ID: "B2", SubstationID: "S1", NominalV: 225}) },
		func() error { return n.AddGenerator(&Generator{ID: "G1", BusID: "B1"}) },
		func() error { return n.AddLoad(&Load{ID: "L1", BusID: "B2"}) },
		func() error { return n.AddLine(&Line{ID: "LINE1", Bus1ID: "B1", Bus2ID: "B2"}) },
		func() error { return n.AddTransformer(&Transformer{ID: "T1", Bus1ID: "B1", Bus2ID: "B2"}) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
	}
	return n
}

func TestAddElements(t *testing.T) {
	n := sample(t)

	if len(n.Buses()) != 2 || n.Buses()[0].ID != "B1" {
		t.Errorf("Buses() = %v, want insertion order", n.Buses())
	}
	if g, ok := n.Generator("G1"); !ok || g.BusID != "B1" {
		t.Errorf("Generator(G1) = %v, %v", g, ok)
	}
	if typ, ok := n.ElementType("LINE1"); !ok || typ != "line" {
		t.Errorf("ElementType(LINE1) = %q, %v", typ, ok)
	}
	if _, ok := n.Load("nope"); ok {
		t.Error("Load(nope) should be absent")
	}
}

func TestAddElementErrors(t *testing.T) {
	tests := []struct {
		name string
		add  func(n *Network) error
		want error
	}{
		{"duplicate generator", func(n *Network) error { return n.AddGenerator(&Generator{ID: "G1", BusID: "B1"}) }, ErrDuplicateID},
		{"id shared across types", func(n *Network) error { return n.AddLoad(&Load{ID: "G1", BusID: "B1"}) }, ErrDuplicateID},
		{"unknown bus", func(n *Network) error { return n.AddGenerator(&Generator{ID: "G2", BusID: "X"}) }, ErrUnknownReference},
		{"unknown line end", func(n *Network) error { return n.AddLine(&Line{ID: "LINE2", Bus1ID: "B1", Bus2ID: "X"}) }, ErrUnknownReference},
		{"unknown substation", func(n *Network) error { return n.AddBus(&Bus{ID: "B3", SubstationID: "X"}) }, ErrUnknownReference},
		{"unknown branch limit", func(n *Network) error { return n.AddCurrentLimit("X", &CurrentLimit{}) }, ErrUnknownReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := sample(t)
			if err := tt.add(n); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCurrentLimits(t *testing.T) {
	n := sample(t)

	limits := []struct {
		id string
		cl *CurrentLimit
	}{
		{"LINE1", &CurrentLimit{Side: One, Name: PermanentLimit, Value: 1000}},
		{"LINE1", &CurrentLimit{Side: Two, Name: PermanentLimit, Value: 900}},
		{"T1", &CurrentLimit{Side: One, Name: "10'", Value: 1200, AcceptableDuration: 600}},
	}
	for _, l := range limits {
		if err := n.AddCurrentLimit(l.id, l.cl); err != nil {
			t.Fatalf("AddCurrentLimit(%s) failed: %v", l.id, err)
		}
	}

	refs := n.CurrentLimits()
	if len(refs) != 3 {
		t.Fatalf("CurrentLimits() returned %d limits, want 3", len(refs))
	}
	if refs[2].ElementID != "T1" || refs[2].AcceptableDuration != 600 {
		t.Errorf("refs[2] = %+v", refs[2])
	}

	cl, ok := n.CurrentLimit("LINE1", Two, PermanentLimit)
	if !ok || cl.Value != 900 {
		t.Errorf("CurrentLimit(LINE1, TWO) = %v, %v", cl, ok)
	}
	if _, ok := n.CurrentLimit("LINE1", Two, "10'"); ok {
		t.Error("unknown limit name should be absent")
	}

	if err := n.AddCurrentLimit("LINE1", &CurrentLimit{Side: One, Name: PermanentLimit, Value: 1100}); err != nil {
		t.Fatalf("AddCurrentLimit() failed: %v", err)
	}
	if cl, _ := n.CurrentLimit("LINE1", One, PermanentLimit); cl.Value != 1100 {
		t.Errorf("limit should be replaced, got %v", cl.Value)
	}
	if len(n.CurrentLimits()) != 3 {
		t.Error("replacing a limit must not add one")
	}
}

func TestControlZones(t *testing.T) {
	n := New("svc")
	if n.SecondaryVoltageControl() != nil {
		t.Fatal("new network should have no secondary voltage control")
	}
	if err := n.AddControlZone(&ControlZone{Name: "z1"}); err != nil {
		t.Fatalf("AddControlZone() failed: %v", err)
	}
	if err := n.AddControlZone(&ControlZone{Name: "z1"}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected duplicate error, got %v", err)
	}
	if _, ok := n.SecondaryVoltageControl().Zone("z1"); !ok {
		t.Error("zone z1 should exist")
	}
}

func TestEnumNames(t *testing.T) {
	if Nuclear.String() != "NUCLEAR" || FictitiousLoad.String() != "FICTITIOUS" || Two.String() != "TWO" {
		t.Error("enum names do not match their ordinals")
	}
	if EnergySource(42).String() != "UNKNOWN" {
		t.Error("out of range ordinal should be UNKNOWN")
	}
}

func TestHighTap(t *testing.T) {
	tc := &RatioTapChanger{LowTap: -2, Steps: make([]RatioTapChangerStep, 5)}
	if tc.HighTap() != 2 {
		t.Errorf("HighTap() = %d, want 2", tc.HighTap())
	}
}
