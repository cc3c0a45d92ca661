package geometry

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paulmach/orb"

	"github.com/hugr-lab/gridframe/network"
)

// Layer names a geographical view of a network.
type Layer string

const (
	// Substations holds one Point per positioned substation.
	Substations Layer = "substations"
	// Lines holds one LineString per line with a known route.
	Lines Layer = "lines"
)

// Layers lists every layer.
var Layers = []Layer{Substations, Lines}

// ErrUnknownLayer is returned for a layer name that is not in Layers.
var ErrUnknownLayer = errors.New("unknown geometry layer")

// Schema returns the record schema of a layer.
func Schema(l Layer) (*arrow.Schema, error) {
	switch l {
	case Substations:
		return layerSchema("Point"), nil
	case Lines:
		return layerSchema("LineString"), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownLayer, l)
}

func layerSchema(geomType string) *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.BinaryTypes.String},
		NewField("geometry", false, geomType),
	}, nil)
}

// NewRecord builds the record of a layer. Elements without geographical data
// are left out. Caller MUST call Release on the record.
func NewRecord(net *network.Network, l Layer, mem memory.Allocator) (arrow.Record, error) {
	schema, err := Schema(l)
	if err != nil {
		return nil, err
	}
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	ids := array.NewStringBuilder(mem)
	defer ids.Release()
	geoms := array.NewBinaryBuilder(mem, arrow.BinaryTypes.Binary)
	defer geoms.Release()

	add := func(id string, g orb.Geometry) error {
		data, err := Encode(g)
		if err != nil {
			return fmt.Errorf("%s %s: %w", l, id, err)
		}
		ids.Append(id)
		geoms.Append(data)
		return nil
	}

	switch l {
	case Substations:
		for _, s := range net.Substations() {
			if s.Position == nil {
				continue
			}
			if err := add(s.ID, *s.Position); err != nil {
				return nil, err
			}
		}
	case Lines:
		for _, line := range net.Lines() {
			if len(line.Coordinates) < 2 {
				continue
			}
			if err := add(line.ID, line.Coordinates); err != nil {
				return nil, err
			}
		}
	}

	idArr := ids.NewArray()
	defer idArr.Release()
	storage := geoms.NewArray()
	defer storage.Release()
	geomArr := array.NewExtensionArrayWithStorage(schema.Field(1).Type.(arrow.ExtensionType), storage)
	defer geomArr.Release()

	return array.NewRecord(schema, []arrow.Array{idArr, geomArr}, int64(idArr.Len())), nil
}

// Apply sets the positions or routes of the elements listed in rec. Rows
// naming an unknown element are skipped; a row with an invalid geometry fails
// the call before anything is applied. Returns the number of elements updated.
func Apply(net *network.Network, l Layer, rec arrow.Record) (int, error) {
	if _, err := Schema(l); err != nil {
		return 0, err
	}
	if rec == nil || rec.NumCols() < 2 {
		return 0, fmt.Errorf("%s: record needs id and geometry columns", l)
	}
	ids, ok := rec.Column(0).(*array.String)
	if !ok {
		return 0, fmt.Errorf("%s: id column is %s, expected utf8", l, rec.Column(0).DataType())
	}
	wkbs, err := binaryColumn(rec.Column(1))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", l, err)
	}

	geoms := make([]orb.Geometry, ids.Len())
	for i := range geoms {
		if ids.IsNull(i) || wkbs.IsNull(i) {
			continue
		}
		g, err := Decode(wkbs.Value(i))
		if err != nil {
			return 0, fmt.Errorf("%s %s: %w", l, ids.Value(i), err)
		}
		if err := checkType(l, g); err != nil {
			return 0, fmt.Errorf("%s %s: %w", l, ids.Value(i), err)
		}
		geoms[i] = g
	}

	applied := 0
	for i, g := range geoms {
		if g == nil {
			continue
		}
		id := ids.Value(i)
		switch l {
		case Substations:
			s, ok := net.Substation(id)
			if !ok {
				continue
			}
			p := g.(orb.Point)
			s.Position = &p
		case Lines:
			line, ok := net.Line(id)
			if !ok {
				continue
			}
			line.Coordinates = append(orb.LineString(nil), g.(orb.LineString)...)
		}
		applied++
	}
	return applied, nil
}

func checkType(l Layer, g orb.Geometry) error {
	if err := Validate(g); err != nil {
		return err
	}
	want := "Point"
	if l == Lines {
		want = "LineString"
	}
	if g.GeoJSONType() != want {
		return fmt.Errorf("got %s, expected %s", g.GeoJSONType(), want)
	}
	return nil
}

func binaryColumn(col arrow.Array) (*array.Binary, error) {
	if ext, ok := col.(array.ExtensionArray); ok {
		col = ext.Storage()
	}
	b, ok := col.(*array.Binary)
	if !ok {
		return nil, fmt.Errorf("geometry column is %s, expected WKB binary", col.DataType())
	}
	return b, nil
}
