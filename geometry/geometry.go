// Package geometry exports and imports the geographical data of a network
// (substation positions, line routes) as GeoArrow records: an id column and a
// WKB geometry column of the geoarrow.wkb extension type, in WGS 84.
package geometry

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
)

// WGS84 is the SRID of every geometry produced.
const WGS84 = 4326

// ExtensionType is the geoarrow.wkb Arrow extension type.
// Geometries are stored as WKB in Binary columns.
type ExtensionType struct {
	arrow.ExtensionBase
}

// NewExtensionType creates a geoarrow.wkb type over Binary storage.
func NewExtensionType() *ExtensionType {
	return &ExtensionType{
		ExtensionBase: arrow.ExtensionBase{
			Storage: arrow.BinaryTypes.Binary,
		},
	}
}

// Array is a geoarrow.wkb column. Storage holds the WKB values.
type Array struct {
	array.ExtensionArrayBase
}

// ArrayType returns the Go type for geometry arrays.
func (g *ExtensionType) ArrayType() reflect.Type {
	return reflect.TypeOf(Array{})
}

// ExtensionName returns "geoarrow.wkb".
func (g *ExtensionType) ExtensionName() string {
	return "geoarrow.wkb"
}

func (g *ExtensionType) String() string {
	return "extension<geoarrow.wkb>"
}

// Serialize returns the extension metadata (empty for plain WKB).
func (g *ExtensionType) Serialize() string {
	return ""
}

// Deserialize accepts Binary and LargeBinary storage.
func (g *ExtensionType) Deserialize(storageType arrow.DataType, data string) (arrow.ExtensionType, error) {
	if !arrow.TypeEqual(storageType, arrow.BinaryTypes.Binary) &&
		!arrow.TypeEqual(storageType, arrow.BinaryTypes.LargeBinary) {
		return nil, fmt.Errorf("invalid storage type for geometry: %s (expected Binary or LargeBinary)", storageType)
	}
	return &ExtensionType{
		ExtensionBase: arrow.ExtensionBase{Storage: storageType},
	}, nil
}

// ExtensionEquals checks equality with another extension type.
func (g *ExtensionType) ExtensionEquals(other arrow.ExtensionType) bool {
	o, ok := other.(*ExtensionType)
	if !ok {
		return false
	}
	return arrow.TypeEqual(g.StorageType(), o.StorageType())
}

// Metadata is the GeoArrow column metadata, stored in the field as JSON.
type Metadata struct {
	CRS           *CRS     `json:"crs,omitempty"`
	Encoding      string   `json:"encoding,omitempty"`
	GeometryTypes []string `json:"geometry_types,omitempty"`
}

// CRS identifies a coordinate reference system.
type CRS struct {
	ID *CRSID `json:"id,omitempty"`
}

// CRSID is an authority code such as EPSG:4326.
type CRSID struct {
	Authority string `json:"authority"`
	Code      int    `json:"code"`
}

// NewField creates a WGS 84 geometry field restricted to geomType
// ("Point", "LineString").
func NewField(name string, nullable bool, geomType string) arrow.Field {
	ext := NewExtensionType()

	md, _ := json.Marshal(&Metadata{
		CRS:           &CRS{ID: &CRSID{Authority: "EPSG", Code: WGS84}},
		Encoding:      "WKB",
		GeometryTypes: []string{geomType},
	})

	return arrow.Field{
		Name:     name,
		Type:     ext,
		Nullable: nullable,
		Metadata: arrow.MetadataFrom(map[string]string{
			"ARROW:extension:name":     ext.ExtensionName(),
			"ARROW:extension:metadata": string(md),
			"srid":                     strconv.Itoa(WGS84),
			"geometry_type":            geomType,
			"dimension":                "XY",
		}),
	}
}

// Encode converts a geometry to WKB.
func Encode(geom orb.Geometry) ([]byte, error) {
	if geom == nil {
		return nil, fmt.Errorf("cannot encode nil geometry")
	}
	return wkb.Marshal(geom)
}

// Decode converts WKB to a geometry.
func Decode(data []byte) (orb.Geometry, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot decode empty WKB data")
	}
	return wkb.Unmarshal(data)
}

// Validate checks the geometries this package exchanges.
func Validate(geom orb.Geometry) error {
	switch g := geom.(type) {
	case orb.Point:
		if g.Lat() < -90 || g.Lat() > 90 || g.Lon() < -180 || g.Lon() > 180 {
			return fmt.Errorf("point %v is outside WGS 84 bounds", g)
		}
		return nil
	case orb.LineString:
		if len(g) < 2 {
			return fmt.Errorf("linestring must have at least 2 points, has %d", len(g))
		}
		for i, p := range g {
			if err := Validate(p); err != nil {
				return fmt.Errorf("linestring[%d]: %w", i, err)
			}
		}
		return nil
	case nil:
		return fmt.Errorf("geometry is nil")
	default:
		return fmt.Errorf("unsupported geometry type: %s", geom.GeoJSONType())
	}
}

func init() {
	_ = arrow.RegisterExtensionType(NewExtensionType())
}
