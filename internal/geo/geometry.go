// Package geo holds the geometry model shared by every codec and the
// encoders that render it to WKT, KML, GeoJSON, GPX and WKB.
package geo

import (
	"slices"
	"strings"
)

// Type is the symbolic geometry type of a node.
type Type uint8

const (
	TypePoint Type = iota + 1
	TypeLineString
	TypeLinearRing
	TypePolygon
	TypeMultiPoint
	TypeMultiLineString
	TypeMultiPolygon
	TypeGeometryCollection
)

// String returns the name used in WKT and GeoJSON headers.
func (t Type) String() string {
	switch t {
	case TypePoint:
		return "Point"
	case TypeLineString:
		return "LineString"
	case TypeLinearRing:
		return "LinearRing"
	case TypePolygon:
		return "Polygon"
	case TypeMultiPoint:
		return "MultiPoint"
	case TypeMultiLineString:
		return "MultiLineString"
	case TypeMultiPolygon:
		return "MultiPolygon"
	case TypeGeometryCollection:
		return "GeometryCollection"
	default:
		return "Unknown"
	}
}

// Geometry is implemented by the closed set of variants in this package.
type Geometry interface {
	Type() Type
	// Components returns a copy of the direct children, nil for a Point.
	Components() []Geometry
	NumGeometries() int
	Equal(other Geometry) bool

	ToWKT() string
	ToKML() string
	ToGeoJSON() (string, error)
	ToGPX(mode GPXMode) (string, error)
	ToWKB() []byte
	ToWKBHex() string

	children() []Geometry
	writeWKTBody(b *strings.Builder)
	geoJSON() any
	appendWKB(buf []byte) []byte
}

// Point is a single longitude/latitude position.
type Point struct {
	lon, lat float64
}

// NewPoint validates the coordinates and returns a Point.
// NaN and infinite values are rejected as out of range.
func NewPoint(lon, lat float64) (*Point, error) {
	if !(lon >= -180 && lon <= 180) {
		return nil, outOfRange("longitude", lon)
	}
	if !(lat >= -90 && lat <= 90) {
		return nil, outOfRange("latitude", lat)
	}
	return &Point{lon: lon, lat: lat}, nil
}

// Lon returns the longitude.
func (p *Point) Lon() float64 { return p.lon }

// Lat returns the latitude.
func (p *Point) Lat() float64 { return p.lat }

// Type returns TypePoint.
func (p *Point) Type() Type { return TypePoint }

// Components is always nil for a Point.
func (p *Point) Components() []Geometry { return nil }

// NumGeometries is always zero for a Point.
func (p *Point) NumGeometries() int { return 0 }

func (p *Point) children() []Geometry { return nil }

// Equal compares concrete type and exact coordinates.
func (p *Point) Equal(other Geometry) bool {
	o, ok := other.(*Point)
	if !ok || o == nil {
		return false
	}
	return o.lon == p.lon && o.lat == p.lat
}

type collection struct {
	components []Geometry
	typ        Type
}

func newCollection[T Geometry](typ Type, items []T) (collection, error) {
	components := make([]Geometry, len(items))
	for i, item := range items {
		if isNil(item) {
			return collection{}, InvalidFeature("%s component %d is nil", typ, i)
		}
		components[i] = item
	}
	return collection{typ: typ, components: components}, nil
}

func isNil(g Geometry) bool {
	if g == nil {
		return true
	}
	switch v := g.(type) {
	case *Point:
		return v == nil
	case *LineString:
		return v == nil
	case *LinearRing:
		return v == nil
	case *Polygon:
		return v == nil
	case *MultiPoint:
		return v == nil
	case *MultiLineString:
		return v == nil
	case *MultiPolygon:
		return v == nil
	case *GeometryCollection:
		return v == nil
	}
	return false
}

// Type returns the variant tag.
func (c *collection) Type() Type { return c.typ }

// Components returns a copy of the children in order.
func (c *collection) Components() []Geometry { return slices.Clone(c.components) }

// NumGeometries returns the number of direct children.
func (c *collection) NumGeometries() int { return len(c.components) }

func (c *collection) children() []Geometry { return c.components }

// Equal compares type tags and children pairwise in order.
func (c *collection) Equal(other Geometry) bool {
	if isNil(other) || other.Type() != c.typ {
		return false
	}
	oc := other.children()
	if len(oc) != len(c.components) {
		return false
	}
	for i, child := range c.components {
		if !child.Equal(oc[i]) {
			return false
		}
	}
	return true
}

// LineString is an ordered sequence of points.
type LineString struct{ collection }

// NewLineString builds a LineString over points, preserving order.
func NewLineString(points []*Point) (*LineString, error) {
	c, err := newCollection(TypeLineString, points)
	if err != nil {
		return nil, err
	}
	return &LineString{c}, nil
}

// LinearRing is a closed point sequence bounding a polygon face or hole.
type LinearRing struct{ collection }

// NewLinearRing builds a ring over points, preserving order. Closure is
// not checked.
func NewLinearRing(points []*Point) (*LinearRing, error) {
	c, err := newCollection(TypeLinearRing, points)
	if err != nil {
		return nil, err
	}
	return &LinearRing{c}, nil
}

// Polygon is an outer ring followed by zero or more holes.
type Polygon struct{ collection }

// NewPolygon requires at least the outer ring.
func NewPolygon(rings []*LinearRing) (*Polygon, error) {
	if len(rings) == 0 {
		return nil, InvalidFeature("polygon has no outer boundary")
	}
	c, err := newCollection(TypePolygon, rings)
	if err != nil {
		return nil, err
	}
	return &Polygon{c}, nil
}

// MultiPoint is a homogeneous collection of points.
type MultiPoint struct{ collection }

// NewMultiPoint builds a MultiPoint; an empty list is allowed.
func NewMultiPoint(points []*Point) (*MultiPoint, error) {
	c, err := newCollection(TypeMultiPoint, points)
	if err != nil {
		return nil, err
	}
	return &MultiPoint{c}, nil
}

// MultiLineString is a homogeneous collection of line strings.
type MultiLineString struct{ collection }

// NewMultiLineString builds a MultiLineString; an empty list is allowed.
func NewMultiLineString(lines []*LineString) (*MultiLineString, error) {
	c, err := newCollection(TypeMultiLineString, lines)
	if err != nil {
		return nil, err
	}
	return &MultiLineString{c}, nil
}

// MultiPolygon is a homogeneous collection of polygons.
type MultiPolygon struct{ collection }

// NewMultiPolygon builds a MultiPolygon; an empty list is allowed.
func NewMultiPolygon(polygons []*Polygon) (*MultiPolygon, error) {
	c, err := newCollection(TypeMultiPolygon, polygons)
	if err != nil {
		return nil, err
	}
	return &MultiPolygon{c}, nil
}

// GeometryCollection is the heterogeneous fallback collection.
type GeometryCollection struct{ collection }

// NewGeometryCollection builds a collection over any mix of geometries.
func NewGeometryCollection(geoms []Geometry) (*GeometryCollection, error) {
	c, err := newCollection(TypeGeometryCollection, geoms)
	if err != nil {
		return nil, err
	}
	return &GeometryCollection{c}, nil
}

// Points returns the vertices of a point sequence in order.
func Points(g Geometry) []*Point {
	children := g.children()
	out := make([]*Point, 0, len(children))
	for _, c := range children {
		if p, ok := c.(*Point); ok {
			out = append(out, p)
		}
	}
	return out
}
