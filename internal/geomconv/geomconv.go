// Package geomconv bridges the geo model and github.com/twpayne/go-geom so
// geometries can be exchanged as standard PostGIS EWKB.
package geomconv

import (
	"bytes"
	"encoding/hex"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/woozymasta/geoconv/internal/decoder"
	"github.com/woozymasta/geoconv/internal/geo"
)

// SRID is the spatial reference stamped on every encoded root. The model only
// holds WGS 84 longitude and latitude.
const SRID = 4326

const formatEWKB = "ewkb"

// EWKB decodes and encodes standard extended WKB through go-geom.
type EWKB struct {
	MaxDepth int // 0 means decoder.DefaultMaxDepth
}

// Format returns "ewkb".
func (EWKB) Format() string { return formatEWKB }

// Decode reads one EWKB geometry, raw or hex encoded. An SRID other than 0
// or 4326 is rejected since no reprojection is done.
func (d EWKB) Decode(data []byte) ([]geo.Geometry, error) {
	raw, err := rawBytes(data)
	if err != nil {
		return nil, geo.Tag(formatEWKB, err)
	}

	maxDepth := limit(d.MaxDepth)
	if err := checkStructure(raw, maxDepth); err != nil {
		return nil, geo.Tag(formatEWKB, err)
	}

	t, err := ewkb.Unmarshal(raw)
	if err != nil {
		return nil, geo.Tag(formatEWKB, &geo.Error{Kind: geo.KindMalformed, Detail: "invalid EWKB", Cause: err})
	}
	if srid := t.SRID(); srid != 0 && srid != SRID {
		return nil, geo.Tag(formatEWKB, geo.Malformed("unsupported SRID %d", srid))
	}

	g, err := fromGeom(t, 1, maxDepth)
	if err != nil {
		return nil, geo.Tag(formatEWKB, err)
	}
	return []geo.Geometry{g}, nil
}

// Encode writes g as little-endian EWKB with SRID 4326.
func (EWKB) Encode(g geo.Geometry) ([]byte, error) {
	t, err := ToGeom(g)
	if err != nil {
		return nil, err
	}

	data, err := ewkb.Marshal(t, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "geomconv: encode EWKB")
	}
	return data, nil
}

func rawBytes(data []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, geo.Malformed("empty input")
	}
	if trimmed[0] <= 0x01 {
		return data, nil
	}

	raw := make([]byte, hex.DecodedLen(len(trimmed)))
	if _, err := hex.Decode(raw, trimmed); err != nil {
		return nil, &geo.Error{Kind: geo.KindMalformed, Detail: "invalid hex", Cause: err}
	}
	return raw, nil
}

// ToGeom converts g into the matching go-geom type with an XY layout and
// SRID 4326 on the root. A LinearRing becomes a LineString, as in WKB.
func ToGeom(g geo.Geometry) (geom.T, error) {
	t, err := toGeom(g)
	if err != nil {
		return nil, err
	}

	switch v := t.(type) {
	case *geom.Point:
		return v.SetSRID(SRID), nil
	case *geom.LineString:
		return v.SetSRID(SRID), nil
	case *geom.Polygon:
		return v.SetSRID(SRID), nil
	case *geom.MultiPoint:
		return v.SetSRID(SRID), nil
	case *geom.MultiLineString:
		return v.SetSRID(SRID), nil
	case *geom.MultiPolygon:
		return v.SetSRID(SRID), nil
	case *geom.GeometryCollection:
		return v.SetSRID(SRID), nil
	}
	return t, nil
}

func toGeom(g geo.Geometry) (geom.T, error) {
	switch v := g.(type) {
	case *geo.Point:
		return geom.NewPointFlat(geom.XY, []float64{v.Lon(), v.Lat()}), nil

	case *geo.LineString:
		return geom.NewLineStringFlat(geom.XY, flatCoords(geo.Points(v))), nil

	case *geo.LinearRing:
		return geom.NewLineStringFlat(geom.XY, flatCoords(geo.Points(v))), nil

	case *geo.Polygon:
		return toPolygon(v)

	case *geo.MultiPoint:
		mp := geom.NewMultiPoint(geom.XY)
		for _, p := range geo.Points(v) {
			if err := mp.Push(geom.NewPointFlat(geom.XY, []float64{p.Lon(), p.Lat()})); err != nil {
				return nil, eris.Wrap(err, "geomconv: push point")
			}
		}
		return mp, nil

	case *geo.MultiLineString:
		mls := geom.NewMultiLineString(geom.XY)
		for _, c := range v.Components() {
			ls := geom.NewLineStringFlat(geom.XY, flatCoords(geo.Points(c)))
			if err := mls.Push(ls); err != nil {
				return nil, eris.Wrap(err, "geomconv: push linestring")
			}
		}
		return mls, nil

	case *geo.MultiPolygon:
		mp := geom.NewMultiPolygon(geom.XY)
		for _, c := range v.Components() {
			poly, err := toPolygon(c.(*geo.Polygon))
			if err != nil {
				return nil, err
			}
			if err := mp.Push(poly); err != nil {
				return nil, eris.Wrap(err, "geomconv: push polygon")
			}
		}
		return mp, nil

	case *geo.GeometryCollection:
		gc := geom.NewGeometryCollection()
		for _, c := range v.Components() {
			child, err := toGeom(c)
			if err != nil {
				return nil, err
			}
			if err := gc.Push(child); err != nil {
				return nil, eris.Wrap(err, "geomconv: push geometry")
			}
		}
		return gc, nil

	default:
		return nil, geo.Unimplemented("EWKB export", g.Type())
	}
}

func toPolygon(p *geo.Polygon) (*geom.Polygon, error) {
	poly := geom.NewPolygon(geom.XY)
	for _, r := range p.Components() {
		ring := geom.NewLinearRingFlat(geom.XY, flatCoords(geo.Points(r)))
		if err := poly.Push(ring); err != nil {
			return nil, eris.Wrap(err, "geomconv: push ring")
		}
	}
	return poly, nil
}

func flatCoords(points []*geo.Point) []float64 {
	flat := make([]float64, 0, 2*len(points))
	for _, p := range points {
		flat = append(flat, p.Lon(), p.Lat())
	}
	return flat
}

// FromGeom converts a go-geom geometry into the model, keeping X and Y of
// every coordinate and dropping Z and M. Collections nested deeper than
// decoder.DefaultMaxDepth are rejected.
func FromGeom(t geom.T) (geo.Geometry, error) {
	return fromGeom(t, 1, decoder.DefaultMaxDepth)
}

func fromGeom(t geom.T, depth, maxDepth int) (geo.Geometry, error) {
	if depth > maxDepth {
		return nil, geo.Malformed("nesting deeper than %d levels", maxDepth)
	}

	switch v := t.(type) {
	case *geom.Point:
		return fromPoint(v)

	case *geom.LineString:
		points, err := fromCoords(v.Coords())
		if err != nil {
			return nil, err
		}
		return toGeometry(geo.NewLineString(points))

	case *geom.LinearRing:
		points, err := fromCoords(v.Coords())
		if err != nil {
			return nil, err
		}
		return toGeometry(geo.NewLinearRing(points))

	case *geom.Polygon:
		return toGeometry(fromPolygon(v))

	case *geom.MultiPoint:
		points := make([]*geo.Point, 0, v.NumPoints())
		for i := range v.NumPoints() {
			p, err := fromPoint(v.Point(i))
			if err != nil {
				return nil, err
			}
			points = append(points, p)
		}
		return toGeometry(geo.NewMultiPoint(points))

	case *geom.MultiLineString:
		lines := make([]*geo.LineString, 0, v.NumLineStrings())
		for i := range v.NumLineStrings() {
			points, err := fromCoords(v.LineString(i).Coords())
			if err != nil {
				return nil, err
			}
			line, err := geo.NewLineString(points)
			if err != nil {
				return nil, err
			}
			lines = append(lines, line)
		}
		return toGeometry(geo.NewMultiLineString(lines))

	case *geom.MultiPolygon:
		polygons := make([]*geo.Polygon, 0, v.NumPolygons())
		for i := range v.NumPolygons() {
			poly, err := fromPolygon(v.Polygon(i))
			if err != nil {
				return nil, err
			}
			polygons = append(polygons, poly)
		}
		return toGeometry(geo.NewMultiPolygon(polygons))

	case *geom.GeometryCollection:
		children := make([]geo.Geometry, 0, v.NumGeoms())
		for _, c := range v.Geoms() {
			child, err := fromGeom(c, depth+1, maxDepth)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return toGeometry(geo.NewGeometryCollection(children))

	default:
		return nil, geo.Malformed("unsupported go-geom type %T", t)
	}
}

func fromPoint(p *geom.Point) (*geo.Point, error) {
	if p.Empty() {
		return nil, geo.Malformed("empty point cannot be represented")
	}
	return geo.NewPoint(p.X(), p.Y())
}

func fromCoords(coords []geom.Coord) ([]*geo.Point, error) {
	points := make([]*geo.Point, 0, len(coords))
	for _, c := range coords {
		p, err := geo.NewPoint(c.X(), c.Y())
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

func fromPolygon(p *geom.Polygon) (*geo.Polygon, error) {
	rings := make([]*geo.LinearRing, 0, p.NumLinearRings())
	for i := range p.NumLinearRings() {
		points, err := fromCoords(p.LinearRing(i).Coords())
		if err != nil {
			return nil, err
		}
		ring, err := geo.NewLinearRing(points)
		if err != nil {
			return nil, err
		}
		rings = append(rings, ring)
	}
	return geo.NewPolygon(rings)
}

func limit(maxDepth int) int {
	if maxDepth <= 0 {
		return decoder.DefaultMaxDepth
	}
	return maxDepth
}

func toGeometry(g geo.Geometry, err error) (geo.Geometry, error) {
	if err != nil {
		return nil, err
	}
	return g, nil
}
