package decoder

import (
	"github.com/tidwall/gjson"

	"github.com/woozymasta/geoconv/internal/geo"
)

const formatGeoJSON = "geojson"

// GeoJSON decodes geometry objects, Features and FeatureCollections. A
// Feature with a null geometry contributes nothing.
type GeoJSON struct {
	MaxDepth int
}

// Format returns "geojson".
func (GeoJSON) Format() string { return formatGeoJSON }

// Decode parses one GeoJSON object.
func (d GeoJSON) Decode(data []byte) ([]geo.Geometry, error) {
	if !gjson.ValidBytes(data) {
		return nil, geo.Tag(formatGeoJSON, geo.Malformed("invalid JSON"))
	}

	p := geojsonParser{maxDepth: limit(d.MaxDepth)}
	geoms, err := p.objects(gjson.ParseBytes(data), 1)
	if err != nil {
		return nil, geo.Tag(formatGeoJSON, err)
	}
	return geoms, nil
}

type geojsonParser struct {
	maxDepth int
}

func geojsonKind(typ string) nodeKind {
	switch typ {
	case "FeatureCollection", "Feature":
		return nodeContainer
	case "Point":
		return nodePoint
	case "LineString":
		return nodeLineString
	case "Polygon":
		return nodePolygon
	case "MultiPoint", "MultiLineString", "MultiPolygon":
		return nodeTypedMulti
	case "GeometryCollection":
		return nodeMulti
	default:
		return nodeUnknown
	}
}

func (p geojsonParser) objects(obj gjson.Result, depth int) ([]geo.Geometry, error) {
	if depth > p.maxDepth {
		return nil, tooDeep(p.maxDepth)
	}
	if !obj.IsObject() {
		return nil, geo.Malformed("expected object, got %s", obj.Type)
	}

	switch typ := obj.Get("type").String(); typ {
	case "FeatureCollection":
		features := obj.Get("features")
		if !features.IsArray() {
			return nil, geo.Malformed("FeatureCollection needs a features array")
		}
		var out []geo.Geometry
		for _, f := range features.Array() {
			geoms, err := p.objects(f, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, geoms...)
		}
		return out, nil

	case "Feature":
		g := obj.Get("geometry")
		if !g.Exists() || g.Type == gjson.Null {
			return nil, nil
		}
		return single(p.geometry(g, depth+1))

	default:
		return single(p.geometry(obj, depth))
	}
}

func (p geojsonParser) geometry(obj gjson.Result, depth int) (geo.Geometry, error) {
	if depth > p.maxDepth {
		return nil, tooDeep(p.maxDepth)
	}
	if !obj.IsObject() {
		return nil, geo.Malformed("expected geometry object, got %s", obj.Type)
	}

	typ := obj.Get("type").String()
	kind := geojsonKind(typ)

	if kind == nodeMulti {
		members := obj.Get("geometries")
		if !members.IsArray() {
			return nil, geo.Malformed("GeometryCollection needs a geometries array")
		}
		var components []geo.Geometry
		for _, m := range members.Array() {
			g, err := p.geometry(m, depth+1)
			if err != nil {
				return nil, err
			}
			components = append(components, g)
		}
		return geo.ResolveMulti(components)
	}

	coords := obj.Get("coordinates")
	if kind != nodeUnknown && kind != nodeContainer && !coords.IsArray() {
		return nil, geo.Malformed("%s needs a coordinates array", typ)
	}

	switch kind {
	case nodePoint:
		return toGeometry(geojsonPosition(coords))

	case nodeLineString:
		points, err := geojsonPositions(coords)
		if err != nil {
			return nil, err
		}
		return toGeometry(geo.NewLineString(points))

	case nodePolygon:
		return toGeometry(geojsonPolygon(coords))

	case nodeTypedMulti:
		return geojsonMulti(typ, coords)

	default:
		return nil, geo.Malformed("unsupported geometry type %q", clip(typ))
	}
}

// geojsonMulti builds the explicitly typed Multi* geometries.
func geojsonMulti(typ string, coords gjson.Result) (geo.Geometry, error) {
	switch typ {
	case "MultiPoint":
		points, err := geojsonPositions(coords)
		if err != nil {
			return nil, err
		}
		return toGeometry(geo.NewMultiPoint(points))

	case "MultiLineString":
		members := coords.Array()
		lines := make([]*geo.LineString, 0, len(members))
		for _, m := range members {
			points, err := geojsonPositions(m)
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

	default:
		members := coords.Array()
		polygons := make([]*geo.Polygon, 0, len(members))
		for _, m := range members {
			poly, err := geojsonPolygon(m)
			if err != nil {
				return nil, err
			}
			polygons = append(polygons, poly)
		}
		return toGeometry(geo.NewMultiPolygon(polygons))
	}
}

func geojsonPolygon(coords gjson.Result) (*geo.Polygon, error) {
	if !coords.IsArray() {
		return nil, geo.Malformed("polygon coordinates must be an array")
	}
	members := coords.Array()
	rings := make([]*geo.LinearRing, 0, len(members))
	for _, m := range members {
		points, err := geojsonPositions(m)
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

func geojsonPositions(coords gjson.Result) ([]*geo.Point, error) {
	if !coords.IsArray() {
		return nil, geo.Malformed("expected an array of positions, got %s", coords.Type)
	}
	members := coords.Array()
	points := make([]*geo.Point, 0, len(members))
	for _, m := range members {
		p, err := geojsonPosition(m)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

// geojsonPosition reads [lon, lat, ...]; extra ordinates are ignored.
func geojsonPosition(pos gjson.Result) (*geo.Point, error) {
	if !pos.IsArray() {
		return nil, geo.Malformed("position must be an array, got %s", pos.Type)
	}
	values := pos.Array()
	for _, v := range values {
		if v.Type != gjson.Number {
			return nil, geo.Malformed("invalid coordinate %s", clip(v.Raw))
		}
	}
	if len(values) < 2 {
		return nil, geo.InvalidFeature("position needs two coordinates, got %d", len(values))
	}
	return geo.NewPoint(values[0].Float(), values[1].Float())
}
