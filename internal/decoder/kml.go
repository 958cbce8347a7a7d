package decoder

import (
	"strings"

	"github.com/woozymasta/geoconv/internal/geo"
)

const formatKML = "kml"

// KML decodes KML geometry elements. Document, Folder and Placemark
// wrappers are unwrapped and their feature metadata is ignored.
type KML struct {
	MaxDepth int
}

// Format returns "kml".
func (KML) Format() string { return formatKML }

// Decode parses a KML document and returns every geometry it holds, in
// document order.
func (d KML) Decode(data []byte) ([]geo.Geometry, error) {
	root, err := parseXML(data, limit(d.MaxDepth))
	if err != nil {
		return nil, geo.Tag(formatKML, err)
	}

	geoms, err := kmlGeometries(root)
	if err != nil {
		return nil, geo.Tag(formatKML, err)
	}
	return geoms, nil
}

func kmlKind(name string) nodeKind {
	switch name {
	case "kml", "document", "folder", "placemark":
		return nodeContainer
	case "point":
		return nodePoint
	case "linestring":
		return nodeLineString
	case "linearring":
		return nodeLinearRing
	case "polygon":
		return nodePolygon
	case "multigeometry":
		return nodeMulti
	case "name", "description", "visibility", "open", "snippet", "address",
		"phonenumber", "styleurl", "style", "stylemap", "extendeddata",
		"timestamp", "timespan", "lookat", "camera", "region",
		"author", "link", "schema", "networklinkcontrol":
		return nodeMetadata
	default:
		return nodeUnknown
	}
}

func kmlGeometries(el *element) ([]geo.Geometry, error) {
	if kmlKind(el.name) != nodeContainer {
		return single(kmlGeometry(el))
	}

	var out []geo.Geometry
	for _, child := range el.children {
		if kmlKind(child.name) == nodeMetadata {
			continue
		}
		geoms, err := kmlGeometries(child)
		if err != nil {
			return nil, err
		}
		out = append(out, geoms...)
	}
	return out, nil
}

func kmlGeometry(el *element) (geo.Geometry, error) {
	switch kmlKind(el.name) {
	case nodePoint:
		return toGeometry(kmlPoint(el))

	case nodeLineString:
		points, err := kmlPoints(el)
		if err != nil {
			return nil, err
		}
		return toGeometry(geo.NewLineString(points))

	case nodeLinearRing:
		return toGeometry(kmlRing(el))

	case nodePolygon:
		return toGeometry(kmlPolygon(el))

	case nodeMulti:
		components := make([]geo.Geometry, 0, len(el.children))
		for _, child := range el.children {
			g, err := kmlGeometry(child)
			if err != nil {
				return nil, err
			}
			components = append(components, g)
		}
		return geo.ResolveMulti(components)

	default:
		return nil, geo.Malformed("unsupported element <%s>", clip(el.name))
	}
}

// kmlCoordinates returns the payload of the single coordinates child.
func kmlCoordinates(el *element) (string, error) {
	coords := el.childrenNamed("coordinates")
	if len(coords) != 1 {
		return "", geo.Malformed("<%s> needs exactly one <coordinates>, got %d", el.name, len(coords))
	}
	return strings.TrimSpace(string(coords[0].text)), nil
}

func kmlPoint(el *element) (*geo.Point, error) {
	text, err := kmlCoordinates(el)
	if err != nil {
		return nil, err
	}
	return parsePosition(strings.Split(text, ","))
}

func kmlPoints(el *element) ([]*geo.Point, error) {
	text, err := kmlCoordinates(el)
	if err != nil {
		return nil, err
	}

	// empty coordinates give an empty path, as written for LINESTRING EMPTY
	tuples := strings.Fields(text)
	points := make([]*geo.Point, 0, len(tuples))
	for _, tuple := range tuples {
		p, err := parsePosition(strings.Split(tuple, ","))
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

func kmlRing(el *element) (*geo.LinearRing, error) {
	points, err := kmlPoints(el)
	if err != nil {
		return nil, err
	}
	return geo.NewLinearRing(points)
}

// kmlPolygon requires exactly one LinearRing across the outerBoundaryIs
// elements; each innerBoundaryIs ring becomes a hole in document order.
func kmlPolygon(el *element) (*geo.Polygon, error) {
	var outer, inner []*element
	for _, child := range el.children {
		switch child.name {
		case "outerboundaryis":
			outer = append(outer, child.childrenNamed("linearring")...)
		case "innerboundaryis":
			inner = append(inner, child.childrenNamed("linearring")...)
		}
	}

	switch len(outer) {
	case 0:
		return nil, geo.InvalidFeature("polygon has no outer boundary")
	case 1:
	default:
		return nil, geo.Malformed("polygon needs exactly one outer boundary ring, got %d", len(outer))
	}

	rings := make([]*geo.LinearRing, 0, 1+len(inner))
	for _, r := range append(outer, inner...) {
		ring, err := kmlRing(r)
		if err != nil {
			return nil, err
		}
		rings = append(rings, ring)
	}
	return geo.NewPolygon(rings)
}
