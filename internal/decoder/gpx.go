package decoder

import (
	"github.com/woozymasta/geoconv/internal/geo"
)

const formatGPX = "gpx"

// GPX decodes waypoints, routes and tracks. A waypoint becomes a Point, a
// route or track segment a LineString, and a track the resolved collection
// of its segments.
type GPX struct {
	MaxDepth int
}

// Format returns "gpx".
func (GPX) Format() string { return formatGPX }

// Decode parses a GPX document in document order.
func (d GPX) Decode(data []byte) ([]geo.Geometry, error) {
	root, err := parseXML(data, limit(d.MaxDepth))
	if err != nil {
		return nil, geo.Tag(formatGPX, err)
	}

	geoms, err := gpxGeometries(root)
	if err != nil {
		return nil, geo.Tag(formatGPX, err)
	}
	return geoms, nil
}

func gpxKind(name string) nodeKind {
	switch name {
	case "gpx":
		return nodeContainer
	case "wpt":
		return nodePoint
	case "rte", "trkseg":
		return nodeLineString
	case "trk":
		return nodeMulti
	case "metadata", "extensions", "name", "desc", "author", "copyright",
		"link", "time", "keywords", "bounds":
		return nodeMetadata
	default:
		return nodeUnknown
	}
}

func gpxGeometries(el *element) ([]geo.Geometry, error) {
	if gpxKind(el.name) != nodeContainer {
		return single(gpxGeometry(el))
	}

	var out []geo.Geometry
	for _, child := range el.children {
		if gpxKind(child.name) == nodeMetadata {
			continue
		}
		geoms, err := gpxGeometries(child)
		if err != nil {
			return nil, err
		}
		out = append(out, geoms...)
	}
	return out, nil
}

func gpxGeometry(el *element) (geo.Geometry, error) {
	switch gpxKind(el.name) {
	case nodePoint:
		return toGeometry(gpxPoint(el))

	case nodeLineString:
		return toGeometry(gpxPath(el))

	case nodeMulti:
		segments := el.childrenNamed("trkseg")
		components := make([]geo.Geometry, 0, len(segments))
		for _, seg := range segments {
			line, err := gpxPath(seg)
			if err != nil {
				return nil, err
			}
			components = append(components, line)
		}
		return geo.ResolveMulti(components)

	default:
		return nil, geo.Malformed("unsupported element <%s>", clip(el.name))
	}
}

// gpxPoint reads the lon and lat attributes of a wpt, rtept or trkpt.
func gpxPoint(el *element) (*geo.Point, error) {
	lon, okLon := el.attrs["lon"]
	lat, okLat := el.attrs["lat"]
	if !okLon || !okLat {
		return nil, geo.Malformed("<%s> needs lon and lat attributes", el.name)
	}
	return parsePosition([]string{lon, lat})
}

func gpxPath(el *element) (*geo.LineString, error) {
	pointName := "trkpt"
	if el.name == "rte" {
		pointName = "rtept"
	}

	nodes := el.childrenNamed(pointName)
	points := make([]*geo.Point, 0, len(nodes))
	for _, n := range nodes {
		p, err := gpxPoint(n)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return geo.NewLineString(points)
}
