package geo

import "encoding/json"

// GeoJSONFeatureCollection represents a collection of geographic features.
// It follows the standard GeoJSON structure.
type GeoJSONFeatureCollection struct {
	Type     string           `json:"type" yaml:"type"`
	Features []GeoJSONFeature `json:"features" yaml:"features"`
}

// GeoJSONFeature represents a single feature wrapping one geometry.
type GeoJSONFeature struct {
	Type       string         `json:"type" yaml:"type"`
	Geometry   any            `json:"geometry" yaml:"geometry"`
	Properties map[string]any `json:"properties" yaml:"properties"`
}

// GeoJSONGeometry represents a coordinate-bearing geometry object.
type GeoJSONGeometry struct {
	Type        string `json:"type" yaml:"type"`
	Coordinates any    `json:"coordinates" yaml:"coordinates"`
}

// GeoJSONGeometryCollection represents a GeometryCollection object, whose
// members keep their own type.
type GeoJSONGeometryCollection struct {
	Type       string `json:"type" yaml:"type"`
	Geometries []any  `json:"geometries" yaml:"geometries"`
}

// NewFeatureCollection wraps each geometry in a Feature with empty properties.
func NewFeatureCollection(geoms []Geometry) GeoJSONFeatureCollection {
	fc := GeoJSONFeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]GeoJSONFeature, 0, len(geoms)),
	}
	for _, g := range geoms {
		fc.Features = append(fc.Features, GeoJSONFeature{
			Type:       "Feature",
			Geometry:   g.geoJSON(),
			Properties: map[string]any{},
		})
	}
	return fc
}

// ToGeoJSON renders {"type":"Point","coordinates":[lon,lat]}.
func (p *Point) ToGeoJSON() (string, error) {
	return marshalGeoJSON(p.geoJSON())
}

func (p *Point) geoJSON() any {
	return GeoJSONGeometry{Type: TypePoint.String(), Coordinates: p.coordinates()}
}

func (p *Point) coordinates() []float64 {
	return []float64{p.lon, p.lat}
}

// ToGeoJSON renders the type name and the nested coordinate arrays.
func (c *collection) ToGeoJSON() (string, error) {
	return marshalGeoJSON(c.geoJSON())
}

func (c *collection) geoJSON() any {
	if c.typ == TypeGeometryCollection {
		members := make([]any, len(c.components))
		for i, child := range c.components {
			members[i] = child.geoJSON()
		}
		return GeoJSONGeometryCollection{Type: c.typ.String(), Geometries: members}
	}
	return GeoJSONGeometry{Type: c.typ.String(), Coordinates: c.coordinates()}
}

func (c *collection) coordinates() []any {
	out := make([]any, len(c.components))
	for i, child := range c.components {
		switch v := child.(type) {
		case *Point:
			out[i] = v.coordinates()
		case interface{ coordinates() []any }:
			out[i] = v.coordinates()
		}
	}
	return out
}

func marshalGeoJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
