package geo

// ResolveMulti classifies already decoded children of a generic container.
// When every child carries the same Point, LineString or Polygon tag the
// matching Multi* type is built over them; everything else, including an
// empty list, becomes a GeometryCollection.
func ResolveMulti(components []Geometry) (Geometry, error) {
	if len(components) == 0 {
		return build(NewGeometryCollection(nil))
	}

	first := components[0].Type()
	for _, c := range components[1:] {
		if c.Type() != first {
			return build(NewGeometryCollection(components))
		}
	}

	switch first {
	case TypePoint:
		return build(NewMultiPoint(as[*Point](components)))
	case TypeLineString:
		return build(NewMultiLineString(as[*LineString](components)))
	case TypePolygon:
		return build(NewMultiPolygon(as[*Polygon](components)))
	default:
		return build(NewGeometryCollection(components))
	}
}

// as narrows components already known to share one concrete type.
func as[T Geometry](components []Geometry) []T {
	out := make([]T, len(components))
	for i, c := range components {
		out[i] = c.(T)
	}
	return out
}

// build avoids returning a typed nil inside the Geometry interface.
func build(g Geometry, err error) (Geometry, error) {
	if err != nil {
		return nil, err
	}
	return g, nil
}
