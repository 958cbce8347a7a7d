package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMulti(t *testing.T) {
	poly := func() *Polygon {
		p, err := NewPolygon([]*LinearRing{mustRing(t, 0, 0, 1, 0, 1, 1, 0, 0)})
		require.NoError(t, err)
		return p
	}
	mp, err := NewMultiPoint(points(t, 1, 1))
	require.NoError(t, err)

	cases := []struct {
		name       string
		components []Geometry
		want       Type
	}{
		{"empty", nil, TypeGeometryCollection},
		{"three points", []Geometry{mustPoint(t, 1, 1), mustPoint(t, 2, 2), mustPoint(t, 3, 3)}, TypeMultiPoint},
		{"single point", []Geometry{mustPoint(t, 1, 1)}, TypeMultiPoint},
		{"lines", []Geometry{mustLine(t, 0, 0, 1, 1), mustLine(t, 2, 2, 3, 3)}, TypeMultiLineString},
		{"polygons", []Geometry{poly(), poly()}, TypeMultiPolygon},
		{"point and line", []Geometry{mustPoint(t, 1, 1), mustLine(t, 0, 0, 1, 1)}, TypeGeometryCollection},
		{"mixed tail", []Geometry{mustPoint(t, 1, 1), mustPoint(t, 2, 2), poly()}, TypeGeometryCollection},
		{"nested multis", []Geometry{mp, mp}, TypeGeometryCollection},
		{"rings", []Geometry{mustRing(t, 0, 0, 1, 1), mustRing(t, 0, 0, 1, 1)}, TypeGeometryCollection},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveMulti(tc.components)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Type())
			require.Equal(t, len(tc.components), got.NumGeometries())
			for i, c := range got.Components() {
				assert.Same(t, tc.components[i], c, "children are reused, not re-parsed")
			}
		})
	}
}
