package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPoint(t *testing.T, lon, lat float64) *Point {
	t.Helper()
	p, err := NewPoint(lon, lat)
	require.NoError(t, err)
	return p
}

func mustRing(t *testing.T, coords ...float64) *LinearRing {
	t.Helper()
	r, err := NewLinearRing(points(t, coords...))
	require.NoError(t, err)
	return r
}

func mustLine(t *testing.T, coords ...float64) *LineString {
	t.Helper()
	l, err := NewLineString(points(t, coords...))
	require.NoError(t, err)
	return l
}

func points(t *testing.T, coords ...float64) []*Point {
	t.Helper()
	require.Zero(t, len(coords)%2, "coordinates come in pairs")
	out := make([]*Point, 0, len(coords)/2)
	for i := 0; i < len(coords); i += 2 {
		out = append(out, mustPoint(t, coords[i], coords[i+1]))
	}
	return out
}

func TestNewPoint_InRange(t *testing.T) {
	cases := [][2]float64{
		{0, 0},
		{-180, -90},
		{180, 90},
		{12.5, -3.25},
		{-179.999999, 89.999999},
	}
	for _, c := range cases {
		p, err := NewPoint(c[0], c[1])
		require.NoError(t, err)
		assert.Equal(t, c[0], p.Lon())
		assert.Equal(t, c[1], p.Lat())
		assert.Equal(t, TypePoint, p.Type())
		assert.Nil(t, p.Components())
		assert.Zero(t, p.NumGeometries())
	}
}

func TestNewPoint_OutOfRange(t *testing.T) {
	cases := []struct {
		name     string
		lon, lat float64
	}{
		{"lon too small", -180.0001, 0},
		{"lon too large", 181, 0},
		{"lat too small", 0, -90.5},
		{"lat too large", 0, 91},
		{"lon NaN", math.NaN(), 0},
		{"lat NaN", 0, math.NaN()},
		{"lon inf", math.Inf(1), 0},
		{"lat -inf", 0, math.Inf(-1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPoint(tc.lon, tc.lat)
			assert.Nil(t, p)
			require.ErrorIs(t, err, ErrOutOfRange)
			assert.NotErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestNewPoint_ReportsValue(t *testing.T) {
	_, err := NewPoint(200, 0)
	var ge *Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, 200.0, ge.Value)
	assert.Contains(t, err.Error(), "longitude")
}

func TestNewPolygon_RequiresOuterBoundary(t *testing.T) {
	_, err := NewPolygon(nil)
	require.ErrorIs(t, err, ErrInvalidFeature)

	poly, err := NewPolygon([]*LinearRing{
		mustRing(t, 0, 0, 10, 0, 10, 10, 0, 0),
		mustRing(t, 1, 1, 2, 1, 2, 2, 1, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, poly.NumGeometries())
	assert.Equal(t, TypeLinearRing, poly.Components()[0].Type())
}

func TestCollections_RejectNilComponent(t *testing.T) {
	_, err := NewLineString([]*Point{mustPoint(t, 1, 2), nil})
	require.ErrorIs(t, err, ErrInvalidFeature)

	_, err = NewGeometryCollection([]Geometry{nil})
	require.ErrorIs(t, err, ErrInvalidFeature)

	var nilLine *LineString
	_, err = NewGeometryCollection([]Geometry{nilLine})
	require.ErrorIs(t, err, ErrInvalidFeature)
}

func TestComponents_ReturnsCopy(t *testing.T) {
	line := mustLine(t, 1, 1, 2, 2)
	comps := line.Components()
	comps[0] = mustPoint(t, 50, 50)

	assert.True(t, line.Components()[0].Equal(mustPoint(t, 1, 1)))
}

func TestConstructors_CopyInput(t *testing.T) {
	pts := points(t, 1, 1, 2, 2)
	line, err := NewLineString(pts)
	require.NoError(t, err)

	pts[0] = mustPoint(t, 9, 9)
	assert.Equal(t, 1.0, Points(line)[0].Lon())
}

func TestEqual(t *testing.T) {
	a := mustPoint(t, 30, 10)
	assert.True(t, a.Equal(mustPoint(t, 30, 10)))
	assert.False(t, a.Equal(mustPoint(t, 30, 10.0000001)))
	assert.False(t, a.Equal(nil))

	mp, err := NewMultiPoint([]*Point{a})
	require.NoError(t, err)
	assert.False(t, a.Equal(mp))

	line := mustLine(t, 1, 1, 2, 2)
	ring := mustRing(t, 1, 1, 2, 2)
	assert.True(t, line.Equal(mustLine(t, 1, 1, 2, 2)))
	assert.False(t, line.Equal(mustLine(t, 2, 2, 1, 1)), "order matters")
	assert.False(t, line.Equal(ring), "same points, different type")
	assert.False(t, line.Equal(mustLine(t, 1, 1)))
}

func TestTypeNames(t *testing.T) {
	names := map[Type]string{
		TypePoint:              "Point",
		TypeLineString:         "LineString",
		TypeLinearRing:         "LinearRing",
		TypePolygon:            "Polygon",
		TypeMultiPoint:         "MultiPoint",
		TypeMultiLineString:    "MultiLineString",
		TypeMultiPolygon:       "MultiPolygon",
		TypeGeometryCollection: "GeometryCollection",
	}
	for typ, name := range names {
		assert.Equal(t, name, typ.String())
	}
	assert.Equal(t, "Unknown", Type(0).String())
}
