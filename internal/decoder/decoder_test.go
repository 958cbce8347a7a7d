package decoder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woozymasta/geoconv/internal/geo"
)

func decodeOne(t *testing.T, d Decoder, input string) geo.Geometry {
	t.Helper()
	geoms, err := d.Decode([]byte(input))
	require.NoError(t, err)
	require.Len(t, geoms, 1)
	return geoms[0]
}

func requireKind(t *testing.T, err error, kind geo.Kind, format string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, &geo.Error{Kind: kind, Format: format}, "got %v", err)
}

func point(t *testing.T, lon, lat float64) *geo.Point {
	t.Helper()
	p, err := geo.NewPoint(lon, lat)
	require.NoError(t, err)
	return p
}

func TestParsePosition(t *testing.T) {
	p, err := parsePosition([]string{" 30", "10 ", "120"})
	require.NoError(t, err)
	assert.True(t, p.Equal(point(t, 30, 10)))

	_, err = parsePosition([]string{"30"})
	assert.ErrorIs(t, err, geo.ErrInvalidFeature)

	_, err = parsePosition([]string{"30", "north"})
	assert.ErrorIs(t, err, geo.ErrMalformed)

	_, err = parsePosition([]string{"30", "95"})
	assert.ErrorIs(t, err, geo.ErrOutOfRange)
}

func TestLimit(t *testing.T) {
	assert.Equal(t, DefaultMaxDepth, limit(0))
	assert.Equal(t, DefaultMaxDepth, limit(-1))
	assert.Equal(t, 5, limit(5))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short"))

	long := strings.Repeat("a", maxEcho+10)
	assert.Equal(t, long[:maxEcho]+"...", clip(long))
}

func TestDecoderFormats(t *testing.T) {
	decoders := map[string]Decoder{
		"kml":     KML{},
		"wkt":     WKT{},
		"geojson": GeoJSON{},
		"gpx":     GPX{},
		"wkb":     WKB{},
	}
	for name, d := range decoders {
		assert.Equal(t, name, d.Format())
	}
}
