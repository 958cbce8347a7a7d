package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woozymasta/geoconv/internal/geo"
)

const sampleGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <metadata><name>ride</name><time>2024-05-01T10:00:00Z</time></metadata>
  <wpt lat="10" lon="30"><ele>120</ele><name>start</name></wpt>
  <rte>
    <name>r</name>
    <rtept lat="1" lon="2"/>
    <rtept lat="3" lon="4"/>
  </rte>
  <trk>
    <name>t</name>
    <trkseg>
      <trkpt lat="1" lon="1"><ele>5</ele></trkpt>
      <trkpt lat="2" lon="2"/>
    </trkseg>
  </trk>
  <trk>
    <trkseg><trkpt lat="1" lon="1"/><trkpt lat="2" lon="2"/></trkseg>
    <trkseg><trkpt lat="3" lon="3"/><trkpt lat="4" lon="4"/></trkseg>
  </trk>
</gpx>`

func TestGPX_Document(t *testing.T) {
	geoms, err := GPX{}.Decode([]byte(sampleGPX))
	require.NoError(t, err)
	require.Len(t, geoms, 4)

	assert.Equal(t, "POINT(30 10)", geoms[0].ToWKT())
	assert.Equal(t, "LINESTRING(2 1,4 3)", geoms[1].ToWKT())
	assert.Equal(t, "MULTILINESTRING((1 1,2 2))", geoms[2].ToWKT())
	assert.Equal(t, "MULTILINESTRING((1 1,2 2),(3 3,4 4))", geoms[3].ToWKT())
}

func TestGPX_WaypointRoundTrip(t *testing.T) {
	p := point(t, 12.5, -3.25)
	out, err := p.ToGPX(geo.GPXWaypoint)
	require.NoError(t, err)

	back := decodeOne(t, GPX{}, out)
	assert.True(t, p.Equal(back))
}

func TestGPX_Errors(t *testing.T) {
	cases := []struct {
		name  string
		input string
		kind  geo.Kind
	}{
		{"missing lat", `<wpt lon="1"/>`, geo.KindMalformed},
		{"bad number", `<wpt lon="1" lat="north"/>`, geo.KindMalformed},
		{"out of range", `<wpt lon="181" lat="0"/>`, geo.KindOutOfRange},
		{"unknown element", `<gpx><foo/></gpx>`, geo.KindMalformed},
		{"bad route point", `<rte><rtept lat="1"/></rte>`, geo.KindMalformed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := GPX{}.Decode([]byte(tc.input))
			requireKind(t, err, tc.kind, "gpx")
		})
	}
}

func TestGPX_Charset(t *testing.T) {
	input := "<?xml version=\"1.0\" encoding=\"windows-1251\"?>\n" +
		"<gpx><wpt lat=\"55.75\" lon=\"37.62\"><name>\xcc\xee\xf1\xea\xe2\xe0</name></wpt></gpx>"

	g := decodeOne(t, GPX{}, input)
	assert.Equal(t, "POINT(37.62 55.75)", g.ToWKT())
}
