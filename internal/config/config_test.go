package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woozymasta/geoconv/internal/convert"
	"github.com/woozymasta/geoconv/internal/geo"
)

const sample = `
max_depth: 32
defaults:
  to: geojson
  out_dir: out
  minify: true
jobs:
  - name: parcels
    source: data/parcels.kml
    from: kml
  - name: track
    source: https://example.com/track.gpx
    to: wkb
    hex: true
    minify: false
  - name: marker
    inline: POINT(30 10)
    to: gpx
    gpx_mode: wpt
    output: marker.gpx
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, 32, cfg.MaxDepth)
	require.Len(t, cfg.Jobs, 3)

	parcels := cfg.Jobs[0]
	assert.Equal(t, "kml", parcels.From)
	assert.Equal(t, "geojson", parcels.To)
	assert.Equal(t, filepath.Join("out", "parcels.geojson"), parcels.Output)
	assert.Equal(t, convert.Options{Minify: true}, parcels.Options())

	track := cfg.Jobs[1]
	assert.Empty(t, track.From)
	assert.Equal(t, filepath.Join("out", "track.wkb.hex"), track.Output)
	assert.Equal(t, convert.Options{Hex: true}, track.Options())

	marker := cfg.Jobs[2]
	assert.Equal(t, "POINT(30 10)", marker.Inline)
	assert.Equal(t, "marker.gpx", marker.Output)
	assert.Equal(t, geo.GPXWaypoint, marker.Options().GPXMode)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":       "jobs: [",
		"no name":        "jobs:\n  - source: a.wkt\n    to: kml\n",
		"duplicate":      "jobs:\n  - {name: a, source: a.wkt, to: kml}\n  - {name: a, source: b.wkt, to: kml}\n",
		"no source":      "jobs:\n  - {name: a, to: kml}\n",
		"source+inline":  "jobs:\n  - {name: a, source: a.wkt, inline: 'POINT(1 2)', to: kml}\n",
		"unknown to":     "jobs:\n  - {name: a, source: a.wkt, to: shp}\n",
		"missing to":     "jobs:\n  - {name: a, source: a.wkt}\n",
		"unknown from":   "jobs:\n  - {name: a, source: a.wkt, from: dxf, to: kml}\n",
		"negative depth": "max_depth: -1\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Jobs, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.Jobs)
	assert.Zero(t, cfg.MaxDepth)
}
