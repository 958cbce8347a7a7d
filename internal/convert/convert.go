// Package convert routes documents between formats: it picks a decoder for
// the input, then renders the decoded roots with the target encoder.
package convert

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/rotisserie/eris"
	"github.com/tdewolff/minify/v2"
	mjson "github.com/tdewolff/minify/v2/json"
	mxml "github.com/tdewolff/minify/v2/xml"

	"github.com/woozymasta/geoconv/internal/decoder"
	"github.com/woozymasta/geoconv/internal/geo"
	"github.com/woozymasta/geoconv/internal/geomconv"
)

const (
	mediaXML  = "text/xml"
	mediaJSON = "application/json"
)

var (
	kmlDocument = template.Must(template.New("kml").Parse(`<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
{{- range .}}
    <Placemark>{{.}}</Placemark>
{{- end}}
  </Document>
</kml>
`))

	gpxDocument = template.Must(template.New("gpx").Parse(`<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="geoconv" xmlns="http://www.topografix.com/GPX/1/1">
{{- range .}}
  {{.}}
{{- end}}
</gpx>
`))
)

// Options control how geometries are rendered.
type Options struct {
	GPXMode  geo.GPXMode
	Hex      bool // WKB and EWKB as lowercase hex text
	Document bool // wrap KML and GPX in a complete XML document
	Minify   bool // minify XML and JSON output
}

// Converter decodes and encodes every Format. The zero value is ready to
// use with the default nesting limit.
type Converter struct {
	MaxDepth int
}

// Decoder returns the decoder for f.
func (c Converter) Decoder(f Format) (decoder.Decoder, error) {
	switch f {
	case FormatWKT:
		return decoder.WKT{MaxDepth: c.MaxDepth}, nil
	case FormatKML:
		return decoder.KML{MaxDepth: c.MaxDepth}, nil
	case FormatGeoJSON:
		return decoder.GeoJSON{MaxDepth: c.MaxDepth}, nil
	case FormatGPX:
		return decoder.GPX{MaxDepth: c.MaxDepth}, nil
	case FormatWKB:
		return decoder.WKB{MaxDepth: c.MaxDepth}, nil
	case FormatEWKB:
		return geomconv.EWKB{MaxDepth: c.MaxDepth}, nil
	default:
		return nil, eris.Wrapf(ErrUnknownFormat, "%q", f)
	}
}

// Decode parses data as f. An empty f sniffs the format first.
func (c Converter) Decode(f Format, data []byte) ([]geo.Geometry, error) {
	if f == "" {
		sniffed, err := Sniff(data)
		if err != nil {
			return nil, err
		}
		f = sniffed
	}

	d, err := c.Decoder(f)
	if err != nil {
		return nil, err
	}
	return d.Decode(data)
}

// Encode renders geoms as f. WKT writes one geometry per line, GeoJSON
// writes a single geometry object or a FeatureCollection for any other
// count, KML and GPX concatenate elements, and WKB and EWKB need exactly
// one geometry.
func (c Converter) Encode(geoms []geo.Geometry, f Format, opts Options) ([]byte, error) {
	out, err := c.encode(geoms, f, opts)
	if err != nil {
		return nil, geo.Tag(string(f), err)
	}

	if opts.Minify {
		switch f {
		case FormatKML, FormatGPX:
			return minifyBytes(mediaXML, out)
		case FormatGeoJSON:
			return minifyBytes(mediaJSON, out)
		}
	}
	return out, nil
}

// Convert decodes data as from and encodes the result as to.
func (c Converter) Convert(from, to Format, data []byte, opts Options) ([]byte, error) {
	geoms, err := c.Decode(from, data)
	if err != nil {
		return nil, err
	}
	return c.Encode(geoms, to, opts)
}

func (c Converter) encode(geoms []geo.Geometry, f Format, opts Options) ([]byte, error) {
	switch f {
	case FormatWKT:
		var b strings.Builder
		for _, g := range geoms {
			b.WriteString(g.ToWKT())
			b.WriteByte('\n')
		}
		return []byte(b.String()), nil

	case FormatGeoJSON:
		if len(geoms) == 1 {
			s, err := geoms[0].ToGeoJSON()
			if err != nil {
				return nil, eris.Wrap(err, "convert: encode GeoJSON")
			}
			return []byte(s), nil
		}
		data, err := json.Marshal(geo.NewFeatureCollection(geoms))
		if err != nil {
			return nil, eris.Wrap(err, "convert: encode FeatureCollection")
		}
		return data, nil

	case FormatKML:
		parts := make([]string, 0, len(geoms))
		for _, g := range geoms {
			parts = append(parts, g.ToKML())
		}
		if opts.Document {
			return render(kmlDocument, parts)
		}
		return []byte(strings.Join(parts, "")), nil

	case FormatGPX:
		parts := make([]string, 0, len(geoms))
		for _, g := range geoms {
			s, err := g.ToGPX(opts.GPXMode)
			if err != nil {
				return nil, err
			}
			parts = append(parts, s)
		}
		if opts.Document {
			return render(gpxDocument, parts)
		}
		return []byte(strings.Join(parts, "")), nil

	case FormatWKB:
		g, err := only(geoms)
		if err != nil {
			return nil, err
		}
		if opts.Hex {
			return []byte(g.ToWKBHex()), nil
		}
		return g.ToWKB(), nil

	case FormatEWKB:
		g, err := only(geoms)
		if err != nil {
			return nil, err
		}
		data, err := geomconv.EWKB{}.Encode(g)
		if err != nil {
			return nil, err
		}
		if opts.Hex {
			return []byte(hex.EncodeToString(data)), nil
		}
		return data, nil

	default:
		return nil, eris.Wrapf(ErrUnknownFormat, "%q", f)
	}
}

func only(geoms []geo.Geometry) (geo.Geometry, error) {
	if len(geoms) != 1 {
		return nil, geo.InvalidFeature("binary output holds exactly one geometry, got %d", len(geoms))
	}
	return geoms[0], nil
}

func render(tmpl *template.Template, parts []string) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, parts); err != nil {
		return nil, eris.Wrapf(err, "convert: render %s document", tmpl.Name())
	}
	return buf.Bytes(), nil
}

func minifyBytes(mediatype string, data []byte) ([]byte, error) {
	m := minify.New()
	m.AddFunc(mediaXML, mxml.Minify)
	m.AddFunc(mediaJSON, mjson.Minify)

	out, err := m.Bytes(mediatype, data)
	if err != nil {
		return nil, eris.Wrapf(err, "convert: minify %s", mediatype)
	}
	return out, nil
}
