package convert

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/xml"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/woozymasta/geoconv/internal/decoder"
	"github.com/woozymasta/geoconv/internal/geo"
)

// Format names a supported interchange format.
type Format string

const (
	FormatWKT     Format = "wkt"
	FormatKML     Format = "kml"
	FormatGeoJSON Format = "geojson"
	FormatGPX     Format = "gpx"
	FormatWKB     Format = "wkb"
	FormatEWKB    Format = "ewkb"
)

// Formats lists every format in a stable order.
var Formats = []Format{FormatWKT, FormatKML, FormatGeoJSON, FormatGPX, FormatWKB, FormatEWKB}

// ErrUnknownFormat is returned for names outside Formats.
var ErrUnknownFormat = eris.New("unknown format")

// ewkbSRIDFlag marks an EWKB type code carrying an SRID.
const ewkbSRIDFlag = 0x20000000

// ParseFormat accepts a format name case-insensitively, along with the
// common file extensions "json" and "hex".
func ParseFormat(name string) (Format, error) {
	switch n := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")); n {
	case "json":
		return FormatGeoJSON, nil
	case "hex":
		return FormatWKB, nil
	default:
		for _, f := range Formats {
			if string(f) == n {
				return f, nil
			}
		}
	}
	return "", eris.Wrapf(ErrUnknownFormat, "%q", name)
}

// Binary reports whether the format produces bytes rather than text.
func (f Format) Binary() bool {
	return f == FormatWKB || f == FormatEWKB
}

// Ext returns the file extension used for converted output.
func (f Format) Ext(hexOutput bool) string {
	if f.Binary() && hexOutput {
		return "." + string(f) + ".hex"
	}
	return "." + string(f)
}

// ContentType returns the media type served for the format.
func (f Format) ContentType(hexOutput bool) string {
	switch f {
	case FormatKML:
		return "application/vnd.google-earth.kml+xml"
	case FormatGeoJSON:
		return "application/geo+json"
	case FormatGPX:
		return "application/gpx+xml"
	case FormatWKB, FormatEWKB:
		if hexOutput {
			return "text/plain; charset=utf-8"
		}
		return "application/octet-stream"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Sniff guesses the format of data from its first bytes: markup is KML or
// GPX depending on the root element, an object is GeoJSON, a byte-order
// marker or a run of hex digits is WKB or EWKB, anything else is WKT.
func Sniff(data []byte) (Format, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if len(trimmed) == 0 {
		return "", geo.Malformed("empty input")
	}

	switch c := trimmed[0]; {
	case c == '<':
		return sniffXML(trimmed), nil
	case c == '{':
		return FormatGeoJSON, nil
	case c <= 0x01:
		return sniffWKB(trimmed), nil
	case isHex(trimmed):
		raw := make([]byte, min(len(trimmed), 18)/2)
		if _, err := hex.Decode(raw, trimmed[:2*len(raw)]); err != nil {
			return FormatWKB, nil
		}
		return sniffWKB(raw), nil
	default:
		return FormatWKT, nil
	}
}

// sniffXML reads tokens up to the root element. Bare waypoints, routes and
// tracks count as GPX.
func sniffXML(data []byte) Format {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = decoder.CharsetReader
	for {
		tok, err := dec.Token()
		if err != nil {
			return FormatKML
		}
		if start, ok := tok.(xml.StartElement); ok {
			switch strings.ToLower(start.Name.Local) {
			case "gpx", "wpt", "rte", "trk":
				return FormatGPX
			default:
				return FormatKML
			}
		}
	}
}

// sniffWKB tells EWKB from WKB by the SRID flag of the root type code.
func sniffWKB(raw []byte) Format {
	if len(raw) < 5 {
		return FormatWKB
	}

	var order binary.ByteOrder = binary.LittleEndian
	if raw[0] == geo.WKBBigEndian {
		order = binary.BigEndian
	}
	if order.Uint32(raw[1:5])&ewkbSRIDFlag != 0 {
		return FormatEWKB
	}
	return FormatWKB
}

func isHex(data []byte) bool {
	for _, c := range data {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
