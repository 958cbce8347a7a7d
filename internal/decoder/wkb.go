package decoder

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"math"

	"github.com/woozymasta/geoconv/internal/geo"
)

const formatWKB = "wkb"

// wkbMinSize is the smallest element (an empty collection), used to reject
// forged counts before allocating.
const wkbMinSize = 1 + 4 + 4

// WKB decodes the nested binary layout written by geo.Geometry.ToWKB, given
// as raw bytes or as hex text. Both byte-order markers are accepted on every
// element. Polygon rings travel as LineStrings and come back as LinearRings.
type WKB struct {
	MaxDepth int
}

// Format returns "wkb".
func (WKB) Format() string { return formatWKB }

// Decode reads exactly one geometry; trailing bytes are an error.
func (d WKB) Decode(data []byte) ([]geo.Geometry, error) {
	raw, err := wkbBytes(data)
	if err != nil {
		return nil, geo.Tag(formatWKB, err)
	}

	r := &wkbReader{buf: raw, maxDepth: limit(d.MaxDepth)}
	g, err := r.geometry(1)
	if err != nil {
		return nil, geo.Tag(formatWKB, err)
	}
	if r.off != len(r.buf) {
		return nil, geo.Tag(formatWKB, geo.Malformed("%d trailing bytes", len(r.buf)-r.off))
	}
	return []geo.Geometry{g}, nil
}

// wkbBytes hex-decodes text input. Raw WKB starts with a 0x00 or 0x01
// marker, never with an ASCII hex digit.
func wkbBytes(data []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, geo.Malformed("empty input")
	}
	if trimmed[0] > 0x01 {
		raw := make([]byte, hex.DecodedLen(len(trimmed)))
		if _, err := hex.Decode(raw, trimmed); err != nil {
			return nil, malformedCause("invalid hex", err)
		}
		return raw, nil
	}
	return data, nil
}

type wkbReader struct {
	buf      []byte
	order    binary.ByteOrder
	off      int
	maxDepth int
}

func (r *wkbReader) geometry(depth int) (geo.Geometry, error) {
	if depth > r.maxDepth {
		return nil, tooDeep(r.maxDepth)
	}

	marker, err := r.readByte()
	if err != nil {
		return nil, err
	}
	switch marker {
	case geo.WKBLittleEndian:
		r.order = binary.LittleEndian
	case geo.WKBBigEndian:
		r.order = binary.BigEndian
	default:
		return nil, geo.Malformed("invalid byte order marker %d at offset %d", marker, r.off-1)
	}

	code, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	typ, ok := geo.TypeFromWKBCode(code)
	if !ok {
		return nil, geo.Malformed("unknown geometry type code %d", code)
	}

	if typ == geo.TypePoint {
		return toGeometry(r.point())
	}

	children, err := r.children(depth)
	if err != nil {
		return nil, err
	}

	switch typ {
	case geo.TypeLineString:
		points, err := childrenOf[*geo.Point](typ, children)
		if err != nil {
			return nil, err
		}
		return toGeometry(geo.NewLineString(points))

	case geo.TypePolygon:
		lines, err := childrenOf[*geo.LineString](typ, children)
		if err != nil {
			return nil, err
		}
		rings := make([]*geo.LinearRing, 0, len(lines))
		for _, l := range lines {
			ring, err := geo.NewLinearRing(geo.Points(l))
			if err != nil {
				return nil, err
			}
			rings = append(rings, ring)
		}
		return toGeometry(geo.NewPolygon(rings))

	case geo.TypeMultiPoint:
		points, err := childrenOf[*geo.Point](typ, children)
		if err != nil {
			return nil, err
		}
		return toGeometry(geo.NewMultiPoint(points))

	case geo.TypeMultiLineString:
		lines, err := childrenOf[*geo.LineString](typ, children)
		if err != nil {
			return nil, err
		}
		return toGeometry(geo.NewMultiLineString(lines))

	case geo.TypeMultiPolygon:
		polygons, err := childrenOf[*geo.Polygon](typ, children)
		if err != nil {
			return nil, err
		}
		return toGeometry(geo.NewMultiPolygon(polygons))

	default:
		return toGeometry(geo.NewGeometryCollection(children))
	}
}

func (r *wkbReader) point() (*geo.Point, error) {
	lon, err := r.readFloat64()
	if err != nil {
		return nil, err
	}
	lat, err := r.readFloat64()
	if err != nil {
		return nil, err
	}
	return geo.NewPoint(lon, lat)
}

// children reads the count prefix and every nested child. The parent's byte
// order applies to the count; each child then declares its own.
func (r *wkbReader) children(depth int) ([]geo.Geometry, error) {
	n, err := r.readUint32()
	if err != nil {
		return nil, err
	}

	remaining := len(r.buf) - r.off
	if int64(n) > int64(remaining/wkbMinSize) {
		return nil, geo.Malformed("count %d exceeds remaining %d bytes", n, remaining)
	}

	out := make([]geo.Geometry, 0, n)
	for range n {
		g, err := r.geometry(depth + 1)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// childrenOf checks that every child has the concrete type the parent allows.
func childrenOf[T geo.Geometry](parent geo.Type, children []geo.Geometry) ([]T, error) {
	out := make([]T, 0, len(children))
	for i, c := range children {
		v, ok := c.(T)
		if !ok {
			return nil, geo.Malformed("%s member %d is a %s", parent, i, c.Type())
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *wkbReader) need(n int) error {
	if len(r.buf)-r.off < n {
		return geo.Malformed("truncated payload at offset %d", r.off)
	}
	return nil
}

func (r *wkbReader) readByte() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

func (r *wkbReader) readUint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := r.order.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

func (r *wkbReader) readFloat64() (float64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := math.Float64frombits(r.order.Uint64(r.buf[r.off:]))
	r.off += 8
	return v, nil
}
