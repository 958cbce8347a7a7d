package geo

import (
	"encoding/binary"
	"encoding/hex"
	"math"
)

// WKB byte-order markers.
const (
	WKBBigEndian    byte = 0
	WKBLittleEndian byte = 1
)

// WKB geometry type codes.
const (
	WKBPoint              uint32 = 1
	WKBLineString         uint32 = 2
	WKBPolygon            uint32 = 3
	WKBMultiPoint         uint32 = 4
	WKBMultiLineString    uint32 = 5
	WKBMultiPolygon       uint32 = 6
	WKBGeometryCollection uint32 = 7
)

// WKBCode returns the wire type code. A LinearRing travels as a LineString.
func (t Type) WKBCode() uint32 {
	switch t {
	case TypePoint:
		return WKBPoint
	case TypeLineString, TypeLinearRing:
		return WKBLineString
	case TypePolygon:
		return WKBPolygon
	case TypeMultiPoint:
		return WKBMultiPoint
	case TypeMultiLineString:
		return WKBMultiLineString
	case TypeMultiPolygon:
		return WKBMultiPolygon
	case TypeGeometryCollection:
		return WKBGeometryCollection
	default:
		return 0
	}
}

// TypeFromWKBCode maps a wire type code back to a model type.
func TypeFromWKBCode(code uint32) (Type, bool) {
	switch code {
	case WKBPoint:
		return TypePoint, true
	case WKBLineString:
		return TypeLineString, true
	case WKBPolygon:
		return TypePolygon, true
	case WKBMultiPoint:
		return TypeMultiPoint, true
	case WKBMultiLineString:
		return TypeMultiLineString, true
	case WKBMultiPolygon:
		return TypeMultiPolygon, true
	case WKBGeometryCollection:
		return TypeGeometryCollection, true
	default:
		return 0, false
	}
}

// ToWKB encodes the point as marker, type code, lon and lat.
func (p *Point) ToWKB() []byte {
	return p.appendWKB(make([]byte, 0, 21))
}

// ToWKBHex returns ToWKB as lowercase hex.
func (p *Point) ToWKBHex() string {
	return hex.EncodeToString(p.ToWKB())
}

func (p *Point) appendWKB(buf []byte) []byte {
	buf = appendWKBHeader(buf, WKBPoint)
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(p.lon))
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(p.lat))
	return buf
}

// ToWKB encodes the collection as marker, type code, child count and the
// full nested encoding of each child.
func (c *collection) ToWKB() []byte {
	return c.appendWKB(nil)
}

// ToWKBHex returns ToWKB as lowercase hex.
func (c *collection) ToWKBHex() string {
	return hex.EncodeToString(c.ToWKB())
}

func (c *collection) appendWKB(buf []byte) []byte {
	buf = appendWKBHeader(buf, c.typ.WKBCode())
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(c.components)))
	for _, child := range c.components {
		buf = child.appendWKB(buf)
	}
	return buf
}

func appendWKBHeader(buf []byte, code uint32) []byte {
	buf = append(buf, WKBLittleEndian)
	return binary.LittleEndian.AppendUint32(buf, code)
}
