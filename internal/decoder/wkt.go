package decoder

import (
	"strings"

	"github.com/woozymasta/geoconv/internal/geo"
)

const formatWKT = "wkt"

// WKT decodes Well-Known Text, including EWKT with an SRID prefix. Several
// geometries may follow each other, separated by whitespace or ';'. Z, M
// and ZM ordinates are read and dropped.
type WKT struct {
	MaxDepth int
}

// Format returns "wkt".
func (WKT) Format() string { return formatWKT }

// Decode parses every geometry in data.
func (d WKT) Decode(data []byte) ([]geo.Geometry, error) {
	p := &wktParser{src: string(data), maxDepth: limit(d.MaxDepth)}

	geoms, err := p.parseAll()
	if err != nil {
		return nil, geo.Tag(formatWKT, err)
	}
	return geoms, nil
}

type wktParser struct {
	src      string
	pos      int
	maxDepth int
}

func wktKind(tag string) (nodeKind, geo.Type) {
	switch tag {
	case "POINT":
		return nodePoint, geo.TypePoint
	case "LINESTRING":
		return nodeLineString, geo.TypeLineString
	case "LINEARRING":
		return nodeLinearRing, geo.TypeLinearRing
	case "POLYGON":
		return nodePolygon, geo.TypePolygon
	case "MULTIPOINT":
		return nodeTypedMulti, geo.TypeMultiPoint
	case "MULTILINESTRING":
		return nodeTypedMulti, geo.TypeMultiLineString
	case "MULTIPOLYGON":
		return nodeTypedMulti, geo.TypeMultiPolygon
	case "GEOMETRYCOLLECTION":
		return nodeMulti, geo.TypeGeometryCollection
	default:
		return nodeUnknown, 0
	}
}

func (p *wktParser) parseAll() ([]geo.Geometry, error) {
	var out []geo.Geometry
	for {
		p.skipSpace()
		for p.peek() == ';' {
			p.pos++
			p.skipSpace()
		}
		if p.eof() {
			break
		}

		if err := p.skipSRID(); err != nil {
			return nil, err
		}

		g, err := p.geometry(1)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}

	if len(out) == 0 {
		return nil, geo.Malformed("no geometry found")
	}
	return out, nil
}

// skipSRID consumes an EWKT "SRID=<n>;" prefix.
func (p *wktParser) skipSRID() error {
	if !strings.HasPrefix(strings.ToUpper(p.src[p.pos:min(p.pos+5, len(p.src))]), "SRID=") {
		return nil
	}
	end := strings.IndexByte(p.src[p.pos:], ';')
	if end < 0 {
		return geo.Malformed("SRID prefix without ';'")
	}
	p.pos += end + 1
	p.skipSpace()
	return nil
}

func (p *wktParser) geometry(depth int) (geo.Geometry, error) {
	if depth > p.maxDepth {
		return nil, tooDeep(p.maxDepth)
	}

	tag := p.word()
	kind, typ := wktKind(tag)
	if kind == nodeUnknown {
		for _, suffix := range []string{"ZM", "Z", "M"} {
			if trimmed, ok := strings.CutSuffix(tag, suffix); ok {
				if k, t := wktKind(trimmed); k != nodeUnknown {
					kind, typ = k, t
					break
				}
			}
		}
	}
	if kind == nodeUnknown {
		if tag == "" {
			return nil, geo.Malformed("expected geometry tag at offset %d", p.pos)
		}
		return nil, geo.Malformed("unsupported geometry tag %q", clip(tag))
	}

	p.skipDimension()

	switch kind {
	case nodePoint:
		if p.empty() {
			return nil, geo.Malformed("POINT EMPTY cannot be represented")
		}
		if err := p.expect('('); err != nil {
			return nil, err
		}
		pt, err := p.position()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return pt, nil

	case nodeLineString:
		points, err := p.pointList()
		if err != nil {
			return nil, err
		}
		return toGeometry(geo.NewLineString(points))

	case nodeLinearRing:
		points, err := p.pointList()
		if err != nil {
			return nil, err
		}
		return toGeometry(geo.NewLinearRing(points))

	case nodePolygon:
		return toGeometry(p.polygonBody())

	case nodeTypedMulti:
		return p.multi(typ)

	default:
		var components []geo.Geometry
		err := p.list(func() error {
			g, err := p.geometry(depth + 1)
			if err != nil {
				return err
			}
			components = append(components, g)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return geo.ResolveMulti(components)
	}
}

// multi reads the typed Multi* bodies.
func (p *wktParser) multi(typ geo.Type) (geo.Geometry, error) {
	switch typ {
	case geo.TypeMultiPoint:
		var points []*geo.Point
		err := p.list(func() error {
			pt, err := p.multiPointMember()
			if err != nil {
				return err
			}
			points = append(points, pt)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return toGeometry(geo.NewMultiPoint(points))

	case geo.TypeMultiLineString:
		var lines []*geo.LineString
		err := p.list(func() error {
			points, err := p.pointList()
			if err != nil {
				return err
			}
			line, err := geo.NewLineString(points)
			if err != nil {
				return err
			}
			lines = append(lines, line)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return toGeometry(geo.NewMultiLineString(lines))

	default:
		var polygons []*geo.Polygon
		err := p.list(func() error {
			poly, err := p.polygonBody()
			if err != nil {
				return err
			}
			polygons = append(polygons, poly)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return toGeometry(geo.NewMultiPolygon(polygons))
	}
}

// multiPointMember accepts both "x y" and "(x y)".
func (p *wktParser) multiPointMember() (*geo.Point, error) {
	p.skipSpace()
	if p.peek() != '(' {
		return p.position()
	}
	p.pos++
	pt, err := p.position()
	if err != nil {
		return nil, err
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return pt, nil
}

func (p *wktParser) polygonBody() (*geo.Polygon, error) {
	var rings []*geo.LinearRing
	err := p.list(func() error {
		points, err := p.pointList()
		if err != nil {
			return err
		}
		ring, err := geo.NewLinearRing(points)
		if err != nil {
			return err
		}
		rings = append(rings, ring)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return geo.NewPolygon(rings)
}

func (p *wktParser) pointList() ([]*geo.Point, error) {
	var points []*geo.Point
	err := p.list(func() error {
		pt, err := p.position()
		if err != nil {
			return err
		}
		points = append(points, pt)
		return nil
	})
	return points, err
}

// list reads "EMPTY" or a parenthesized, comma separated list of members.
func (p *wktParser) list(member func() error) error {
	if p.empty() {
		return nil
	}
	if err := p.expect('('); err != nil {
		return err
	}
	for {
		if err := member(); err != nil {
			return err
		}
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return nil
		default:
			return p.unexpected("',' or ')'")
		}
	}
}

// position reads two to four numbers and keeps the first two.
func (p *wktParser) position() (*geo.Point, error) {
	var fields []string
	for len(fields) < 4 {
		p.skipSpace()
		tok := p.number()
		if tok == "" {
			break
		}
		fields = append(fields, tok)
	}
	if len(fields) == 0 {
		return nil, p.unexpected("coordinate")
	}
	return parsePosition(fields)
}

func (p *wktParser) empty() bool {
	save := p.pos
	if p.word() == "EMPTY" {
		return true
	}
	p.pos = save
	return false
}

func (p *wktParser) skipDimension() {
	save := p.pos
	switch p.word() {
	case "Z", "M", "ZM":
	default:
		p.pos = save
	}
}

func (p *wktParser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return p.unexpected("'" + string(c) + "'")
	}
	p.pos++
	return nil
}

func (p *wktParser) unexpected(want string) error {
	if p.eof() {
		return geo.Malformed("expected %s, got end of input", want)
	}
	return geo.Malformed("expected %s at offset %d, got %q", want, p.pos, p.src[p.pos])
}

// word reads an upper-cased run of ASCII letters.
func (p *wktParser) word() string {
	p.skipSpace()
	start := p.pos
	for !p.eof() && isLetter(p.src[p.pos]) {
		p.pos++
	}
	return strings.ToUpper(p.src[start:p.pos])
}

// number reads a numeric token without interpreting it.
func (p *wktParser) number() string {
	start := p.pos
	if c := p.peek(); c == 'e' || c == 'E' {
		return ""
	}
	for !p.eof() && isNumberByte(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *wktParser) skipSpace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *wktParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *wktParser) eof() bool {
	return p.pos >= len(p.src)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNumberByte(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E'
}
