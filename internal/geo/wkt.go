package geo

import (
	"strconv"
	"strings"
)

// formatCoord renders the shortest decimal that parses back to v.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ToWKT renders the point as POINT(lon lat).
func (p *Point) ToWKT() string {
	var b strings.Builder
	b.WriteString("POINT(")
	p.writeWKTBody(&b)
	b.WriteByte(')')
	return b.String()
}

func (p *Point) writeWKTBody(b *strings.Builder) {
	b.WriteString(formatCoord(p.lon))
	b.WriteByte(' ')
	b.WriteString(formatCoord(p.lat))
}

// ToWKT renders the upper-cased type name followed by the nested child
// lists. An empty collection renders as "<NAME> EMPTY".
func (c *collection) ToWKT() string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(c.typ.String()))
	if len(c.components) == 0 {
		b.WriteByte(' ')
	}
	c.writeWKTBody(&b)
	return b.String()
}

func (c *collection) writeWKTBody(b *strings.Builder) {
	if len(c.components) == 0 {
		b.WriteString("EMPTY")
		return
	}

	b.WriteByte('(')
	for i, child := range c.components {
		if i > 0 {
			b.WriteByte(',')
		}
		// heterogeneous children keep their own type tag
		if c.typ == TypeGeometryCollection {
			b.WriteString(child.ToWKT())
			continue
		}
		child.writeWKTBody(b)
	}
	b.WriteByte(')')
}
