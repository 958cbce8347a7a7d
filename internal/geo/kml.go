package geo

import "strings"

// ToKML renders a Point leaf with a single coordinates payload.
func (p *Point) ToKML() string {
	return "<Point><coordinates>" + kmlCoord(p) + "</coordinates></Point>"
}

// ToKML wraps every child in a MultiGeometry element.
func (c *collection) ToKML() string {
	var b strings.Builder
	b.WriteString("<MultiGeometry>")
	for _, child := range c.components {
		b.WriteString(child.ToKML())
	}
	b.WriteString("</MultiGeometry>")
	return b.String()
}

// ToKML renders the vertices as one coordinates payload.
func (l *LineString) ToKML() string {
	return kmlPath("LineString", l.components)
}

// ToKML renders the vertices as one coordinates payload.
func (r *LinearRing) ToKML() string {
	return kmlPath("LinearRing", r.components)
}

// ToKML renders the first ring as the outer boundary and every other ring
// as its own inner boundary.
func (p *Polygon) ToKML() string {
	var b strings.Builder
	b.WriteString("<Polygon>")
	for i, ring := range p.components {
		if i == 0 {
			b.WriteString("<outerBoundaryIs>" + ring.ToKML() + "</outerBoundaryIs>")
			continue
		}
		b.WriteString("<innerBoundaryIs>" + ring.ToKML() + "</innerBoundaryIs>")
	}
	b.WriteString("</Polygon>")
	return b.String()
}

func kmlPath(name string, points []Geometry) string {
	var b strings.Builder
	b.WriteString("<" + name + "><coordinates>")
	for i, g := range points {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(kmlCoord(g.(*Point)))
	}
	b.WriteString("</coordinates></" + name + ">")
	return b.String()
}

func kmlCoord(p *Point) string {
	return formatCoord(p.lon) + "," + formatCoord(p.lat)
}
