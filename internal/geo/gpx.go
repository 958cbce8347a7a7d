package geo

// GPXMode selects the GPX element a geometry is exported as.
type GPXMode string

const (
	GPXWaypoint GPXMode = "wpt"
	GPXRoute    GPXMode = "rte"
	GPXTrack    GPXMode = "trk"
)

// ToGPX renders the point as a waypoint. The empty mode means waypoint;
// routes and tracks cannot be built from a single point.
func (p *Point) ToGPX(mode GPXMode) (string, error) {
	if mode == "" {
		mode = GPXWaypoint
	}
	if mode != GPXWaypoint {
		return "", Unimplemented("GPX "+string(mode)+" export", TypePoint)
	}
	return `<wpt lon="` + formatCoord(p.lon) + `" lat="` + formatCoord(p.lat) + `"></wpt>`, nil
}

// ToGPX is not supported for collections.
func (c *collection) ToGPX(mode GPXMode) (string, error) {
	if mode == "" {
		mode = GPXWaypoint
	}
	return "", Unimplemented("GPX "+string(mode)+" export", c.typ)
}
