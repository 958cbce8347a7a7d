// Package decoder turns textual and binary geometry documents into the
// geo model.
//
// Every decoder follows the same recursive skeleton: classify a syntactic
// node into a nodeKind, unwrap containers by concatenating the results of
// their children, extract coordinate tuples for leaves, decode children
// before their parent, and hand generic multi-containers to
// geo.ResolveMulti. Codec errors raised anywhere in the recursion are
// tagged with the decoder's format name once, in Decode.
package decoder

import (
	"strconv"
	"strings"

	"github.com/woozymasta/geoconv/internal/geo"
)

// DefaultMaxDepth bounds document nesting when a decoder has no MaxDepth.
const DefaultMaxDepth = 64

// Decoder is implemented by every input format.
type Decoder interface {
	Format() string
	Decode(data []byte) ([]geo.Geometry, error)
}

// nodeKind is the finite set of syntactic node kinds a decoder dispatches on.
type nodeKind uint8

const (
	nodeUnknown nodeKind = iota
	nodeContainer
	nodeMetadata
	nodePoint
	nodeLineString
	nodeLinearRing
	nodePolygon
	nodeMulti      // generic container, resolved by geo.ResolveMulti
	nodeTypedMulti // MultiPoint, MultiLineString or MultiPolygon named explicitly
)

func limit(maxDepth int) int {
	if maxDepth <= 0 {
		return DefaultMaxDepth
	}
	return maxDepth
}

func tooDeep(maxDepth int) error {
	return geo.Malformed("nesting deeper than %d levels", maxDepth)
}

// maxEcho caps input fragments quoted in error messages.
const maxEcho = 64

// clip shortens an input fragment for an error message.
func clip(s string) string {
	if len(s) <= maxEcho {
		return s
	}
	return s[:maxEcho] + "..."
}

func malformedCause(detail string, cause error) error {
	return &geo.Error{Kind: geo.KindMalformed, Detail: detail, Cause: cause}
}

// parseNumber parses one coordinate token.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, geo.Malformed("invalid coordinate %q", clip(s))
	}
	return v, nil
}

// parsePosition builds a Point from lon, lat and optional ignored ordinates.
func parsePosition(fields []string) (*geo.Point, error) {
	if len(fields) < 2 {
		return nil, geo.InvalidFeature("position needs two coordinates, got %d", len(fields))
	}

	lon, err := parseNumber(fields[0])
	if err != nil {
		return nil, err
	}
	lat, err := parseNumber(fields[1])
	if err != nil {
		return nil, err
	}

	return geo.NewPoint(lon, lat)
}

// single wraps a one-geometry result, keeping typed nils out of the slice.
func single(g geo.Geometry, err error) ([]geo.Geometry, error) {
	if err != nil {
		return nil, err
	}
	return []geo.Geometry{g}, nil
}

func toGeometry(g geo.Geometry, err error) (geo.Geometry, error) {
	if err != nil {
		return nil, err
	}
	return g, nil
}
