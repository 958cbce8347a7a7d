package decoder

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/woozymasta/geoconv/internal/geo"
)

// element is a namespace-free view of an XML element. Names are lower-cased
// so lookups are case-insensitive, as KML readers in the wild expect.
type element struct {
	attrs    map[string]string
	name     string
	text     []byte
	children []*element
}

// childrenNamed returns the direct children with the given lower-case name.
func (e *element) childrenNamed(name string) []*element {
	var out []*element
	for _, c := range e.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// CharsetReader converts documents declaring a non UTF-8 encoding, such as
// ISO-8859-1 or windows-1251 exports.
func CharsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, eris.Wrapf(err, "unsupported charset %q", clip(charset))
	}
	return enc.NewDecoder().Reader(input), nil
}

// parseXML builds the element tree, rejecting documents nested deeper than
// maxDepth before any geometry is constructed.
func parseXML(data []byte, maxDepth int) (*element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = CharsetReader

	var root *element
	var stack []*element

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformedCause("invalid XML", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) >= maxDepth {
				return nil, tooDeep(maxDepth)
			}

			el := &element{name: strings.ToLower(t.Name.Local)}
			if len(t.Attr) > 0 {
				el.attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					el.attrs[strings.ToLower(a.Name.Local)] = a.Value
				}
			}

			if len(stack) == 0 {
				if root != nil {
					return nil, geo.Malformed("more than one root element")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.text = append(top.text, t...)
			}
		}
	}

	if root == nil {
		return nil, geo.Malformed("no root element")
	}
	return root, nil
}
