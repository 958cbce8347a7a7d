package geomconv

import (
	"encoding/binary"

	"github.com/woozymasta/geoconv/internal/geo"
)

const (
	ewkbZ    = 0x80000000
	ewkbM    = 0x40000000
	ewkbSRID = 0x20000000

	// smallest nested element: marker, type code, count
	ewkbMinSize = 1 + 4 + 4
)

// walker checks the structure of an EWKB document before go-geom decodes
// it. ewkb.Unmarshal recurses without a bound, so nesting and element counts
// are validated here first.
type walker struct {
	buf      []byte
	off      int
	maxDepth int
}

func checkStructure(raw []byte, maxDepth int) error {
	w := &walker{buf: raw, maxDepth: maxDepth}
	return w.geometry(1)
}

func (w *walker) geometry(depth int) error {
	if depth > w.maxDepth {
		return geo.Malformed("nesting deeper than %d levels", w.maxDepth)
	}

	if err := w.need(1); err != nil {
		return err
	}
	var order binary.ByteOrder
	switch w.buf[w.off] {
	case geo.WKBLittleEndian:
		order = binary.LittleEndian
	case geo.WKBBigEndian:
		order = binary.BigEndian
	default:
		return geo.Malformed("invalid byte order marker %d at offset %d", w.buf[w.off], w.off)
	}
	w.off++

	code, err := w.readUint32(order)
	if err != nil {
		return err
	}

	dims := 2
	if code&ewkbZ != 0 {
		dims++
	}
	if code&ewkbM != 0 {
		dims++
	}
	if code&ewkbSRID != 0 {
		if err := w.skip(4); err != nil {
			return err
		}
	}

	base := code &^ (ewkbZ | ewkbM | ewkbSRID)
	if base >= 1000 {
		// ISO SQL/MM dimension offsets
		switch base / 1000 {
		case 1, 2:
			dims = 3
		case 3:
			dims = 4
		}
		base %= 1000
	}

	coordSize := 8 * dims
	switch base {
	case 1:
		return w.skip(coordSize)

	case 2:
		return w.coords(order, coordSize)

	case 3:
		n, err := w.count(order, 4)
		if err != nil {
			return err
		}
		for range n {
			if err := w.coords(order, coordSize); err != nil {
				return err
			}
		}
		return nil

	case 4, 5, 6, 7:
		n, err := w.count(order, ewkbMinSize)
		if err != nil {
			return err
		}
		for range n {
			if err := w.geometry(depth + 1); err != nil {
				return err
			}
		}
		return nil

	default:
		return geo.Malformed("unknown geometry type code %d", code)
	}
}

func (w *walker) coords(order binary.ByteOrder, coordSize int) error {
	n, err := w.count(order, coordSize)
	if err != nil {
		return err
	}
	return w.skip(int(n) * coordSize)
}

// count reads an element count and rejects one the remaining bytes cannot hold.
func (w *walker) count(order binary.ByteOrder, minSize int) (uint32, error) {
	n, err := w.readUint32(order)
	if err != nil {
		return 0, err
	}
	remaining := len(w.buf) - w.off
	if int64(n) > int64(remaining/minSize) {
		return 0, geo.Malformed("count %d exceeds remaining %d bytes", n, remaining)
	}
	return n, nil
}

func (w *walker) readUint32(order binary.ByteOrder) (uint32, error) {
	if err := w.need(4); err != nil {
		return 0, err
	}
	v := order.Uint32(w.buf[w.off:])
	w.off += 4
	return v, nil
}

func (w *walker) skip(n int) error {
	if err := w.need(n); err != nil {
		return err
	}
	w.off += n
	return nil
}

func (w *walker) need(n int) error {
	if len(w.buf)-w.off < n {
		return geo.Malformed("truncated payload at offset %d", w.off)
	}
	return nil
}
