// Package header parses the primary header of a FITS file: 80-column
// keyword cards grouped into 2880-byte blocks and closed by an END card.
//
// Only the keywords needed to locate and decode a 2-D primary image are
// interpreted (SIMPLE, BITPIX, NAXIS, NAXIS1, NAXIS2, BZERO, BSCALE). Every
// card, recognized or not, is kept in file order.
package header

import (
	"errors"
	"fmt"
	"strings"
)

const (
	LineWidth     = 80
	LinesPerBlock = 36
	BlockSize     = LineWidth * LinesPerBlock // 2880

	// MaxBlocks bounds the header scan. Real primary headers rarely need
	// more than a handful of blocks.
	MaxBlocks = 20
)

var (
	// ErrMalformedHeader is returned when no END card is found within
	// MaxBlocks, or the stream ends before it.
	ErrMalformedHeader = errors.New("malformed FITS header")

	// ErrIO wraps read failures of the underlying stream.
	ErrIO = errors.New("fits i/o error")
)

// Format is a BITPIX sample format code.
type Format int

const (
	Uint8   Format = 8
	Int16   Format = 16
	Int32   Format = 32
	Int64   Format = 64
	Float32 Format = -32
	Float64 Format = -64
)

// Valid reports whether f is one of the six codes defined by the standard.
func (f Format) Valid() bool {
	switch f {
	case Uint8, Int16, Int32, Int64, Float32, Float64:
		return true
	}
	return false
}

// ByteWidth returns the stored size of one sample, or 0 for invalid codes.
func (f Format) ByteWidth() int {
	if !f.Valid() {
		return 0
	}
	if f < 0 {
		return int(-f) / 8
	}
	return int(f) / 8
}

func (f Format) IsFloat() bool { return f == Float32 || f == Float64 }

func (f Format) String() string {
	switch f {
	case Uint8:
		return "uint8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	}
	return fmt.Sprintf("bitpix(%d)", int(f))
}

// Record is one header card split into keyword, value and comment.
type Record struct {
	Key     string
	Value   string
	Comment string
}

func (r Record) String() string {
	return r.Key + ", " + r.Value + ", " + r.Comment
}

// Text returns the value with FITS string quoting removed: the enclosing
// single quotes are dropped, doubled quotes collapse to one and trailing
// blanks inside the quotes are trimmed. Unquoted values are returned as is.
func (r Record) Text() string {
	v := r.Value
	if len(v) < 2 || v[0] != '\'' {
		return v
	}
	var sb strings.Builder
	for i := 1; i < len(v); i++ {
		if v[i] != '\'' {
			sb.WriteByte(v[i])
			continue
		}
		if i+1 < len(v) && v[i+1] == '\'' {
			sb.WriteByte('\'')
			i++
			continue
		}
		break
	}
	return strings.TrimRight(sb.String(), " ")
}

// Header is a parsed primary header. It is built once by Parse and not
// modified afterwards; accessors return copies where the data is mutable.
type Header struct {
	raw        string
	dataOffset int64
	records    []Record

	simple bool
	bitpix int
	naxis  int
	width  int
	height int

	bzero     float64
	hasBzero  bool
	bscale    float64
	hasBscale bool
}

// Raw returns every header line, END included, each followed by "\n".
func (h *Header) Raw() string { return h.raw }

// DataOffset is the byte offset of the data unit. It is always a multiple
// of BlockSize.
func (h *Header) DataOffset() int64 { return h.dataOffset }

func (h *Header) Simple() bool   { return h.simple }
func (h *Header) Bitpix() int    { return h.bitpix }
func (h *Header) Format() Format { return Format(h.bitpix) }
func (h *Header) Naxis() int     { return h.naxis }
func (h *Header) Width() int     { return h.width }
func (h *Header) Height() int    { return h.height }

// ZeroOffset returns BZERO and whether it was present and numeric.
func (h *Header) ZeroOffset() (float64, bool) { return h.bzero, h.hasBzero }

// ScaleFactor returns BSCALE and whether it was present and numeric.
// The pixel decoder does not apply it.
func (h *Header) ScaleFactor() (float64, bool) { return h.bscale, h.hasBscale }

// Len returns the number of records, END included.
func (h *Header) Len() int { return len(h.records) }

// Records returns a copy of all records in file order.
func (h *Header) Records() []Record {
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

// Lookup returns the last record whose key matches, ignoring case.
func (h *Header) Lookup(key string) (Record, bool) {
	key = strings.ToUpper(strings.TrimSpace(key))
	for i := len(h.records) - 1; i >= 0; i-- {
		if strings.ToUpper(h.records[i].Key) == key {
			return h.records[i], true
		}
	}
	return Record{}, false
}

// PayloadSize is the number of data bytes the header declares for the
// primary image, or 0 when the geometry or format is unusable.
func (h *Header) PayloadSize() int64 {
	bw := h.Format().ByteWidth()
	if bw == 0 || h.width <= 0 || h.height <= 0 {
		return 0
	}
	return int64(h.width) * int64(h.height) * int64(bw)
}
