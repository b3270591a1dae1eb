// Package fitstest builds small FITS files in memory for tests and fixtures.
package fitstest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

const (
	lineWidth = 80
	blockSize = 2880
)

// Card formats a fixed-format "KEY     =                VALUE / COMMENT"
// card padded or truncated to 80 columns.
func Card(key, value, comment string) string {
	s := fmt.Sprintf("%-8s= %20s", key, value)
	if comment != "" {
		s += " / " + comment
	}
	return pad(s)
}

// Line pads free text (COMMENT, HISTORY, END) to 80 columns.
func Line(text string) string { return pad(text) }

func pad(s string) string {
	if len(s) >= lineWidth {
		return s[:lineWidth]
	}
	return s + strings.Repeat(" ", lineWidth-len(s))
}

// Header joins cards, appends END and pads with blanks to a block boundary.
func Header(cards ...string) []byte {
	var buf bytes.Buffer
	for _, c := range cards {
		buf.WriteString(pad(c))
	}
	buf.WriteString(pad("END"))
	padTo(&buf, ' ')
	return buf.Bytes()
}

// ImageCards returns the mandatory cards for a 2-D primary image.
func ImageCards(bitpix, width, height int) []string {
	return []string{
		Card("SIMPLE", "T", "conforms to FITS standard"),
		Card("BITPIX", fmt.Sprint(bitpix), "bits per data value"),
		Card("NAXIS", "2", "number of axes"),
		Card("NAXIS1", fmt.Sprint(width), "width"),
		Card("NAXIS2", fmt.Sprint(height), "height"),
	}
}

// Image builds a complete single-HDU file. extra cards are placed after
// the mandatory ones, before END. The data unit is zero padded to a block.
func Image(bitpix, width, height int, values []float64, extra ...string) []byte {
	cards := append(ImageCards(bitpix, width, height), extra...)
	var buf bytes.Buffer
	buf.Write(Header(cards...))
	buf.Write(Payload(bitpix, values))
	padTo(&buf, 0)
	return buf.Bytes()
}

// Payload encodes values big-endian in the BITPIX representation. Integer
// formats truncate toward zero. Unknown codes produce no bytes.
func Payload(bitpix int, values []float64) []byte {
	var buf bytes.Buffer
	for _, v := range values {
		switch bitpix {
		case 8:
			buf.WriteByte(uint8(v))
		case 16:
			binary.Write(&buf, binary.BigEndian, int16(v))
		case 32:
			binary.Write(&buf, binary.BigEndian, int32(v))
		case 64:
			binary.Write(&buf, binary.BigEndian, int64(v))
		case -32:
			binary.Write(&buf, binary.BigEndian, math.Float32bits(float32(v)))
		case -64:
			binary.Write(&buf, binary.BigEndian, math.Float64bits(v))
		}
	}
	return buf.Bytes()
}

// Ramp returns n values 0, 1, ..., n-1.
func Ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

func padTo(buf *bytes.Buffer, fill byte) {
	if rem := buf.Len() % blockSize; rem != 0 {
		buf.Write(bytes.Repeat([]byte{fill}, blockSize-rem))
	}
}
