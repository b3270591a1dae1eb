package header

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

const (
	keyValueSeparator = '='
	commentSeparator  = '/'
	endKeyword        = "END"
)

// Parse reads header blocks from r until the END card.
//
// r is consumed in whole 2880-byte blocks, so for a well-formed file the
// reader is left positioned at DataOffset. A final short block is accepted
// as long as the END card lies within it.
func Parse(r io.Reader) (*Header, error) {
	p := &parser{}
	block := make([]byte, BlockSize)

	for b := 0; b < MaxBlocks; b++ {
		n, err := io.ReadFull(r, block)
		short := false
		if err != nil {
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				return nil, fmt.Errorf("%w: read header block %d: %w", ErrIO, b, err)
			}
			short = true
		}

		for off := 0; off+LineWidth <= n; off += LineWidth {
			if p.card(string(block[off : off+LineWidth])) {
				return p.finish(), nil
			}
		}

		if short {
			return nil, fmt.Errorf("%w: stream ends after %d cards without %s",
				ErrMalformedHeader, p.lines, endKeyword)
		}
	}

	return nil, fmt.Errorf("%w: no %s card within %d blocks", ErrMalformedHeader, endKeyword, MaxBlocks)
}

// ParseFile opens path, parses its header and closes the file.
func ParseFile(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	return Parse(f)
}

// parser accumulates state during a single scan. Only finish hands the
// result out.
type parser struct {
	h     Header
	raw   strings.Builder
	lines int
	end   int
}

// card consumes one 80-column line and reports whether it was END.
func (p *parser) card(line string) bool {
	p.raw.WriteString(line)
	p.raw.WriteByte('\n')
	idx := p.lines
	p.lines++

	if strings.ToUpper(strings.TrimSpace(line)) == endKeyword {
		p.h.records = append(p.h.records, Record{Key: endKeyword})
		p.end = idx
		return true
	}

	rec := splitCard(line)
	p.h.records = append(p.h.records, rec)
	p.apply(rec)
	return false
}

// splitCard splits "KEY = VALUE / COMMENT" on the first '=' and then on
// the first '/'.
func splitCard(line string) Record {
	eq := strings.IndexByte(line, keyValueSeparator)
	if eq < 0 {
		return Record{Key: strings.TrimSpace(line)}
	}

	rec := Record{Key: strings.TrimSpace(line[:eq])}
	rest := line[eq+1:]
	if slash := strings.IndexByte(rest, commentSeparator); slash >= 0 {
		rec.Value = strings.TrimSpace(rest[:slash])
		rec.Comment = strings.TrimSpace(rest[slash+1:])
	} else {
		rec.Value = strings.TrimSpace(rest)
	}
	return rec
}

// apply updates derived fields. Later cards overwrite earlier ones and
// unparsable numbers fall back to zero or unset.
func (p *parser) apply(rec Record) {
	h := &p.h
	switch strings.ToUpper(rec.Key) {
	case "SIMPLE":
		h.simple = strings.ToUpper(rec.Value) == "T"
	case "BITPIX":
		h.bitpix = parseInt(rec.Value)
	case "NAXIS":
		h.naxis = parseInt(rec.Value)
	case "NAXIS1":
		h.width = parseInt(rec.Value)
	case "NAXIS2":
		h.height = parseInt(rec.Value)
	case "BZERO":
		h.bzero, h.hasBzero = parseFloat(rec.Value)
	case "BSCALE":
		h.bscale, h.hasBscale = parseFloat(rec.Value)
	}
}

func (p *parser) finish() *Header {
	h := p.h
	h.raw = p.raw.String()
	h.dataOffset = dataOffset(p.end)
	return &h
}

// dataOffset rounds the byte position after the END card up to the next
// block boundary.
func dataOffset(endIndex int) int64 {
	off := int64(LineWidth) * int64(endIndex+1)
	if rem := off % BlockSize; rem != 0 {
		off += BlockSize - rem
	}
	return off
}

func parseInt(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

// parseFloat accepts Fortran-style D exponents, which FITS writers still emit.
func parseFloat(s string) (float64, bool) {
	s = strings.NewReplacer("D", "E", "d", "e").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
