package pixel

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/AnyUserName/fitsview/internal/header"
)

var (
	// ErrUnsupportedFormat is returned for BITPIX values other than
	// 8, 16, 32, 64, -32 and -64.
	ErrUnsupportedFormat = errors.New("unsupported sample format")

	// ErrTruncatedData is returned when the data unit is shorter than the
	// geometry declared by the header.
	ErrTruncatedData = errors.New("truncated data unit")

	// ErrBadGeometry is returned for negative axis lengths.
	ErrBadGeometry = errors.New("invalid image geometry")
)

const readBufferSize = 64 * 1024

// Decode reads the primary image described by h from r.
//
// Samples are big-endian, row-major with NAXIS1 varying fastest. BZERO is
// added to every sample when present. BSCALE is not applied. No grid is
// returned on error.
func Decode(r io.ReadSeeker, h *header.Header) (*Grid, error) {
	format := h.Format()
	if !format.Valid() {
		return nil, fmt.Errorf("%w: BITPIX = %d", ErrUnsupportedFormat, h.Bitpix())
	}
	width, height := h.Width(), h.Height()
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadGeometry, width, height)
	}

	bw := format.ByteWidth()
	offset := h.DataOffset()
	if err := checkAvailable(r, offset, width, height, bw); err != nil {
		return nil, err
	}
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seek to data at %d: %w", header.ErrIO, offset, err)
	}

	n := width * height
	values := make([]float64, n)
	bzero, _ := h.ZeroOffset()
	sample := sampleFunc(format)

	br := bufio.NewReaderSize(r, readBufferSize)
	var buf [8]byte
	acc := newAccumulator()
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			if _, err := io.ReadFull(br, buf[:bw]); err != nil {
				if err == io.EOF || err == io.ErrUnexpectedEOF {
					return nil, fmt.Errorf("%w: stream ended at sample %d of %d",
						ErrTruncatedData, row*width+col, n)
				}
				return nil, fmt.Errorf("%w: read sample %d: %w", header.ErrIO, row*width+col, err)
			}
			v := sample(buf[:bw]) + bzero
			values[row*width+col] = v
			acc.add(v)
		}
	}

	return &Grid{
		width:  width,
		height: height,
		values: values,
		stats:  acc.finish(values),
	}, nil
}

// checkAvailable compares the declared payload with the stream length so
// oversized geometry fails before the sample array is allocated.
func checkAvailable(r io.Seeker, offset int64, width, height, bw int) error {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("%w: seek to end: %w", header.ErrIO, err)
	}
	avail := size - offset
	if avail < 0 {
		avail = 0
	}

	if width > 0 && int64(height) > math.MaxInt64/int64(bw)/int64(width) {
		return fmt.Errorf("%w: %dx%d samples of %d bytes overflow", ErrTruncatedData, width, height, bw)
	}
	need := int64(width) * int64(height) * int64(bw)
	if avail < need {
		return fmt.Errorf("%w: need %d bytes after offset %d, have %d", ErrTruncatedData, need, offset, avail)
	}
	return nil
}

// sampleFunc returns the big-endian decoder for one sample of format f.
func sampleFunc(f header.Format) func([]byte) float64 {
	switch f {
	case header.Uint8:
		return func(b []byte) float64 { return float64(b[0]) }
	case header.Int16:
		return func(b []byte) float64 { return float64(int16(binary.BigEndian.Uint16(b))) }
	case header.Int32:
		return func(b []byte) float64 { return float64(int32(binary.BigEndian.Uint32(b))) }
	case header.Int64:
		return func(b []byte) float64 { return float64(int64(binary.BigEndian.Uint64(b))) }
	case header.Float32:
		return func(b []byte) float64 { return float64(math.Float32frombits(binary.BigEndian.Uint32(b))) }
	case header.Float64:
		return func(b []byte) float64 { return math.Float64frombits(binary.BigEndian.Uint64(b)) }
	}
	return nil
}
