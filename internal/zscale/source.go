package zscale

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
)

// Source supplies the random integers used to pick sample coordinates.
// *math/rand.Rand satisfies it.
type Source interface {
	// Intn returns a value in [0, n).
	Intn(n int) int
}

// NewSource returns a deterministic source for the given seed.
func NewSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// EntropySource returns a source seeded from the operating system.
func EntropySource() Source {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return rand.New(rand.NewSource(rand.Int63()))
	}
	return rand.New(rand.NewSource(int64(binary.LittleEndian.Uint64(b[:]))))
}

// Recorder wraps a Source and keeps every value it hands out.
type Recorder struct {
	Src    Source
	Values []int
}

func (r *Recorder) Intn(n int) int {
	v := r.Src.Intn(n)
	r.Values = append(r.Values, v)
	return v
}

// Fixed replays a recorded sequence. Values are reduced modulo n, and the
// sequence wraps when exhausted. An empty Fixed always returns 0.
type Fixed struct {
	Values []int
	pos    int
}

func (f *Fixed) Intn(n int) int {
	if len(f.Values) == 0 {
		return 0
	}
	v := f.Values[f.pos%len(f.Values)]
	f.pos++
	if v < 0 {
		v = -v
	}
	return v % n
}
