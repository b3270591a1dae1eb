// Package hasher derives content addresses and sampling seeds with xxHash64.
package hasher

import (
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/cespare/xxhash/v2"
)

// ContentHash computes the xxHash64 of data and returns a hex string
// truncated to hexLen characters (0 or >= 16 means all 16). Preview file
// names use the first 8.
func ContentHash(data []byte, hexLen int) string {
	return format(xxhash.Sum64(data), hexLen)
}

// ContentHashReader computes the same hash while streaming r.
func ContentHashReader(r io.Reader, hexLen int) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return format(h.Sum64(), hexLen), nil
}

// Seed mixes a run seed with the hash of an asset key, so every file in a
// batch gets its own reproducible sampling sequence regardless of the
// order in which workers pick files up.
func Seed(base int64, key string) int64 {
	d := xxhash.New()
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(base))
	d.Write(b[:])
	d.WriteString(key)
	return int64(d.Sum64())
}

func format(sum uint64, hexLen int) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], sum)
	full := hex.EncodeToString(b[:])
	if hexLen > 0 && hexLen < len(full) {
		return full[:hexLen]
	}
	return full
}
