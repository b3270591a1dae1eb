//go:build ignore

// gen_fixtures creates small FITS files for the E2E smoke test.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/AnyUserName/fitsview/internal/fitstest"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	if err := os.MkdirAll(filepath.Join(dir, "m31"), 0o755); err != nil {
		panic(err)
	}

	// Star field (16-bit with BZERO, 400x300)
	write(filepath.Join(dir, "m31", "frame-001.fits"), fitstest.Image(16, 400, 300, starField(400, 300, 1),
		fitstest.Card("BZERO", "32768", "unsigned 16-bit"),
		fitstest.Card("BSCALE", "1", ""),
		fitstest.Card("OBJECT", "'M31'", ""),
	))
	write(filepath.Join(dir, "m31", "frame-002.fits"), fitstest.Image(16, 400, 300, starField(400, 300, 2),
		fitstest.Card("BZERO", "32768", "unsigned 16-bit"),
	))

	// Float gradient with NaN border (256x256)
	write(filepath.Join(dir, "gradient.fit"), fitstest.Image(-32, 256, 256, nanBorder(256, 256)))

	// 8-bit ramp, too small for zscale (2x8)
	write(filepath.Join(dir, "strip.fts"), fitstest.Image(8, 2, 8, fitstest.Ramp(16)))

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 4 fixtures in %s\n", dir)
}

// starField returns Gaussian sky noise (signed, before BZERO) with a few
// bright point sources.
func starField(w, h int, seed int64) []float64 {
	r := rand.New(rand.NewSource(seed))
	out := make([]float64, w*h)
	for i := range out {
		out[i] = -31768 + r.NormFloat64()*30
	}
	for s := 0; s < 40; s++ {
		cx, cy := r.Intn(w), r.Intn(h)
		peak := 2000 + r.Float64()*28000
		for y := max(0, cy-4); y < min(h, cy+5); y++ {
			for x := max(0, cx-4); x < min(w, cx+5); x++ {
				d2 := float64((x-cx)*(x-cx) + (y-cy)*(y-cy))
				out[y*w+x] = math.Min(32767, out[y*w+x]+peak*math.Exp(-d2/3))
			}
		}
	}
	return out
}

func nanBorder(w, h int) []float64 {
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := float64(x+y) / float64(w+h)
			if x < 4 || y < 4 || x >= w-4 || y >= h-4 {
				v = math.NaN()
			}
			out[y*w+x] = v
		}
	}
	return out
}

func write(path string, data []byte) {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		panic(err)
	}
}
