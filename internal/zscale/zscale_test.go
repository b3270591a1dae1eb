package zscale

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/AnyUserName/fitsview/internal/pixel"
)

func mustGrid(t *testing.T, w, h int, values []float64) *pixel.Grid {
	t.Helper()
	g, err := pixel.NewGrid(w, h, values)
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	return g
}

func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

// noisy returns a sky-like field with a few saturated spikes.
func noisy(w, h int, seed int64) []float64 {
	r := rand.New(rand.NewSource(seed))
	out := make([]float64, w*h)
	for i := range out {
		out[i] = 1000 + r.NormFloat64()*25
	}
	for i := 0; i < len(out); i += 97 {
		out[i] = 65535
	}
	return out
}

func TestScale_KnownSample(t *testing.T) {
	g := mustGrid(t, 10, 10, ramp(100))
	// Ten draws of (x, y) = (1+i%8, 1+i%8) pick values 11*(1+i%8).
	src := &Fixed{Values: []int{0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6, 7, 7, 8, 8, 9, 9}}

	res, err := Scale(g, 2, src)
	if err != nil {
		t.Fatalf("scale: %v", err)
	}
	if res.Samples != 10 {
		t.Errorf("samples: got %d", res.Samples)
	}
	if res.Median != 44 {
		t.Errorf("median: got %v, want 44", res.Median)
	}
	if res.Slope != 4.5 {
		t.Errorf("slope: got %v, want 4.5", res.Slope)
	}
	if res.Z1 != 21.5 || res.Z2 != 66.5 {
		t.Errorf("limits: got %v..%v, want 21.5..66.5", res.Z1, res.Z2)
	}

	d := res.Display
	if got := d.At(9, 9); got != 0 {
		t.Errorf("min pixel: got %d, want 0", got)
	}
	if got := d.At(0, 0); got != 255 {
		t.Errorf("max pixel: got %d, want 255", got)
	}
	// Sample (5,4) = 45 → (45-21.5)*255/45 = 133.17.
	if got := d.At(4, 5); got != 133 {
		t.Errorf("mid pixel: got %d, want 133", got)
	}
}

func TestScale_DeterministicWithSeed(t *testing.T) {
	g := mustGrid(t, 64, 48, noisy(64, 48, 7))

	a, err := Scale(g, DefaultContrast, NewSource(42))
	if err != nil {
		t.Fatalf("scale: %v", err)
	}
	b, err := Scale(g, DefaultContrast, NewSource(42))
	if err != nil {
		t.Fatalf("scale: %v", err)
	}
	assertSameResult(t, a, b)
}

func TestScale_ReplayRecordedCoordinates(t *testing.T) {
	g := mustGrid(t, 50, 40, noisy(50, 40, 3))

	rec := &Recorder{Src: NewSource(99)}
	a, err := Scale(g, DefaultContrast, rec)
	if err != nil {
		t.Fatalf("scale: %v", err)
	}
	if len(rec.Values) != 2*(50*40/10) {
		t.Fatalf("recorded %d draws", len(rec.Values))
	}

	b, err := Scale(g, DefaultContrast, &Fixed{Values: rec.Values})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	assertSameResult(t, a, b)
}

func assertSameResult(t *testing.T, a, b *Result) {
	t.Helper()
	if a.Z1 != b.Z1 || a.Z2 != b.Z2 {
		t.Fatalf("limits differ: %v..%v vs %v..%v", a.Z1, a.Z2, b.Z1, b.Z2)
	}
	pa, pb := a.Display.Pix(), b.Display.Pix()
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("pixel %d differs: %d vs %d", i, pa[i], pb[i])
		}
	}
}

func TestScale_LimitsWithinDataRange(t *testing.T) {
	g := mustGrid(t, 64, 64, noisy(64, 64, 11))

	res, err := Scale(g, DefaultContrast, NewSource(1))
	if err != nil {
		t.Fatalf("scale: %v", err)
	}
	s := g.Stats()
	if res.Z1 < s.Min || res.Z2 > s.Max || res.Z1 > res.Z2 {
		t.Errorf("limits %v..%v outside data %v..%v", res.Z1, res.Z2, s.Min, s.Max)
	}
	// The spikes sit far above the window and must saturate.
	if got := res.Display.At(63, 63); got != 255 {
		t.Errorf("spike at sample (0,0): got %d, want 255", got)
	}
}

func TestScale_ConstantImageIsBlack(t *testing.T) {
	values := make([]float64, 20*20)
	for i := range values {
		values[i] = 1234.5
	}
	g := mustGrid(t, 20, 20, values)

	res, err := Scale(g, DefaultContrast, NewSource(5))
	if err != nil {
		t.Fatalf("scale: %v", err)
	}
	if res.Z2-res.Z1 >= Epsilon {
		t.Errorf("range: got %v", res.Z2-res.Z1)
	}
	for i, p := range res.Display.Pix() {
		if p != 0 {
			t.Fatalf("pixel %d: got %d, want 0", i, p)
		}
	}
}

func TestScale_Mirroring(t *testing.T) {
	const w, h = 17, 11
	g := mustGrid(t, w, h, noisy(w, h, 23))

	res, err := Scale(g, 0.5, NewSource(8))
	if err != nil {
		t.Fatalf("scale: %v", err)
	}
	byteScale := 0.0
	if r := res.Z2 - res.Z1; r >= Epsilon {
		byteScale = 255 / r
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			want := intensity(g.At(x, y), res.Z1, byteScale)
			if got := res.Display.At(w-1-x, h-1-y); got != want {
				t.Fatalf("sample (%d,%d): display got %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestScale_SmallestImage(t *testing.T) {
	g := mustGrid(t, 3, 3, ramp(9))

	res, err := Scale(g, DefaultContrast, NewSource(1))
	if err != nil {
		t.Fatalf("scale: %v", err)
	}
	// Only the centre pixel can be drawn.
	if res.Samples != 1 || res.Median != 4 {
		t.Errorf("sample: got %d values, median %v", res.Samples, res.Median)
	}
	if res.Z1 != 4 || res.Z2 != 4 {
		t.Errorf("limits: got %v..%v", res.Z1, res.Z2)
	}
}

func TestScale_InsufficientData(t *testing.T) {
	for _, dims := range [][2]int{{2, 10}, {10, 2}, {0, 0}} {
		g := mustGrid(t, dims[0], dims[1], ramp(dims[0]*dims[1]))
		if _, err := Scale(g, DefaultContrast, NewSource(1)); !errors.Is(err, ErrInsufficientData) {
			t.Errorf("%dx%d: got %v, want ErrInsufficientData", dims[0], dims[1], err)
		}
	}
}

func TestScale_BadContrast(t *testing.T) {
	g := mustGrid(t, 5, 5, ramp(25))
	for _, c := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := Scale(g, c, NewSource(1)); !errors.Is(err, ErrBadContrast) {
			t.Errorf("contrast %v: got %v", c, err)
		}
	}
}

func TestScale_IgnoresNaNSamples(t *testing.T) {
	values := ramp(100)
	for i := range values {
		if i%2 == 0 {
			values[i] = math.NaN()
		}
	}
	g := mustGrid(t, 10, 10, values)

	res, err := Scale(g, DefaultContrast, NewSource(4))
	if err != nil {
		t.Fatalf("scale: %v", err)
	}
	if math.IsNaN(res.Z1) || math.IsNaN(res.Z2) {
		t.Fatalf("limits: got %v..%v", res.Z1, res.Z2)
	}
	// NaN samples render black.
	if got := res.Display.At(9, 9); got != 0 {
		t.Errorf("NaN sample: got %d", got)
	}
}

func TestLinear(t *testing.T) {
	g := mustGrid(t, 2, 2, []float64{10, 20, 30, 40})

	res := Linear(g)
	if res.Z1 != 10 || res.Z2 != 40 {
		t.Errorf("limits: got %v..%v", res.Z1, res.Z2)
	}
	want := []uint8{255, 170, 85, 0}
	got := res.Display.Pix()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pix %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestAuto_FallsBackToLinear(t *testing.T) {
	g := mustGrid(t, 4, 2, ramp(8))

	res, fallback, err := Auto(g, DefaultContrast, NewSource(1))
	if err != nil {
		t.Fatalf("auto: %v", err)
	}
	if !fallback {
		t.Error("fallback not reported")
	}
	if res.Z1 != 0 || res.Z2 != 7 {
		t.Errorf("limits: got %v..%v", res.Z1, res.Z2)
	}

	big := mustGrid(t, 8, 8, ramp(64))
	if _, fallback, err := Auto(big, DefaultContrast, NewSource(1)); err != nil || fallback {
		t.Errorf("8x8: fallback=%v err=%v", fallback, err)
	}
}

func TestDisplayImage(t *testing.T) {
	g := mustGrid(t, 3, 2, ramp(6))
	d := Linear(g).Display

	img := d.Image()
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Fatalf("bounds: got %v", img.Bounds())
	}
	if img.GrayAt(0, 0).Y != d.At(0, 0) || img.GrayAt(2, 1).Y != d.At(2, 1) {
		t.Error("image does not match display")
	}
	img.Pix[0] = 1
	if d.At(0, 0) == 1 && d.Pix()[0] == 1 {
		t.Error("image shares display memory")
	}
}
