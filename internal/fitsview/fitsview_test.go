package fitsview

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/AnyUserName/fitsview/internal/fitstest"
	"github.com/AnyUserName/fitsview/internal/header"
	"github.com/AnyUserName/fitsview/internal/pixel"
	"github.com/AnyUserName/fitsview/internal/zscale"
)

func TestRead_FullPipeline(t *testing.T) {
	data := fitstest.Image(16, 10, 5, fitstest.Ramp(50))

	img, err := Read(bytes.NewReader(data), Options{Source: zscale.NewSource(1)})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if img.Header.Width() != 10 || img.Grid.Height() != 5 {
		t.Fatalf("geometry: header %d, grid %d", img.Header.Width(), img.Grid.Height())
	}
	if img.Display == nil || img.Display.Width() != 10 || img.Display.Height() != 5 {
		t.Fatal("display missing or wrong size")
	}
	if img.Fallback {
		t.Error("unexpected fallback for 10x5")
	}
	if img.Z1 > img.Z2 {
		t.Errorf("limits: %v > %v", img.Z1, img.Z2)
	}
}

func TestRead_SeededIsReproducible(t *testing.T) {
	data := fitstest.Image(-32, 40, 30, fitstest.Ramp(1200))

	a, err := Read(bytes.NewReader(data), Options{Source: zscale.NewSource(77)})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	b, err := Read(bytes.NewReader(data), Options{Source: zscale.NewSource(77)})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if a.Z1 != b.Z1 || a.Z2 != b.Z2 || !bytes.Equal(a.Display.Pix(), b.Display.Pix()) {
		t.Error("same seed produced different output")
	}
}

func TestRead_HeaderOnly(t *testing.T) {
	data := fitstest.Header(fitstest.ImageCards(16, 100, 100)...)

	img, err := Read(bytes.NewReader(data), Options{HeaderOnly: true})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if img.Grid != nil || img.Display != nil {
		t.Error("payload decoded despite HeaderOnly")
	}
	if img.Header.Width() != 100 {
		t.Errorf("width: got %d", img.Header.Width())
	}
}

func TestRead_NoDisplay(t *testing.T) {
	data := fitstest.Image(8, 4, 4, fitstest.Ramp(16))

	img, err := Read(bytes.NewReader(data), Options{NoDisplay: true})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if img.Grid == nil || img.Display != nil {
		t.Error("expected grid without display")
	}
}

func TestRead_SmallImageFallsBack(t *testing.T) {
	data := fitstest.Image(16, 2, 2, []float64{1, 2, 3, 4})

	img, err := Read(bytes.NewReader(data), Options{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !img.Fallback || img.Z1 != 1 || img.Z2 != 4 {
		t.Errorf("fallback=%v limits %v..%v", img.Fallback, img.Z1, img.Z2)
	}
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"no end", bytes.Repeat([]byte(" "), header.BlockSize), header.ErrMalformedHeader},
		{"truncated", fitstest.Header(fitstest.ImageCards(16, 10, 10)...), pixel.ErrTruncatedData},
		{"bitpix", append(fitstest.Header(fitstest.ImageCards(12, 2, 2)...), make([]byte, header.BlockSize)...), pixel.ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(tt.data), Options{})
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRead_BadContrast(t *testing.T) {
	data := fitstest.Image(16, 10, 10, fitstest.Ramp(100))
	if _, err := Read(bytes.NewReader(data), Options{Contrast: -1}); !errors.Is(err, zscale.ErrBadContrast) {
		t.Errorf("got %v", err)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ramp.fits")
	if err := os.WriteFile(path, fitstest.Image(32, 8, 8, fitstest.Ramp(64)), 0o644); err != nil {
		t.Fatal(err)
	}

	img, err := Open(path, Options{Source: zscale.NewSource(3)})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if img.Grid.Stats().Max != 63 {
		t.Errorf("max: got %v", img.Grid.Stats().Max)
	}

	if _, err := Open(filepath.Join(dir, "missing.fits"), Options{}); !errors.Is(err, header.ErrIO) {
		t.Errorf("missing file: got %v", err)
	}
}

func TestRescale(t *testing.T) {
	g, err := pixel.NewGrid(10, 10, fitstest.Ramp(100))
	if err != nil {
		t.Fatal(err)
	}
	narrow, _, err := Rescale(g, 2, zscale.NewSource(5))
	if err != nil {
		t.Fatalf("rescale: %v", err)
	}
	wide, _, err := Rescale(g, 0.1, zscale.NewSource(5))
	if err != nil {
		t.Fatalf("rescale: %v", err)
	}
	if narrow.Z2-narrow.Z1 > wide.Z2-wide.Z1 {
		t.Errorf("higher contrast gave a wider window: %v vs %v", narrow.Z2-narrow.Z1, wide.Z2-wide.Z1)
	}
}
