package pipeline

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AnyUserName/fitsview/internal/fitstest"
	"github.com/AnyUserName/fitsview/internal/hasher"
	"github.com/AnyUserName/fitsview/internal/profile"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func sky(w, h int) []float64 {
	out := make([]float64, w*h)
	for i := range out {
		out[i] = float64(1000 + (i*7919)%200)
	}
	return out
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "m31", "frame-001.fits"), fitstest.Image(16, 64, 48, sky(64, 48)))
	writeFile(t, filepath.Join(dir, "flat.FIT"), fitstest.Image(-32, 40, 40, fitstest.Ramp(1600)))
	writeFile(t, filepath.Join(dir, "broken.fts"), []byte("not a fits file"))
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("ignored"))
	writeFile(t, filepath.Join(dir, ".cache", "hidden.fits"), fitstest.Image(8, 4, 4, fitstest.Ramp(16)))
	return dir
}

func TestScan(t *testing.T) {
	dir := fixtureDir(t)

	sources, err := Scan(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	var keys []string
	for _, s := range sources {
		keys = append(keys, s.Key)
	}
	if got := strings.Join(keys, ","); got != "broken,flat,m31/frame-001" {
		t.Errorf("keys: got %s", got)
	}

	single, err := Scan(filepath.Join(dir, "m31", "frame-001.fits"))
	if err != nil {
		t.Fatalf("scan file: %v", err)
	}
	if len(single) != 1 || single[0].Key != "frame-001" || single[0].Size == 0 {
		t.Errorf("single: got %+v", single)
	}
}

func TestScan_DuplicateKeys(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.fits"), []byte{})
	writeFile(t, filepath.Join(dir, "a.fit"), []byte{})

	if _, err := Scan(dir); err == nil {
		t.Error("expected duplicate key error")
	}
}

func TestRun_PartialFailure(t *testing.T) {
	in := fixtureDir(t)
	out := t.TempDir()

	prof := profile.Profile{Name: "t", Widths: []int{32}, Formats: []string{"png", "jpeg"}}
	m, err := New(Config{Input: in, OutputDir: out, Profile: prof, Workers: 2, Seed: 5}).Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(m.Assets) != 2 {
		t.Fatalf("assets: got %d, want 2", len(m.Assets))
	}
	if _, ok := m.Assets["broken"]; ok {
		t.Error("broken file in manifest")
	}
	if m.Stats.TotalVariants != 4 {
		t.Errorf("variants: got %d, want 4", m.Stats.TotalVariants)
	}

	a := m.Assets["m31/frame-001"]
	if a.Original.Width != 64 || a.Original.Bitpix != 16 || a.Header.DataOffset != 2880 {
		t.Errorf("original: got %+v %+v", a.Original, a.Header)
	}
	if a.Scale.Z1 == nil || a.Scale.Z2 == nil || *a.Scale.Z1 > *a.Scale.Z2 {
		t.Errorf("limits: got %+v", a.Scale)
	}
	if a.Scale.Seed != hasher.Seed(5, "m31/frame-001") {
		t.Errorf("seed: got %d", a.Scale.Seed)
	}

	for _, v := range a.Variants {
		if v.Width != 32 || v.Height != 24 {
			t.Errorf("%s: size %dx%d", v.Path, v.Width, v.Height)
		}
		data, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(v.Path)))
		if err != nil {
			t.Fatalf("read variant: %v", err)
		}
		want := fmt.Sprintf("m31/frame-001.32.24.%s.", hasher.ContentHash(data, 8))
		if !strings.HasPrefix(v.Path, want) {
			t.Errorf("path %s, want prefix %s", v.Path, want)
		}
		if v.Hash != hasher.ContentHash(data, 16) || v.Size != int64(len(data)) {
			t.Errorf("%s: hash/size mismatch", v.Path)
		}
	}
}

func TestRun_FullSizeIsGrey(t *testing.T) {
	in := t.TempDir()
	writeFile(t, filepath.Join(in, "ramp.fits"), fitstest.Image(16, 10, 10, fitstest.Ramp(100)))
	out := t.TempDir()

	m, err := New(Config{Input: in, OutputDir: out, Profile: profile.Get("archive"), Seed: 1}).Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	a := m.Assets["ramp"]
	if len(a.Variants) != 2 {
		t.Fatalf("variants: got %+v", a.Variants)
	}
	pngPath := a.Variants[0].Path
	if a.Variants[0].Format != "png" || a.Variants[1].Format != "tiff" {
		t.Fatalf("formats: got %+v", a.Variants)
	}

	data, err := os.ReadFile(filepath.Join(out, pngPath))
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 10 || b.Dy() != 10 {
		t.Errorf("bounds: got %v", b)
	}
}

func TestRun_Reproducible(t *testing.T) {
	in := fixtureDir(t)
	prof := profile.Get("quicklook")

	run := func(workers int) map[string]string {
		m, err := New(Config{Input: in, OutputDir: t.TempDir(), Profile: prof, Workers: workers, Seed: 77}).Run()
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		out := map[string]string{}
		for k, a := range m.Assets {
			for _, v := range a.Variants {
				out[k+"/"+v.Format] = v.Hash
			}
		}
		return out
	}

	a, b := run(1), run(4)
	if len(a) == 0 || len(a) != len(b) {
		t.Fatalf("variant counts: %d vs %d", len(a), len(b))
	}
	for k, h := range a {
		if b[k] != h {
			t.Errorf("%s: %s vs %s", k, h, b[k])
		}
	}
}

func TestRun_AllFail(t *testing.T) {
	in := t.TempDir()
	writeFile(t, filepath.Join(in, "bad.fits"), []byte("garbage"))

	_, err := New(Config{Input: in, OutputDir: t.TempDir(), Profile: profile.Get("preview")}).Run()
	if err == nil || !strings.Contains(err.Error(), "all 1 files failed") {
		t.Errorf("got %v", err)
	}
}

func TestRun_Empty(t *testing.T) {
	_, err := New(Config{Input: t.TempDir(), OutputDir: t.TempDir()}).Run()
	if err == nil || !strings.Contains(err.Error(), "no FITS files") {
		t.Errorf("got %v", err)
	}
}
