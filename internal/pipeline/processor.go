package pipeline

import (
	"fmt"
	"image"
	"image/draw"
	"io"
	"math"
	"os"
	"path"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/AnyUserName/fitsview/internal/fitsview"
	"github.com/AnyUserName/fitsview/internal/hasher"
	"github.com/AnyUserName/fitsview/internal/manifest"
	"github.com/AnyUserName/fitsview/internal/summary"
	"github.com/AnyUserName/fitsview/internal/zscale"
)

// processResult holds the result of rendering a single source file.
type processResult struct {
	key   string
	asset manifest.Asset
	err   error
}

// contrast picks the run override, then the profile value, then the default.
func (p *Pipeline) contrast() float64 {
	switch {
	case p.cfg.Contrast > 0:
		return p.cfg.Contrast
	case p.cfg.Profile.Contrast > 0:
		return p.cfg.Profile.Contrast
	}
	return zscale.DefaultContrast
}

// process handles a single file: hash, decode, stretch, resize, encode.
func (p *Pipeline) process(src Source) processResult {
	result := processResult{key: src.Key}

	f, err := os.Open(src.AbsPath)
	if err != nil {
		result.err = fmt.Errorf("open %s: %w", src.RelPath, err)
		return result
	}
	defer f.Close()

	fileHash, err := hasher.ContentHashReader(f, 0)
	if err != nil {
		result.err = fmt.Errorf("hash %s: %w", src.RelPath, err)
		return result
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		result.err = fmt.Errorf("rewind %s: %w", src.RelPath, err)
		return result
	}

	seed := hasher.Seed(p.cfg.Seed, src.Key)
	contrast := p.contrast()
	img, err := fitsview.Read(f, fitsview.Options{
		Contrast: contrast,
		Source:   zscale.NewSource(seed),
	})
	if err != nil {
		result.err = fmt.Errorf("%s: %w", src.RelPath, err)
		return result
	}

	result.asset = describe(src, fileHash, img, summary.Of(img.Grid))
	result.asset.Scale.Contrast = contrast
	result.asset.Scale.Seed = seed
	if img.Fallback {
		p.logf("%s: too small for zscale, using min/max", src.Key)
	}

	variants, err := p.renderVariants(src, img.Display.Image())
	if err != nil {
		result.err = err
		return result
	}
	result.asset.Variants = variants
	return result
}

// describe fills the manifest entry for a decoded file.
func describe(src Source, fileHash string, img *fitsview.Image, sum summary.Summary) manifest.Asset {
	h, g := img.Header, img.Grid
	st := g.Stats()

	a := manifest.Asset{
		Original: manifest.OriginalInfo{
			Path:   src.RelPath,
			Width:  g.Width(),
			Height: g.Height(),
			Bitpix: h.Bitpix(),
			Size:   src.Size,
			Hash:   fileHash,
		},
		Header: manifest.HeaderInfo{
			Records:    h.Len(),
			DataOffset: h.DataOffset(),
		},
		Pixels: manifest.PixelInfo{
			Min:    manifest.Float(st.Min),
			Max:    manifest.Float(st.Max),
			Mean:   manifest.Float(st.Mean),
			StdDev: manifest.Float(st.StdDev),
			Median: manifest.Float(sum.Median),
			MAD:    manifest.Float(sum.MAD),
			P01:    manifest.Float(sum.P01),
			P99:    manifest.Float(sum.P99),
		},
		Scale: manifest.ScaleInfo{
			Z1:       manifest.Float(img.Z1),
			Z2:       manifest.Float(img.Z2),
			Fallback: img.Fallback,
		},
	}
	if v, ok := h.ZeroOffset(); ok {
		a.Header.Bzero = manifest.Float(v)
	}
	if v, ok := h.ScaleFactor(); ok {
		a.Header.Bscale = manifest.Float(v)
	}
	if g.Height() > 0 {
		a.AspectRatio = float64(g.Width()) / float64(g.Height())
	}
	return a
}

// renderVariants resizes the display to every profile width and writes
// one content-addressed file per width and format.
func (p *Pipeline) renderVariants(src Source, display *image.Gray) ([]manifest.Variant, error) {
	origW, origH := display.Rect.Dx(), display.Rect.Dy()
	if origW == 0 || origH == 0 {
		return nil, nil
	}

	widths := p.cfg.Profile.EffectiveWidths(origW)
	formats := p.registry.ResolveFormats(p.cfg.Profile.Formats)

	keyDir := path.Dir(src.Key)
	if keyDir != "." {
		if err := os.MkdirAll(filepath.Join(p.cfg.OutputDir, filepath.FromSlash(keyDir)), 0o755); err != nil {
			return nil, fmt.Errorf("create output dir for %s: %w", src.Key, err)
		}
	}

	var variants []manifest.Variant
	for _, w := range widths {
		h := int(math.Round(float64(origH) * float64(w) / float64(origW)))
		if h < 1 {
			h = 1
		}

		var frame image.Image = display
		if w != origW {
			frame = toGray(imaging.Resize(display, w, h, imaging.Lanczos))
		}

		for _, format := range formats {
			enc := p.registry.Get(format)
			if enc == nil {
				continue
			}

			data, err := enc.Encode(frame, p.cfg.Profile.Quality)
			if err != nil {
				p.logf("warn: encode %s@%dx%d as %s: %v", src.Key, w, h, format, err)
				continue
			}

			contentHash := hasher.ContentHash(data, 16)

			// key.w.h.hash.ext
			fileName := fmt.Sprintf("%s.%d.%d.%s.%s",
				path.Base(src.Key), w, h, contentHash[:8], enc.Extension())
			relPath := path.Join(keyDir, fileName)

			outPath := filepath.Join(p.cfg.OutputDir, filepath.FromSlash(relPath))
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return nil, fmt.Errorf("write %s: %w", relPath, err)
			}

			variants = append(variants, manifest.Variant{
				Format: format,
				Width:  w,
				Height: h,
				Size:   int64(len(data)),
				Hash:   contentHash,
				Path:   relPath,
			})
		}
	}
	return variants, nil
}

// toGray converts a resized frame back to a single channel.
func toGray(img image.Image) *image.Gray {
	out := image.NewGray(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}
