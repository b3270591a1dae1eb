// Package fitsview runs the header, pixel and scaling stages for a single
// FITS file and hands back the combined result.
package fitsview

import (
	"fmt"
	"io"
	"os"

	"github.com/AnyUserName/fitsview/internal/header"
	"github.com/AnyUserName/fitsview/internal/pixel"
	"github.com/AnyUserName/fitsview/internal/zscale"
)

// Options controls how much of a file is processed.
type Options struct {
	// Contrast for the zscale stretch. Zero means zscale.DefaultContrast.
	Contrast float64
	// Source picks sample coordinates. Nil means an entropy-seeded source.
	Source zscale.Source
	// HeaderOnly stops after the header is parsed.
	HeaderOnly bool
	// NoDisplay decodes the pixels but skips the stretch.
	NoDisplay bool
}

func (o Options) contrast() float64 {
	if o.Contrast == 0 {
		return zscale.DefaultContrast
	}
	return o.Contrast
}

// Image is everything derived from one file. Grid is nil when
// HeaderOnly was set; Display is nil when HeaderOnly or NoDisplay was set.
type Image struct {
	Header  *header.Header
	Grid    *pixel.Grid
	Display *zscale.Display
	Z1, Z2  float64

	// Fallback is set when the image was too small to sample and the
	// min/max stretch was used instead.
	Fallback bool
}

// Open reads the FITS file at path.
func Open(path string, opts Options) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", header.ErrIO, err)
	}
	defer f.Close()

	img, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Read parses and decodes a FITS stream positioned at its first byte.
func Read(r io.ReadSeeker, opts Options) (*Image, error) {
	h, err := header.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}
	img := &Image{Header: h}
	if opts.HeaderOnly {
		return img, nil
	}

	g, err := pixel.Decode(r, h)
	if err != nil {
		return nil, fmt.Errorf("decode pixels: %w", err)
	}
	img.Grid = g
	if opts.NoDisplay {
		return img, nil
	}

	res, fallback, err := zscale.Auto(g, opts.contrast(), opts.Source)
	if err != nil {
		return nil, fmt.Errorf("scale: %w", err)
	}
	img.Display = res.Display
	img.Z1, img.Z2 = res.Z1, res.Z2
	img.Fallback = fallback
	return img, nil
}

// Rescale re-runs the stretch on an already decoded grid, e.g. with a
// different contrast. Zero contrast means zscale.DefaultContrast.
func Rescale(g *pixel.Grid, contrast float64, src zscale.Source) (*zscale.Result, bool, error) {
	return zscale.Auto(g, Options{Contrast: contrast}.contrast(), src)
}
