package zscale

import "image"

// Display is an 8-bit intensity image with the same size as the grid it
// was rendered from. It is not modified after it is returned; rescaling
// produces a new Display.
type Display struct {
	width  int
	height int
	pix    []uint8
}

func (d *Display) Width() int  { return d.width }
func (d *Display) Height() int { return d.height }

// At returns the intensity at column x of row y in display orientation.
func (d *Display) At(x, y int) uint8 { return d.pix[y*d.width+x] }

// Pix returns a copy of the row-major intensities.
func (d *Display) Pix() []uint8 {
	out := make([]uint8, len(d.pix))
	copy(out, d.pix)
	return out
}

// Image returns the display as a new *image.Gray.
func (d *Display) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, d.width, d.height))
	copy(img.Pix, d.pix)
	return img
}
