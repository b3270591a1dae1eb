package encoder

import (
	"image"
)

// Encoder encodes a rendered preview to a specific format.
type Encoder interface {
	// Format returns the output format name (e.g. "png", "jpeg", "tiff").
	Format() string

	// Encode converts the image to bytes. quality (1-100) only applies to
	// lossy formats; 0 selects the encoder default.
	Encode(img image.Image, quality int) ([]byte, error)

	// Extension returns the file extension without dot.
	Extension() string
}
