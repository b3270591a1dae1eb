package encoder

import (
	"fmt"
	"strings"
)

// order is the priority order used for listings and fallbacks.
var order = []string{"png", "jpeg", "tiff", "bmp"}

// aliases maps alternative spellings to format names.
var aliases = map[string]string{
	"jpg": "jpeg",
	"tif": "tiff",
}

// Normalize lower-cases a format name and resolves aliases.
func Normalize(format string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	if a, ok := aliases[f]; ok {
		return a
	}
	return f
}

// Supported reports whether format (or an alias of it) has an encoder.
func Supported(format string) bool {
	f := Normalize(format)
	for _, o := range order {
		if o == f {
			return true
		}
	}
	return false
}

// Registry holds the encoders by format name.
type Registry struct {
	encoders map[string]Encoder
}

// NewRegistry creates a registry with every built-in encoder.
func NewRegistry() *Registry {
	r := &Registry{
		encoders: make(map[string]Encoder),
	}
	for _, enc := range []Encoder{
		&PNGEncoder{},
		&JPEGEncoder{},
		&TIFFEncoder{},
		&BMPEncoder{},
	} {
		r.encoders[enc.Format()] = enc
	}
	return r
}

// Get returns an encoder for the given format, or nil if unknown.
func (r *Registry) Get(format string) Encoder {
	return r.encoders[Normalize(format)]
}

// Available returns all format names in priority order.
func (r *Registry) Available() []string {
	var result []string
	for _, f := range order {
		if _, ok := r.encoders[f]; ok {
			result = append(result, f)
		}
	}
	return result
}

// ResolveFormats filters requested formats to known ones, dropping
// duplicates. PNG is used when nothing usable was requested.
func (r *Registry) ResolveFormats(requested []string) []string {
	var resolved []string
	seen := map[string]bool{}

	for _, f := range requested {
		f = Normalize(f)
		if _, ok := r.encoders[f]; ok && !seen[f] {
			resolved = append(resolved, f)
			seen[f] = true
		}
	}

	if len(resolved) == 0 && r.encoders["png"] != nil {
		resolved = append(resolved, "png")
	}
	return resolved
}

// String returns a summary of available encoders.
func (r *Registry) String() string {
	avail := r.Available()
	if len(avail) == 0 {
		return "no encoders available"
	}
	return fmt.Sprintf("encoders: %s", strings.Join(avail, ", "))
}
