package profile

import "sort"

// Profile defines how a FITS image is rendered to preview files.
type Profile struct {
	Name     string   `yaml:"-"`
	Widths   []int    `yaml:"widths,omitempty"`   // target widths; empty means full size only
	Formats  []string `yaml:"formats"`            // output formats in priority order
	Quality  int      `yaml:"quality,omitempty"`  // lossy encoding quality 1-100, 0 = encoder default
	Contrast float64  `yaml:"contrast,omitempty"` // zscale contrast, 0 = default
}

// Default is used when a requested profile is unknown.
const Default = "preview"

// Built-in profiles.
var profiles = map[string]Profile{
	"preview": {
		Name:     "preview",
		Widths:   []int{512, 1024},
		Formats:  []string{"png"},
		Contrast: 0.25,
	},
	"archive": {
		Name:    "archive",
		Formats: []string{"png", "tiff"},
	},
	"web": {
		Name:    "web",
		Widths:  []int{256, 512, 1024},
		Formats: []string{"jpeg", "png"},
		Quality: 85,
	},
	"quicklook": {
		Name:    "quicklook",
		Widths:  []int{256},
		Formats: []string{"jpeg"},
		Quality: 75,
	},
}

// Get returns a built-in profile by name. Falls back to preview if unknown.
func Get(name string) Profile {
	return Resolve(name, nil)
}

// Resolve looks name up in custom first, then in the built-ins. Unknown
// names get the preview settings under the requested name.
func Resolve(name string, custom map[string]Profile) Profile {
	if p, ok := custom[name]; ok {
		p.Name = name
		return p.clone()
	}
	if p, ok := profiles[name]; ok {
		return p.clone()
	}
	p := profiles[Default].clone()
	p.Name = name // preserve requested name
	return p
}

// Known reports whether name is a built-in profile.
func Known(name string) bool {
	_, ok := profiles[name]
	return ok
}

// Names lists the built-in profiles in sorted order.
func Names() []string {
	out := make([]string, 0, len(profiles))
	for n := range profiles {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// clone keeps callers from mutating the shared slices of built-ins.
func (p Profile) clone() Profile {
	p.Widths = append([]int(nil), p.Widths...)
	p.Formats = append([]string(nil), p.Formats...)
	return p
}

// EffectiveWidths returns the widths to render for an image of the given
// width, in profile order. Widths larger than the original are skipped;
// the original width is used when nothing else remains.
func (p Profile) EffectiveWidths(originalWidth int) []int {
	seen := map[int]bool{}
	var result []int

	for _, w := range p.Widths {
		if w <= 0 || w > originalWidth {
			continue // don't upscale
		}
		if !seen[w] {
			seen[w] = true
			result = append(result, w)
		}
	}

	if len(result) == 0 && originalWidth > 0 {
		result = append(result, originalWidth)
	}
	return result
}
