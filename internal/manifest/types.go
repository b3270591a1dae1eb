package manifest

// Manifest is the top-level output of a fitsview render run.
type Manifest struct {
	Version     int              `json:"version"`
	GeneratedAt string           `json:"generated_at"`
	Profile     string           `json:"profile"`
	BasePath    string           `json:"base_path"`
	BuildInfo   *BuildInfo       `json:"build_info,omitempty"`
	Assets      map[string]Asset `json:"assets"`
	Stats       Stats            `json:"stats"`
}

// BuildInfo captures run parameters needed to reproduce the previews.
type BuildInfo struct {
	Workers int   `json:"workers"`
	Seed    int64 `json:"seed"` // run seed; per-asset seeds are derived from it
}

// Asset describes a single FITS file and all previews rendered from it.
type Asset struct {
	Original    OriginalInfo `json:"original"`
	Header      HeaderInfo   `json:"header"`
	Pixels      PixelInfo    `json:"pixels"`
	Scale       ScaleInfo    `json:"scale"`
	AspectRatio float64      `json:"aspect_ratio"` // width / height
	Variants    []Variant    `json:"variants"`
}

// OriginalInfo holds metadata about the source file.
type OriginalInfo struct {
	Path   string `json:"path"` // relative to the input root
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Bitpix int    `json:"bitpix"`
	Size   int64  `json:"size"`
	Hash   string `json:"hash"` // xxhash64 of the whole file
}

// HeaderInfo summarizes the primary header.
type HeaderInfo struct {
	Records    int      `json:"records"`
	DataOffset int64    `json:"data_offset"`
	Bzero      *float64 `json:"bzero,omitempty"`
	Bscale     *float64 `json:"bscale,omitempty"`
}

// PixelInfo holds sample statistics. Values that are not finite (e.g. for
// an empty image) are omitted.
type PixelInfo struct {
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Mean   *float64 `json:"mean,omitempty"`
	StdDev *float64 `json:"stddev,omitempty"`
	Median *float64 `json:"median,omitempty"`
	MAD    *float64 `json:"mad,omitempty"`
	P01    *float64 `json:"p01,omitempty"`
	P99    *float64 `json:"p99,omitempty"`
}

// ScaleInfo records the display limits used for every variant.
type ScaleInfo struct {
	Z1       *float64 `json:"z1,omitempty"`
	Z2       *float64 `json:"z2,omitempty"`
	Contrast float64  `json:"contrast"`
	Seed     int64    `json:"seed"`
	Fallback bool     `json:"fallback,omitempty"` // min/max stretch was used
}

// Variant is one encoded preview at a specific size and format.
type Variant struct {
	Format string `json:"format"` // "png", "jpeg", "tiff", "bmp"
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size"` // bytes on disk
	Hash   string `json:"hash"` // 16 hex chars of xxhash64
	Path   string `json:"path"` // relative to base_path
}

// Stats aggregates run metrics.
type Stats struct {
	TotalInputBytes  int64 `json:"total_input_bytes"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
	TotalAssets      int   `json:"total_assets"`
	TotalVariants    int   `json:"total_variants"`
	Fallbacks        int   `json:"fallbacks,omitempty"`
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1

// FileName is the manifest name inside an output directory.
const FileName = "fitsview.manifest.json"
