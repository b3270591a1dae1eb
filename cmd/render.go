package cmd

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/fitsview/internal/encoder"
	"github.com/AnyUserName/fitsview/internal/manifest"
	"github.com/AnyUserName/fitsview/internal/pipeline"
)

var (
	renderOutDir   string
	renderProfile  string
	renderWorkers  int
	renderWidths   []int
	renderFormats  []string
	renderQuality  int
	renderContrast float64
	renderSeed     int64
)

var renderCmd = &cobra.Command{
	Use:   "render <file_or_dir>",
	Short: "Render FITS files to zscale-stretched previews + manifest",
	Long: `Renders one FITS file, or every .fits/.fit/.fts file under a directory,
to 8-bit greyscale previews. Display limits come from a zscale fit over a
random sample of interior pixels; the sample is seeded per file from --seed,
so the same seed reproduces the same previews.

Output filenames are content-addressed: <key>.<w>.<h>.<hash>.<ext>`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderOutDir, "out", "o", "", "output directory (default from config, ./fitsview_out)")
	f.StringVarP(&renderProfile, "profile", "p", "", "render profile (default from config, preview)")
	f.IntVarP(&renderWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	f.IntSliceVar(&renderWidths, "widths", nil, "custom widths (overrides profile)")
	f.StringSliceVar(&renderFormats, "formats", nil, "output formats: png, jpeg, tiff, bmp (overrides profile)")
	f.IntVarP(&renderQuality, "quality", "q", 0, "jpeg quality 1-100 (0 = profile default)")
	f.Float64VarP(&renderContrast, "contrast", "c", 0, "zscale contrast (0 = profile default)")
	f.Int64Var(&renderSeed, "seed", 0, "sampling seed (0 = random, recorded in the manifest)")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	start := time.Now()

	absInput, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	outDir := cfg.Out
	if cmd.Flags().Changed("out") {
		outDir = renderOutDir
	}
	absOutput, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	prof := cfg.ResolveProfile(renderProfile)
	if renderWidths != nil {
		prof.Widths = renderWidths
	}
	if renderFormats != nil {
		for _, f := range renderFormats {
			if !encoder.Supported(f) {
				return fmt.Errorf("unknown format %q", f)
			}
		}
		prof.Formats = renderFormats
	}
	if renderQuality > 0 {
		prof.Quality = renderQuality
	}

	contrast := cfg.Contrast
	if cmd.Flags().Changed("contrast") {
		if !(renderContrast > 0) {
			return fmt.Errorf("--contrast must be > 0, got %v", renderContrast)
		}
		contrast = renderContrast
	}

	workers := cfg.Workers
	if cmd.Flags().Changed("workers") {
		workers = renderWorkers
	}

	seed := cfg.Seed
	if cmd.Flags().Changed("seed") {
		seed = renderSeed
	}
	if seed == 0 {
		seed = rand.Int63()
	}

	logVerbose("input:   %s", absInput)
	logVerbose("output:  %s", absOutput)
	logVerbose("profile: %s (widths=%v, formats=%v, quality=%d)", prof.Name, prof.Widths, prof.Formats, prof.Quality)
	logVerbose("seed:    %d", seed)

	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	p := pipeline.New(pipeline.Config{
		Input:     absInput,
		OutputDir: absOutput,
		Profile:   prof,
		Workers:   workers,
		Verbose:   verbose,
		Seed:      seed,
		Contrast:  contrast,
	})

	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	manifestPath := filepath.Join(absOutput, manifest.FileName)
	if err := manifest.WriteJSON(m, manifestPath); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	printRenderReport(m, time.Since(start))
	return nil
}

func printRenderReport(m *manifest.Manifest, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("  fitsview render complete")
	fmt.Println()

	s := m.Stats
	fmt.Printf("  Files:       %d\n", s.TotalAssets)
	fmt.Printf("  Previews:    %d\n", s.TotalVariants)
	fmt.Printf("  Input size:  %s\n", formatBytes(s.TotalInputBytes))
	fmt.Printf("  Output size: %s\n", formatBytes(s.TotalOutputBytes))
	if s.Fallbacks > 0 {
		fmt.Printf("  Min/max:     %d files too small for zscale\n", s.Fallbacks)
	}
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	if m.BuildInfo != nil {
		fmt.Printf("  Workers:     %d\n", m.BuildInfo.Workers)
		fmt.Printf("  Seed:        %d\n", m.BuildInfo.Seed)
	}
	fmt.Println()

	// Display limits per file, largest inputs first.
	if len(m.Assets) > 0 {
		keys := make([]string, 0, len(m.Assets))
		for k := range m.Assets {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			si, sj := m.Assets[keys[i]].Original.Size, m.Assets[keys[j]].Original.Size
			if si != sj {
				return si > sj
			}
			return keys[i] < keys[j]
		})
		n := len(keys)
		if n > 10 {
			n = 10
		}
		fmt.Printf("  Top %d largest (size, WxH, z1..z2):\n", n)
		for _, k := range keys[:n] {
			a := m.Assets[k]
			fmt.Printf("    %-40s %8s  %5dx%-5d %s\n",
				truncKey(k, 40),
				formatBytes(a.Original.Size),
				a.Original.Width, a.Original.Height,
				formatLimits(a.Scale),
			)
		}
		fmt.Println()
	}

	fmt.Printf("  Formats:     %s\n", strings.Join(detectOutputFormats(m), ", "))
	data, _ := json.Marshal(m)
	fmt.Printf("  Manifest:    %s (%s)\n", manifest.FileName, formatBytes(int64(len(data))))
	fmt.Println()
}

func formatLimits(s manifest.ScaleInfo) string {
	if s.Z1 == nil || s.Z2 == nil {
		return "n/a"
	}
	out := fmt.Sprintf("%g..%g", *s.Z1, *s.Z2)
	if s.Fallback {
		out += " (min/max)"
	}
	return out
}

func detectOutputFormats(m *manifest.Manifest) []string {
	set := map[string]bool{}
	for _, a := range m.Assets {
		for _, v := range a.Variants {
			set[v.Format] = true
		}
	}
	var out []string
	for _, f := range encoder.NewRegistry().Available() {
		if set[f] {
			out = append(out, f)
		}
	}
	return out
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
