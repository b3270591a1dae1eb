package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/fitsview/internal/fitsview"
	"github.com/AnyUserName/fitsview/internal/hasher"
	"github.com/AnyUserName/fitsview/internal/summary"
	"github.com/AnyUserName/fitsview/internal/zscale"
)

var (
	statsContrast float64
	statsSeed     int64
)

var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Display geometry, pixel statistics and zscale limits of a FITS file",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().Float64VarP(&statsContrast, "contrast", "c", zscale.DefaultContrast, "zscale contrast")
	statsCmd.Flags().Int64Var(&statsSeed, "seed", 0, "sampling seed (0 = config seed, else random)")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	path := args[0]

	opts := fitsview.Options{Contrast: statsContrast}
	if !cmd.Flags().Changed("contrast") && cfg.Contrast > 0 {
		opts.Contrast = cfg.Contrast
	}
	seed := cfg.Seed
	if cmd.Flags().Changed("seed") {
		seed = statsSeed
	}
	if seed != 0 {
		opts.Source = zscale.NewSource(hasher.Seed(seed, path))
	}

	img, err := fitsview.Open(path, opts)
	if err != nil {
		return err
	}
	printStats(path, img, summary.Of(img.Grid))
	return nil
}

func printStats(path string, img *fitsview.Image, sum summary.Summary) {
	h, g := img.Header, img.Grid
	s := g.Stats()

	fmt.Println()
	fmt.Printf("  File:         %s\n", path)
	fmt.Printf("  Geometry:     %d x %d (NAXIS=%d)\n", h.Width(), h.Height(), h.Naxis())
	fmt.Printf("  Format:       BITPIX=%d (%s)\n", h.Bitpix(), h.Format())
	fmt.Printf("  Records:      %d, data at byte %d\n", h.Len(), h.DataOffset())
	fmt.Printf("  BZERO:        %s\n", optional(h.ZeroOffset()))
	fmt.Printf("  BSCALE:       %s\n", optional(h.ScaleFactor()))
	fmt.Println()

	fmt.Printf("  Min:          %g\n", s.Min)
	fmt.Printf("  Max:          %g\n", s.Max)
	fmt.Printf("  Mean:         %g\n", s.Mean)
	fmt.Printf("  Std dev:      %g\n", s.StdDev)
	fmt.Printf("  Median:       %g\n", sum.Median)
	fmt.Printf("  MAD:          %g\n", sum.MAD)
	fmt.Printf("  1%% / 99%%:     %g / %g\n", sum.P01, sum.P99)
	fmt.Println()

	method := "zscale"
	if img.Fallback {
		method = "min/max (image too small for zscale)"
	}
	fmt.Printf("  Display:      z1=%g z2=%g, %s\n", img.Z1, img.Z2, method)

	var warnings []string
	if !h.Simple() {
		warnings = append(warnings, "SIMPLE is not T")
	}
	switch {
	case h.Naxis() > 2:
		warnings = append(warnings, fmt.Sprintf("NAXIS=%d, only the first plane is read", h.Naxis()))
	case h.Naxis() < 2:
		warnings = append(warnings, fmt.Sprintf("NAXIS=%d, geometry taken from NAXIS1/NAXIS2", h.Naxis()))
	}
	if v, ok := h.ScaleFactor(); ok && v != 1 {
		warnings = append(warnings, "BSCALE is not applied to the samples")
	}
	if math.IsNaN(s.Mean) {
		warnings = append(warnings, "mean is NaN (empty image or NaN samples)")
	}
	if len(warnings) > 0 {
		fmt.Println()
		fmt.Printf("  Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("    ! %s\n", w)
		}
	}
	fmt.Println()
}

func optional(v float64, ok bool) string {
	if !ok {
		return "unset"
	}
	return fmt.Sprintf("%g", v)
}
