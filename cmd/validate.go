package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/fitsview/internal/encoder"
	"github.com/AnyUserName/fitsview/internal/hasher"
	"github.com/AnyUserName/fitsview/internal/manifest"
)

var validateCmd = &cobra.Command{
	Use:   "validate <manifest_path_or_dir>",
	Short: "Validate a fitsview manifest and check referenced previews",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	manifestPath := args[0]
	if info, err := os.Stat(manifestPath); err == nil && info.IsDir() {
		manifestPath = filepath.Join(manifestPath, manifest.FileName)
	}

	m, err := manifest.ReadJSON(manifestPath)
	if err != nil {
		return err
	}
	logVerbose("validating %s", manifestPath)

	errs := validateManifest(m, filepath.Dir(manifestPath))
	if len(errs) == 0 {
		fmt.Println("  ✓ Manifest is valid")
		fmt.Printf("  ✓ %d files, %d previews, all present and matching\n", m.Stats.TotalAssets, m.Stats.TotalVariants)
		return nil
	}

	fmt.Printf("  ✗ Manifest has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}

func validateManifest(m *manifest.Manifest, baseDir string) []string {
	var errs []string

	if m.Version != manifest.SupportedManifestVersion {
		errs = append(errs, fmt.Sprintf("unsupported manifest version: %d", m.Version))
	}

	for key, asset := range m.Assets {
		o := asset.Original
		if o.Width < 0 || o.Height < 0 {
			errs = append(errs, fmt.Sprintf("asset %q: invalid original dimensions %dx%d",
				key, o.Width, o.Height))
		}
		if o.Hash == "" {
			errs = append(errs, fmt.Sprintf("asset %q: missing source hash", key))
		}

		s := asset.Scale
		if s.Z1 != nil && s.Z2 != nil && *s.Z1 > *s.Z2 {
			errs = append(errs, fmt.Sprintf("asset %q: z1 %g > z2 %g", key, *s.Z1, *s.Z2))
		}

		// Empty images render no previews.
		if len(asset.Variants) == 0 && o.Width > 0 && o.Height > 0 {
			errs = append(errs, fmt.Sprintf("asset %q: no variants", key))
		}

		seenPaths := map[string]bool{}
		for i, v := range asset.Variants {
			if !encoder.Supported(v.Format) {
				errs = append(errs, fmt.Sprintf("asset %q variant[%d]: unknown format %q", key, i, v.Format))
			}
			if v.Width <= 0 || v.Height <= 0 {
				errs = append(errs, fmt.Sprintf("asset %q variant[%d]: invalid dimensions %dx%d",
					key, i, v.Width, v.Height))
			}
			if v.Width > o.Width {
				errs = append(errs, fmt.Sprintf("asset %q variant[%d]: width %d exceeds original %d",
					key, i, v.Width, o.Width))
			}
			if v.Hash == "" {
				errs = append(errs, fmt.Sprintf("asset %q variant[%d]: missing hash", key, i))
			}
			if v.Path == "" {
				errs = append(errs, fmt.Sprintf("asset %q variant[%d]: missing path", key, i))
				continue
			}

			if seenPaths[v.Path] {
				errs = append(errs, fmt.Sprintf("asset %q variant[%d]: duplicate path %q", key, i, v.Path))
			}
			seenPaths[v.Path] = true

			if msg := checkVariantFile(filepath.Join(baseDir, filepath.FromSlash(v.Path)), v); msg != "" {
				errs = append(errs, fmt.Sprintf("asset %q variant[%d]: %s", key, i, msg))
			}
		}
	}

	// Verify stats consistency.
	assetCount := len(m.Assets)
	variantCount := 0
	for _, a := range m.Assets {
		variantCount += len(a.Variants)
	}
	if m.Stats.TotalAssets != assetCount {
		errs = append(errs, fmt.Sprintf("stats.total_assets mismatch: %d != %d", m.Stats.TotalAssets, assetCount))
	}
	if m.Stats.TotalVariants != variantCount {
		errs = append(errs, fmt.Sprintf("stats.total_variants mismatch: %d != %d", m.Stats.TotalVariants, variantCount))
	}

	return errs
}

// checkVariantFile compares a preview on disk with its manifest entry.
func checkVariantFile(path string, v manifest.Variant) string {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Sprintf("file not found: %s", v.Path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Sprintf("stat %s: %v", v.Path, err)
	}
	if v.Size > 0 && info.Size() != v.Size {
		return fmt.Sprintf("size mismatch: manifest=%d, disk=%d", v.Size, info.Size())
	}

	if v.Hash == "" {
		return ""
	}
	sum, err := hasher.ContentHashReader(f, len(v.Hash))
	if err != nil {
		return fmt.Sprintf("read %s: %v", v.Path, err)
	}
	if sum != v.Hash {
		return fmt.Sprintf("hash mismatch: manifest=%s, disk=%s", v.Hash, sum)
	}
	return ""
}
