package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/fitsview/internal/config"
)

var (
	version    = "0.1.0"
	verbose    bool
	configPath string

	// cfg is loaded before any subcommand runs.
	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "fitsview",
	Short: "Render FITS astronomical images to auto-stretched previews",
	Long: `fitsview reads the primary image of FITS files, decodes it to floating
point samples and picks display limits with a zscale stretch.

Renders PNG/JPEG/TIFF/BMP previews with content-addressed filenames
and a JSON manifest, and prints headers and pixel statistics.`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./"+config.DefaultFile+" if present)")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"fitsview %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

func loadConfig(_ *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultFile
	} else if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg = c
	logVerbose("config: %s", path)
	return nil
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[fitsview] "+format+"\n", args...)
	}
}
