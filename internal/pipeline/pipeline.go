package pipeline

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/AnyUserName/fitsview/internal/encoder"
	"github.com/AnyUserName/fitsview/internal/manifest"
	"github.com/AnyUserName/fitsview/internal/profile"
)

// Config holds all parameters for a render run.
type Config struct {
	Input     string // FITS file or directory
	OutputDir string
	Profile   profile.Profile
	Workers   int
	Verbose   bool

	// Seed is the run seed. Each file samples with hasher.Seed(Seed, key).
	Seed int64

	// Contrast overrides the profile contrast when non-zero.
	Contrast float64
}

// Pipeline renders FITS files to previews.
type Pipeline struct {
	cfg      Config
	registry *encoder.Registry
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Pipeline{
		cfg:      cfg,
		registry: encoder.NewRegistry(),
	}
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.cfg.Verbose {
		fmt.Fprintf(os.Stderr, "[fitsview] "+format+"\n", args...)
	}
}

// Run renders every source and returns the manifest. Per-file failures
// are reported on stderr; Run only fails when no file could be rendered.
func (p *Pipeline) Run() (*manifest.Manifest, error) {
	p.logf("%s", p.registry.String())

	sources, err := Scan(p.cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no FITS files found in %s", p.cfg.Input)
	}
	p.logf("found %d FITS files", len(sources))

	results := make([]processResult, len(sources))
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.Workers)

	for i, src := range sources {
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			p.logf("processing: %s", s.Key)
			results[idx] = p.process(s)
			if r := results[idx]; r.err == nil {
				p.logf("done: %s (z1=%g z2=%g, %d variants)",
					s.Key, deref(r.asset.Scale.Z1), deref(r.asset.Scale.Z2), len(r.asset.Variants))
			}
		}(i, src)
	}
	wg.Wait()

	m := manifest.New(p.cfg.Profile.Name)

	var errs []error
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		m.Assets[r.key] = r.asset
	}

	// Report errors but don't fail the entire run for partial failures.
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "[fitsview] error: %v\n", e)
		}
		if len(errs) == len(sources) {
			return nil, fmt.Errorf("all %d files failed to render", len(errs))
		}
		fmt.Fprintf(os.Stderr, "[fitsview] warning: %d of %d files had errors\n",
			len(errs), len(sources))
	}

	m.BuildInfo = &manifest.BuildInfo{
		Workers: p.cfg.Workers,
		Seed:    p.cfg.Seed,
	}
	m.ComputeStats()
	return m, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
