// Package pipeline runs the full build: scan the source tree, apply theme
// and rasterization once over the whole store, then fold over the declared
// formats from highest to lowest. The fold is cumulative on purpose: each
// format's exclusions and inclusions mutate the shared store and bitmap
// index that every lower format builds on, so order is load-bearing and
// nothing is snapshotted between iterations.
package pipeline

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/zentheon/respackr/pkg/archive"
	"github.com/zentheon/respackr/pkg/assets"
	"github.com/zentheon/respackr/pkg/config"
	"github.com/zentheon/respackr/pkg/errors"
	"github.com/zentheon/respackr/pkg/logging"
	"github.com/zentheon/respackr/pkg/meta"
	"github.com/zentheon/respackr/pkg/overlay"
	"github.com/zentheon/respackr/pkg/raster"
	"github.com/zentheon/respackr/pkg/restag"
	"github.com/zentheon/respackr/pkg/stats"
	"github.com/zentheon/respackr/pkg/theme"
)

// NoFormat leaves the format filter unset.
const NoFormat = -1

// Options are the per-invocation knobs layered over the config.
type Options struct {
	// Theme selects a theme by name; empty means no recoloring.
	Theme string

	// Scales restricts which declared scale identifiers are rasterized
	// and archived. Empty means all of them.
	Scales []int

	// Format restricts archiving to a single declared format. Higher
	// formats still have their overlays applied (the fold is cumulative),
	// and formats below the filter are never touched.
	Format int

	// PackVersion is the caller-supplied version string embedded in
	// archive names.
	PackVersion string

	// DryRun skips all archive writes.
	DryRun bool

	// ExitOnError promotes every recorded error to a fatal abort.
	ExitOnError bool

	// Renderer overrides the rasterization backend. Nil selects the
	// built-in SVG renderer.
	Renderer raster.Renderer
}

// Run executes the whole pipeline against fsys. The returned tally is
// valid (and worth printing) even when err is non-nil.
func Run(fsys afero.Fs, cfg *config.Config, opts Options) (*stats.Tally, error) {
	logger := logging.GetLogger("pipeline")
	tally := stats.NewTally()
	rec := stats.NewRecorder(tally, opts.ExitOnError)

	if err := validateOptions(cfg, opts, rec, fsys); err != nil {
		return tally, err
	}

	store, err := assets.ScanSource(fsys, cfg.SourceDir, rec)
	if err != nil {
		return tally, err
	}

	tags, err := restag.Tag(store, rec)
	if err != nil {
		return tally, err
	}
	logger.Debug().Int("bases", len(tags.Tags)).Msg("Resolution tagging complete")

	index := assets.NewResolutionIndex()
	if cfg.ProcessImages {
		if opts.Theme != "" {
			th, err := theme.Load(fsys, cfg.ThemeDir, opts.Theme, rec)
			if err != nil {
				return tally, err
			}
			if err := theme.Apply(store, th, cfg.DefaultColors, rec); err != nil {
				return tally, err
			}
		}

		renderer := opts.Renderer
		if renderer == nil {
			renderer = raster.SVGRenderer{}
		}
		if err := raster.Convert(store, index, selectScales(cfg, opts.Scales), renderer, rec); err != nil {
			return tally, err
		}
	}

	assembler := archive.NewAssembler(fsys, cfg.AllowedPaths, cfg.LicenseFile, opts.DryRun)

	for _, format := range cfg.SortedFormats() {
		if opts.Format != NoFormat && format < opts.Format {
			break
		}
		tally.FormatsProcessed++
		logger.Info().Int("format", format).Str("label", cfg.Formats[format]).Msg("Processing format")

		if err := overlay.ApplyExclusions(format, store, index, rec); err != nil {
			return tally, err
		}
		overlay.ApplyInclusions(format, store, index)

		if opts.Format != NoFormat && format != opts.Format {
			// Overlays above the filtered format still apply; only its
			// own archives are produced.
			continue
		}

		if err := buildArchives(fsys, cfg, opts, assembler, store, index, format, rec); err != nil {
			return tally, err
		}
	}

	return tally, nil
}

// buildArchives generates the descriptor and archives for one format:
// one archive per selected scale when scale variants are active, a single
// archive otherwise.
func buildArchives(fsys afero.Fs, cfg *config.Config, opts Options, assembler *archive.Assembler, store *assets.Store, index *assets.ResolutionIndex, format int, rec *stats.Recorder) error {
	label := cfg.Formats[format]

	if !cfg.ProcessImages || len(cfg.Scales) == 0 {
		params := meta.Params{
			Format:        format,
			Formats:       cfg.Formats,
			FutureFormats: cfg.FutureFormats,
			Description:   cfg.Description,
			Scale:         meta.NoScale,
		}
		if err := meta.Generate(store, params, rec); err != nil {
			return err
		}
		zipPath := filepath.Join(cfg.OutputDir, archiveName(cfg.Name, opts.PackVersion, label, archive.NoScale))
		_, err := assembler.Create(zipPath, store, index, archive.NoScale, archive.NoDPI, rec)
		return err
	}

	for _, sel := range orderedScales(cfg, opts.Scales) {
		params := meta.Params{
			Format:        format,
			Formats:       cfg.Formats,
			FutureFormats: cfg.FutureFormats,
			Description:   cfg.Description,
			Scale:         sel.scale,
		}
		if err := meta.Generate(store, params, rec); err != nil {
			return err
		}
		zipPath := filepath.Join(cfg.OutputDir, strconv.Itoa(format),
			archiveName(cfg.Name, opts.PackVersion, label, sel.scale))
		if _, err := assembler.Create(zipPath, store, index, sel.scale, sel.dpi, rec); err != nil {
			return err
		}
	}
	return nil
}

// validateOptions checks the run flags against the declared config tables
// before any work happens.
func validateOptions(cfg *config.Config, opts Options, rec *stats.Recorder, fsys afero.Fs) error {
	if opts.Format != NoFormat {
		if _, ok := cfg.Formats[opts.Format]; !ok {
			return rec.Fatal(errors.Newf(errors.ErrFormatNotFound,
				"format %d is not declared in the config", opts.Format))
		}
	}
	for _, scale := range opts.Scales {
		if _, ok := cfg.Scales[scale]; !ok {
			return rec.Fatal(errors.Newf(errors.ErrScaleNotValid,
				"scale %d is not declared in the config", scale))
		}
	}
	if cfg.LicenseFile != "" {
		exists, err := afero.Exists(fsys, cfg.LicenseFile)
		if err == nil && !exists {
			_ = rec.Warn(errors.Newf(errors.ErrLicenseRead,
				"license file %s does not exist, archives will not include it",
				cfg.LicenseFile))
		}
	}
	return nil
}

// selectScales returns the scale table restricted to the requested
// identifiers, or the whole table when no filter is set.
func selectScales(cfg *config.Config, filter []int) map[int]int {
	if len(filter) == 0 {
		return cfg.Scales
	}
	selected := make(map[int]int, len(filter))
	for _, scale := range filter {
		if dpi, ok := cfg.Scales[scale]; ok {
			selected[scale] = dpi
		}
	}
	return selected
}

type scaleSelection struct {
	scale int
	dpi   int
}

// orderedScales returns the selected scales from highest to lowest.
func orderedScales(cfg *config.Config, filter []int) []scaleSelection {
	selected := selectScales(cfg, filter)
	out := make([]scaleSelection, 0, len(selected))
	for scale, dpi := range selected {
		out = append(out, scaleSelection{scale: scale, dpi: dpi})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].scale > out[j].scale })
	return out
}

// archiveName builds the deterministic archive filename from the pack
// name, version string, format label, and optional scale identifier.
func archiveName(name, packVersion, label string, scale int) string {
	parts := []string{name}
	if packVersion != "" {
		parts = append(parts, packVersion)
	}
	parts = append(parts, label)
	if scale != archive.NoScale {
		parts = append(parts, fmt.Sprintf("scale-%d", scale))
	}
	return strings.Join(parts, "-") + ".zip"
}
