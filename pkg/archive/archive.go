// Package archive writes the final resourcepack zip files from the asset
// store and the generated bitmap index.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	"github.com/spf13/afero"

	"github.com/zentheon/respackr/pkg/assets"
	"github.com/zentheon/respackr/pkg/errors"
	"github.com/zentheon/respackr/pkg/logging"
	"github.com/zentheon/respackr/pkg/stats"
)

// PackIconPath is the canonical icon entry name inside an archive.
const PackIconPath = "pack.png"

// NoScale / NoDPI disable the scale-specific entries for packs built
// without a scale dimension.
const (
	NoScale = -1
	NoDPI   = -1
)

// Assembler writes archives for one run. The allow-list and license path
// are fixed per run; scale and DPI vary per archive.
type Assembler struct {
	fsys         afero.Fs
	allowedPaths []string
	licenseFile  string
	dryRun       bool
}

// NewAssembler creates an Assembler writing through fsys. allowedPaths are
// normalized once here.
func NewAssembler(fsys afero.Fs, allowedPaths []string, licenseFile string, dryRun bool) *Assembler {
	normalized := make([]string, 0, len(allowedPaths))
	for _, p := range allowedPaths {
		normalized = append(normalized, assets.NormalizePath(p))
	}
	return &Assembler{
		fsys:         fsys,
		allowedPaths: normalized,
		licenseFile:  licenseFile,
		dryRun:       dryRun,
	}
}

func (a *Assembler) allowed(path string) bool {
	for _, prefix := range a.allowedPaths {
		if assets.MatchesPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Create writes one archive at zipPath. scale selects the scale-specific
// icon; dpi selects the bitmap bucket; pass NoScale/NoDPI for plain packs.
// A duplicate between a store path and a bitmap path keeps the store entry
// and records a duplicate_png error. Returns whether an archive was
// produced (a dry run counts as success).
func (a *Assembler) Create(zipPath string, store *assets.Store, index *assets.ResolutionIndex, scale, dpi int, rec *stats.Recorder) (bool, error) {
	logger := logging.GetLogger("archive")

	if a.dryRun {
		logger.Info().Str("path", zipPath).Msg("Dry run enabled, skipping ZIP creation")
		return true, nil
	}
	logger.Info().Str("path", zipPath).Msg("Creating ZIP archive")

	if err := a.fsys.MkdirAll(filepath.Dir(zipPath), 0755); err != nil {
		return false, rec.Error(errors.Wrap(err, errors.ErrDirCreate,
			"failed to create output directory").WithDetail("path", zipPath))
	}

	out, err := a.fsys.Create(zipPath)
	if err != nil {
		return false, rec.Error(errors.Wrapf(err, errors.ErrZipCreate,
			"error creating ZIP %s", zipPath))
	}
	defer func() { _ = out.Close() }()

	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	added := make(map[string]bool)
	created := 0

	// Scale-specific pack icon, renamed to the canonical entry.
	if scale != NoScale {
		iconSource := fmt.Sprintf("scale_%d.png", scale)
		if data, ok := store.Get(iconSource); ok {
			if err := writeEntry(zw, PackIconPath, data); err != nil {
				if recErr := rec.Error(errors.Wrapf(err, errors.ErrZipWrite,
					"error writing %s", PackIconPath)); recErr != nil {
					return false, recErr
				}
			} else {
				added[iconSource] = true
				created++
				logger.Debug().Str("from", iconSource).Str("to", PackIconPath).Msg("Added pack icon")
			}
		}
	}

	// Optional license from disk. Absence was already flagged during
	// validation, so it is only a skip here.
	if a.licenseFile != "" {
		if exists, _ := afero.Exists(a.fsys, a.licenseFile); !exists {
			logger.Debug().Str("license", a.licenseFile).Msg("License file absent, skipping")
		} else if data, err := afero.ReadFile(a.fsys, a.licenseFile); err != nil {
			if recErr := rec.Error(errors.Wrapf(err, errors.ErrLicenseRead,
				"failed to read license file %s", a.licenseFile)); recErr != nil {
				return false, recErr
			}
		} else {
			name := filepath.Base(a.licenseFile)
			if err := writeEntry(zw, name, data); err != nil {
				if recErr := rec.Error(errors.Wrapf(err, errors.ErrZipWrite,
					"error writing license %s", name)); recErr != nil {
					return false, recErr
				}
			} else {
				added[name] = true
				created++
				logger.Debug().Str("license", name).Msg("Added license")
			}
		}
	}

	// Store entries behind the publish-time allow-list.
	for _, path := range store.Paths() {
		if !a.allowed(path) {
			continue
		}
		data, _ := store.Get(path)
		if err := writeEntry(zw, path, data); err != nil {
			if recErr := rec.Error(errors.Wrapf(err, errors.ErrZipWrite,
				"error writing file %s to ZIP", path)); recErr != nil {
				return false, recErr
			}
			continue
		}
		added[path] = true
		created++
		logger.Trace().Str("path", path).Msg("Added file to ZIP")
	}

	// Generated bitmaps for this archive's DPI.
	if dpi != NoDPI {
		if bucket, ok := index.Lookup(dpi); ok {
			for _, path := range bucket.Paths() {
				if !a.allowed(path) {
					continue
				}
				if added[path] {
					if recErr := rec.Error(errors.Newf(errors.ErrDuplicatePNG,
						"attempted to add already-existing PNG to ZIP (DPI %d)", dpi).
						WithDetail("path", path)); recErr != nil {
						return false, recErr
					}
					continue
				}
				data, _ := bucket.Get(path)
				if err := writeEntry(zw, path, data); err != nil {
					if recErr := rec.Error(errors.Wrapf(err, errors.ErrZipWrite,
						"error writing generated PNG to ZIP").WithDetail("path", path)); recErr != nil {
						return false, recErr
					}
					continue
				}
				added[path] = true
				created++
				logger.Trace().Str("path", path).Int("dpi", dpi).Msg("Added generated PNG to ZIP")
			}
		}
	}

	if err := zw.Close(); err != nil {
		return false, rec.Error(errors.Wrapf(err, errors.ErrZipCreate,
			"error creating ZIP %s", zipPath))
	}

	if created > 0 {
		rec.Tally().ArchivesCreated++
	}
	logger.Info().Int("entries", created).Str("path", zipPath).Msg("Archive written")
	return true, nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
