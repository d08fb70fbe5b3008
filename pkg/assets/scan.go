package assets

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/zentheon/respackr/pkg/errors"
	"github.com/zentheon/respackr/pkg/logging"
	"github.com/zentheon/respackr/pkg/stats"
)

// ScanSource walks sourceDir and loads every file into a fresh Store.
// Unreadable files are recorded as non-fatal errors and skipped; a missing
// or non-directory source path is fatal. File extensions are tallied for
// the end-of-run summary.
func ScanSource(fsys afero.Fs, sourceDir string, rec *stats.Recorder) (*Store, error) {
	logger := logging.GetLogger("scan")

	info, err := fsys.Stat(sourceDir)
	if err != nil {
		return nil, rec.Fatal(errors.Wrapf(err, errors.ErrMissingSourceDir,
			"missing source directory: %s", sourceDir))
	}
	if !info.IsDir() {
		return nil, rec.Fatal(errors.Newf(errors.ErrMissingSourceDir,
			"source path is not a directory: %s", sourceDir))
	}

	logger.Info().Str("dir", sourceDir).Msg("Scanning source directory")
	store := NewStore()

	walkErr := afero.Walk(fsys, sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return rec.Error(errors.Wrapf(err, errors.ErrFileLoad,
				"error walking %s", path))
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return rec.Error(errors.Wrapf(err, errors.ErrFileLoad,
				"error resolving %s", path))
		}
		relPath = NormalizePath(relPath)

		content, err := afero.ReadFile(fsys, path)
		if err != nil {
			return rec.Error(errors.Wrapf(err, errors.ErrFileLoad,
				"error loading %s", relPath).WithDetail("path", relPath))
		}

		rec.Tally().CountExtension(strings.ToLower(filepath.Ext(relPath)))
		store.Put(relPath, content)
		logger.Trace().Str("path", relPath).Msg("Loaded")
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	rec.Tally().SourceFilesLoaded = store.Len()
	logger.Info().Int("count", store.Len()).Msg("Source files loaded")
	return store, nil
}
