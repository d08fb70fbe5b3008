// Package overlay applies per-format edits to the shared asset state:
// exclusion lists remove paths, inclusion subtrees shadow them. Both mutate
// the store and resolution index in place, so their effects carry over into
// every later (lower) format in the run.
package overlay

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/zentheon/respackr/pkg/assets"
	"github.com/zentheon/respackr/pkg/errors"
	"github.com/zentheon/respackr/pkg/logging"
	"github.com/zentheon/respackr/pkg/stats"
)

// exclusionManifest is the declarative document "<format>.json" embedded in
// the source tree.
type exclusionManifest struct {
	Exclusions []string `json:"exclusions"`
}

// ApplyExclusions removes every store and bitmap entry matching a prefix
// from the format's exclusion manifest. A missing manifest is a normal
// skip; a malformed one is a non-fatal error and the format proceeds
// without exclusions. Deletions are permanent for the rest of the run.
func ApplyExclusions(format int, store *assets.Store, index *assets.ResolutionIndex, rec *stats.Recorder) error {
	logger := logging.GetLogger("exclusion")

	manifestPath := fmt.Sprintf("%d.json", format)
	raw, ok := store.Get(manifestPath)
	if !ok {
		logger.Debug().Str("manifest", manifestPath).Msg("No exclusion list, skipping")
		return nil
	}
	logger.Debug().Str("manifest", manifestPath).Msg("Found exclusion list")

	var manifest exclusionManifest
	if err := json.Unmarshal(jsonc.ToJSON(raw), &manifest); err != nil {
		return rec.Error(errors.Wrapf(err, errors.ErrExclusion,
			"error parsing exclusion list %s", manifestPath).
			WithDetail("format", format))
	}

	prefixes := make([]string, 0, len(manifest.Exclusions))
	for _, p := range manifest.Exclusions {
		prefixes = append(prefixes, assets.NormalizePath(p))
	}

	for _, path := range store.Paths() {
		for _, prefix := range prefixes {
			if assets.MatchesPrefix(path, prefix) {
				logger.Trace().Str("path", path).Str("prefix", prefix).Msg("Excluding file")
				store.Delete(path)
				break
			}
		}
	}

	// Bitmap paths carry the swapped extension, so an exclusion naming an
	// SVG must be translated before testing.
	for _, dpi := range index.DPIs() {
		bucket, _ := index.Lookup(dpi)
		for _, path := range bucket.Paths() {
			for _, prefix := range prefixes {
				if assets.MatchesPrefix(path, bitmapPrefix(prefix)) {
					logger.Trace().Str("path", path).Int("dpi", dpi).Msg("Excluding generated PNG")
					bucket.Delete(path)
					break
				}
			}
		}
	}

	return nil
}

func bitmapPrefix(prefix string) string {
	if strings.HasSuffix(prefix, ".svg") {
		return assets.NormalizePath(prefix[:len(prefix)-len(".svg")] + ".png")
	}
	return prefix
}
