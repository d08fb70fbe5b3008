package overlay

import (
	"strconv"
	"strings"

	"github.com/zentheon/respackr/pkg/assets"
	"github.com/zentheon/respackr/pkg/logging"
)

// ApplyInclusions merges the format's override subtree into the root tree.
// Every entry under "<format>/" is remapped with that prefix stripped,
// replacing whatever was at the unprefixed location, and the prefixed
// original is removed. Applies to both the store and every bitmap bucket.
// Must run after ApplyExclusions for the same format: exclusion rules aimed
// at a generic path must not take the override with them.
func ApplyInclusions(format int, store *assets.Store, index *assets.ResolutionIndex) {
	logger := logging.GetLogger("inclusion")
	prefix := strconv.Itoa(format) + "/"

	moved := 0
	for _, path := range store.Paths() {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		newPath := path[len(prefix):]
		data, _ := store.Get(path)
		store.Put(newPath, data)
		store.Delete(path)
		moved++
		logger.Trace().Str("from", path).Str("to", newPath).Msg("Remapped file")
	}

	for _, dpi := range index.DPIs() {
		bucket, _ := index.Lookup(dpi)
		for _, path := range bucket.Paths() {
			if !strings.HasPrefix(path, prefix) {
				continue
			}
			newPath := path[len(prefix):]
			data, _ := bucket.Get(path)
			bucket.Put(newPath, data)
			bucket.Delete(path)
			moved++
			logger.Trace().Str("from", path).Str("to", newPath).Int("dpi", dpi).Msg("Remapped generated PNG")
		}
	}

	if moved == 0 {
		logger.Debug().Str("prefix", prefix).Msg("No inclusion folder, skipping")
		return
	}
	logger.Debug().Int("moved", moved).Str("prefix", prefix).Msg("Merged format inclusion folder")
}
