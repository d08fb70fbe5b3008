// Package theme rewrites color literals inside SVG assets according to a
// named theme. A theme is a JSON document (comments tolerated) in the theme
// directory with a "colors" map reassigning the baseline color keys.
package theme

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"
	"github.com/tidwall/jsonc"

	"github.com/zentheon/respackr/pkg/assets"
	"github.com/zentheon/respackr/pkg/errors"
	"github.com/zentheon/respackr/pkg/logging"
	"github.com/zentheon/respackr/pkg/stats"
)

// Theme is the on-disk theme document.
type Theme struct {
	Colors map[string]string `json:"colors"`
}

// Load reads and parses the theme file <themeDir>/<name>.json. A missing
// directory or file, or a malformed document, is fatal: the run cannot
// continue meaningfully with theming half-applied.
func Load(fsys afero.Fs, themeDir, name string, rec *stats.Recorder) (*Theme, error) {
	info, err := fsys.Stat(themeDir)
	if err != nil || !info.IsDir() {
		return nil, rec.Fatal(errors.Newf(errors.ErrThemeDirNotFound,
			"theme directory %q is not valid", themeDir))
	}

	themeFile := filepath.Join(themeDir, name+".json")
	raw, err := afero.ReadFile(fsys, themeFile)
	if err != nil {
		return nil, rec.Fatal(errors.Wrapf(err, errors.ErrThemeFileNotFound,
			"theme file not found: %s", themeFile))
	}

	var t Theme
	if err := json.Unmarshal(jsonc.ToJSON(raw), &t); err != nil {
		return nil, rec.Fatal(errors.Wrapf(err, errors.ErrThemeParse,
			"error parsing theme %q", name))
	}
	return &t, nil
}

// Apply rewrites every SVG entry in the store with the theme's colors. The
// baseline color map supplies the search keys: a baseline hex that the theme
// reassigns and that occurs in the file is mapped to the theme hex; every
// other baseline hex maps to itself so casing still normalizes. The
// replacement is a literal single-pass substring substitution, not an SVG
// parse; identical literals in non-color contexts get replaced too, which is
// a documented limitation of the format.
func Apply(store *assets.Store, t *Theme, defaultColors map[string]string, rec *stats.Recorder) error {
	logger := logging.GetLogger("theme")

	for _, path := range store.Paths() {
		if !strings.HasSuffix(strings.ToLower(path), ".svg") {
			continue
		}
		raw, _ := store.Get(path)
		if !utf8.Valid(raw) {
			if err := rec.Error(errors.Newf(errors.ErrSVGLoad,
				"could not load SVG content for %s", path).
				WithDetail("path", path)); err != nil {
				return err
			}
			continue
		}
		content := string(raw)

		substitutions := make(map[string]string, len(defaultColors))
		edited := false
		for key, baselineHex := range defaultColors {
			themeHex, themed := t.Colors[key]
			if themed && strings.Contains(content, baselineHex) {
				count := strings.Count(content, baselineHex)
				rec.Tally().CountColorEdit(
					key+" ("+baselineHex+" -> "+themeHex+")", count)
				substitutions[strings.ToLower(baselineHex)] = strings.ToLower(themeHex)
				edited = true
				logger.Trace().
					Str("path", path).
					Str("key", key).
					Int("count", count).
					Msg("Mapping themed color")
			} else {
				substitutions[strings.ToLower(baselineHex)] = strings.ToLower(baselineHex)
			}
		}

		store.Put(path, []byte(replaceAll(content, substitutions)))
		if edited {
			rec.Tally().SVGFilesEdited++
		}
	}
	return nil
}

// replaceAll applies every substitution in one pass over the text. Pairs
// are ordered deterministically before building the replacer.
func replaceAll(content string, substitutions map[string]string) string {
	keys := make([]string, 0, len(substitutions))
	for k := range substitutions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(substitutions)*2)
	for _, k := range keys {
		pairs = append(pairs, k, substitutions[k])
	}
	return strings.NewReplacer(pairs...).Replace(content)
}
