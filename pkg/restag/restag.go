// Package restag classifies asset paths by their embedded resolution tag.
// A tag is an "x" followed by a pixel size ("x32", "x64", "x128") appearing
// either as its own directory segment ("icons/x32/home.svg") or as a dotted
// suffix element ("home.x32.svg"). The tagger builds a two-level index from
// tag-stripped base path to the concrete file backing each resolution.
package restag

import (
	"strconv"

	"github.com/zentheon/respackr/pkg/assets"
	"github.com/zentheon/respackr/pkg/errors"
	"github.com/zentheon/respackr/pkg/logging"
	"github.com/zentheon/respackr/pkg/stats"
)

// AllowedResolutions is the fixed set of bitmap sizes a tag may name.
var AllowedResolutions = map[int]bool{32: true, 64: true, 128: true}

// TagMap maps a tag-stripped base path to the concrete path per resolution.
// Resolution 0 marks the canonical, untagged file.
type TagMap map[string]map[int]string

// Lookup returns the concrete path for base at res.
func (m TagMap) Lookup(base string, res int) (string, bool) {
	byRes, ok := m[base]
	if !ok {
		return "", false
	}
	path, ok := byRes[res]
	return path, ok
}

// Result carries the tag map plus the deduplicated invalid-directory
// prefixes encountered, with the number of files found under each.
type Result struct {
	Tags        TagMap
	InvalidDirs map[string]int
}

// match is one occurrence of a resolution tag inside a path.
type match struct {
	start int  // index of the "x"
	end   int  // index just past the digits
	value int  // parsed resolution
	sep   byte // '.' or '/'
}

// findMatches returns all non-overlapping tag matches in path. A match is
// an "x" followed by one or more digits, with the digits immediately
// followed by '.' or '/'.
func findMatches(path string) []match {
	var matches []match
	for i := 0; i < len(path); i++ {
		if path[i] != 'x' {
			continue
		}
		j := i + 1
		for j < len(path) && path[j] >= '0' && path[j] <= '9' {
			j++
		}
		if j == i+1 || j >= len(path) {
			continue
		}
		if path[j] != '.' && path[j] != '/' {
			continue
		}
		value, err := strconv.Atoi(path[i+1 : j])
		if err != nil {
			continue
		}
		matches = append(matches, match{start: i, end: j, value: value, sep: path[j]})
		i = j
	}
	return matches
}

// Tag classifies every path in the store. Paths failing validation are
// recorded and left out of the map entirely; untagged paths map to
// themselves under resolution 0. The store itself is not modified.
func Tag(store *assets.Store, rec *stats.Recorder) (*Result, error) {
	logger := logging.GetLogger("restag")
	result := &Result{
		Tags:        make(TagMap),
		InvalidDirs: make(map[string]int),
	}

	for _, path := range store.Paths() {
		matches := findMatches(path)

		switch {
		case len(matches) > 1:
			if err := rec.Error(errors.Newf(errors.ErrTooManyResolutions,
				"multiple resolution tags in %s", path).
				WithDetail("path", path)); err != nil {
				return nil, err
			}
			continue

		case len(matches) == 1:
			m := matches[0]
			if !AllowedResolutions[m.value] {
				if err := rec.Error(errors.Newf(errors.ErrInvalidResolution,
					"resolution %d in %s is not one of the allowed sizes", m.value, path).
					WithDetail("path", path)); err != nil {
					return nil, err
				}
				continue
			}

			// A directory-style tag must be its own path segment.
			if m.sep == '/' && m.start > 0 && path[m.start-1] != '/' {
				prefix := path[:m.end]
				result.InvalidDirs[prefix]++
				if result.InvalidDirs[prefix] == 1 {
					if err := rec.Error(errors.Newf(errors.ErrInvalidResolutionDir,
						"resolution tag embedded in directory name: %s", prefix).
						WithDetail("prefix", prefix)); err != nil {
						return nil, err
					}
				} else {
					logger.Trace().Str("prefix", prefix).Msg("Repeated invalid directory, not re-recording")
				}
				continue
			}

			// Strip the tag and its trailing separator to form the base.
			base := path[:m.start] + path[m.end+1:]
			if result.Tags[base] == nil {
				result.Tags[base] = make(map[int]string)
			}
			result.Tags[base][m.value] = path
			rec.Tally().TaggedVariants++
			logger.Trace().Str("path", path).Str("base", base).Int("resolution", m.value).Msg("Tagged")

		default:
			if result.Tags[path] == nil {
				result.Tags[path] = make(map[int]string)
			}
			result.Tags[path][0] = path
		}
	}

	logger.Debug().
		Int("bases", len(result.Tags)).
		Int("taggedVariants", rec.Tally().TaggedVariants).
		Msg("Resolution tagging complete")
	return result, nil
}
