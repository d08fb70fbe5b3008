// Package meta generates the pack.mcmeta version-compatibility descriptor
// for each format from the pack.json template embedded in the source tree.
package meta

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/zentheon/respackr/pkg/assets"
	"github.com/zentheon/respackr/pkg/errors"
	"github.com/zentheon/respackr/pkg/logging"
	"github.com/zentheon/respackr/pkg/stats"
)

const (
	// TemplatePath is where the descriptor template lives in the store.
	TemplatePath = "pack.json"
	// OutputPath is the generated descriptor's location.
	OutputPath = "pack.mcmeta"
)

// NoScale disables the scale placeholder and suffix for packs built without
// a scale dimension.
const NoScale = -1

// Params drives one descriptor generation.
type Params struct {
	// Format is the declared tier key being processed.
	Format int
	// Formats is the full declared tier set, key to label.
	Formats map[int]string
	// FutureFormats widens max_format on the most recent tier.
	FutureFormats int
	// Description is the base pack description.
	Description string
	// Scale is the scale identifier for this variant, or NoScale.
	Scale int
}

// effectiveFormat applies the historical bump: format 0 packs exist because
// of a UI change that shipped without a format change, and materialize as
// format 1.
func effectiveFormat(format int) int {
	if format == 0 {
		return 1
	}
	return format
}

// minFormat returns the declared tier immediately below cur, plus one. With
// nothing below, the range collapses to cur itself.
func minFormat(cur int, declared []int) int {
	below := -1
	for _, f := range declared {
		if f < cur && f > below {
			below = f
		}
	}
	if below < 0 {
		return cur
	}
	return below + 1
}

// maxFormat returns cur, widened by the future-format buffer when cur is
// the most recent declared tier.
func maxFormat(cur int, declared []int, buffer int) int {
	highest := declared[0]
	for _, f := range declared {
		if f > highest {
			highest = f
		}
	}
	if cur == highest {
		return cur + buffer
	}
	return cur
}

// Generate fills the pack.json template for the given format and writes the
// result to pack.mcmeta in the store, replacing any prior copy. A missing
// template or a result that is not valid JSON is fatal: the archives would
// be meaningless without a descriptor.
func Generate(store *assets.Store, p Params, rec *stats.Recorder) error {
	logger := logging.GetLogger("meta")

	if store.Has(OutputPath) {
		store.Delete(OutputPath)
		logger.Trace().Str("path", OutputPath).Msg("Removed previous descriptor")
	}

	raw, ok := store.Get(TemplatePath)
	if !ok {
		return rec.Fatal(errors.Newf(errors.ErrMetaNotFound,
			"%s template file was not found", TemplatePath))
	}

	declared := make([]int, 0, len(p.Formats))
	for f := range p.Formats {
		declared = append(declared, f)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(declared)))

	cur := effectiveFormat(p.Format)
	placeholders := map[string]string{
		"{format}":      strconv.Itoa(cur),
		"{min_format}":  strconv.Itoa(minFormat(cur, declared)),
		"{max_format}":  strconv.Itoa(maxFormat(cur, declared, p.FutureFormats)),
		"{versions}":    p.Formats[p.Format],
		"{description}": describe(p.Description, p.Scale),
		"{scale}":       scaleString(p.Scale),
	}

	content := string(raw)
	for placeholder, value := range placeholders {
		content = strings.ReplaceAll(content, placeholder, value)
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return rec.Fatal(errors.Wrapf(err, errors.ErrMetaParse,
			"loading %s as json failed", TemplatePath))
	}
	pretty, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return rec.Fatal(errors.Wrap(err, errors.ErrMetaParse, "re-encoding descriptor failed"))
	}

	store.Put(OutputPath, pretty)
	logger.Debug().
		Int("format", cur).
		Str("versions", p.Formats[p.Format]).
		Msg("Generated descriptor")
	return nil
}

// describe appends the scale suffix to the base description when scale
// variants are in play.
func describe(description string, scale int) string {
	if scale == NoScale {
		return description
	}
	return fmt.Sprintf("%s (Scale %d)", description, scale)
}

func scaleString(scale int) string {
	if scale == NoScale {
		return ""
	}
	return strconv.Itoa(scale)
}
