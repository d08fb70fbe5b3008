// Package raster converts SVG entries in the asset store into fixed-size
// PNG bitmaps, one per configured scale. The SVG's declared width/height is
// scaled by dpi/96 and the backend is invoked with explicit pixel
// dimensions; the backend's own DPI handling is not trusted to produce
// exact sizes.
package raster

import (
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/zentheon/respackr/pkg/assets"
	"github.com/zentheon/respackr/pkg/errors"
	"github.com/zentheon/respackr/pkg/logging"
	"github.com/zentheon/respackr/pkg/stats"
)

// referenceDPI is the implicit density of an SVG document's point units.
const referenceDPI = 96.0

// Dimensions an SVG falls back to when its width/height cannot be parsed.
const (
	fallbackWidth  = 1024
	fallbackHeight = 1024
)

// Renderer turns SVG source into a PNG at an exact pixel size.
type Renderer interface {
	Render(svg []byte, width, height int) ([]byte, error)
}

// parseDimensions extracts the declared width and height from the SVG root
// element. A "pt" unit suffix is stripped before parsing.
func parseDimensions(svg []byte) (width, height float64, err error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(svg); err != nil {
		return 0, 0, err
	}
	root := doc.Root()
	if root == nil {
		return 0, 0, errors.New(errors.ErrSVGBadDimensions, "document has no root element")
	}

	width, err = parseLength(root.SelectAttrValue("width", ""))
	if err != nil {
		return 0, 0, err
	}
	height, err = parseLength(root.SelectAttrValue("height", ""))
	if err != nil {
		return 0, 0, err
	}
	return width, height, nil
}

func parseLength(attr string) (float64, error) {
	attr = strings.TrimSuffix(attr, "pt")
	return strconv.ParseFloat(attr, 64)
}

// Convert rasterizes every SVG in the store at each (scale, DPI) pair and
// stores the results in the index under the DPI, with the extension swapped
// to .png. SVG entries are removed from the store afterward: the bitmaps
// supersede them.
func Convert(store *assets.Store, index *assets.ResolutionIndex, scales map[int]int, renderer Renderer, rec *stats.Recorder) error {
	logger := logging.GetLogger("raster")
	defer logging.LogOperationStart(logger, "svg-to-png conversion")()

	scaleKeys := make([]int, 0, len(scales))
	for scale := range scales {
		scaleKeys = append(scaleKeys, scale)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(scaleKeys)))

	for _, path := range store.Paths() {
		if !strings.HasSuffix(strings.ToLower(path), ".svg") {
			continue
		}
		raw, _ := store.Get(path)
		logger.Debug().Str("path", path).Msg("Creating images for SVG")

		width, height, err := parseDimensions(raw)
		if err != nil {
			width, height = fallbackWidth, fallbackHeight
			_ = rec.Warn(errors.Wrapf(err, errors.ErrSVGBadDimensions,
				"falling back to %dx%d", fallbackWidth, fallbackHeight).
				WithDetail("path", path))
		}

		outPath := path[:len(path)-len(".svg")] + ".png"
		for _, scale := range scaleKeys {
			dpi := scales[scale]
			factor := float64(dpi) / referenceDPI
			targetWidth := int(width * factor)
			targetHeight := int(height * factor)
			logger.Trace().
				Str("path", path).
				Int("scale", scale).
				Int("dpi", dpi).
				Int("width", targetWidth).
				Int("height", targetHeight).
				Msg("Rasterizing")

			data, err := renderer.Render(raw, targetWidth, targetHeight)
			if err != nil {
				if recErr := rec.Error(errors.Wrapf(err, errors.ErrSVGProcessing,
					"error creating image for SVG").
					WithDetail("path", path).
					WithDetail("dpi", dpi)); recErr != nil {
					return recErr
				}
				continue
			}
			if len(data) == 0 {
				_ = rec.Warn(errors.Newf(errors.ErrNoImageData,
					"empty PNG data returned for %s", path).
					WithDetail("path", path))
			}

			index.Bucket(dpi).Put(outPath, data)
			rec.Tally().ImagesGenerated++
		}

		store.Delete(path)
	}

	logger.Info().Int("count", rec.Tally().ImagesGenerated).Msg("Images created")
	return nil
}
