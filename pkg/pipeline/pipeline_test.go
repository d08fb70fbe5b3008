package pipeline_test

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zentheon/respackr/pkg/config"
	"github.com/zentheon/respackr/pkg/errors"
	"github.com/zentheon/respackr/pkg/pipeline"
)

const packTemplate = `{
  "pack": {
    "pack_format": {format},
    "supported_formats": {"min_inclusive": {min_format}, "max_inclusive": {max_format}},
    "description": "{description}"
  }
}`

func baseConfig() *config.Config {
	return &config.Config{
		Name:         "mypack",
		Description:  "A test pack",
		SourceDir:    "src",
		OutputDir:    "out",
		AllowedPaths: []string{"assets", "pack.mcmeta"},
		Formats:      map[int]string{5: "1.20", 3: "1.19", 1: "1.16"},
	}
}

func writeTree(t *testing.T, fsys afero.Fs, files map[string]string) {
	t.Helper()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0644))
	}
}

func zipEntries(t *testing.T, fsys afero.Fs, path string) map[string]string {
	t.Helper()
	data, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	entries := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		entries[f.Name] = string(content)
	}
	return entries
}

// stubRenderer produces a fake bitmap encoding its dimensions so tests can
// assert on sizing without decoding real PNGs.
type stubRenderer struct{}

func (stubRenderer) Render(_ []byte, width, height int) ([]byte, error) {
	return []byte(fmt.Sprintf("png %dx%d", width, height)), nil
}

func TestRunSingleArchivePerFormat(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string]string{
		"src/pack.json":     packTemplate,
		"src/assets/a.json": `{"a": 1}`,
		"src/other/b.json":  `{"b": 2}`,
	})

	cfg := baseConfig()
	tally, err := pipeline.Run(fsys, cfg, pipeline.Options{Format: pipeline.NoFormat})
	require.NoError(t, err)

	assert.Equal(t, 3, tally.FormatsProcessed)
	assert.Equal(t, 3, tally.ArchivesCreated)

	entries := zipEntries(t, fsys, "out/mypack-1.20.zip")
	assert.Contains(t, entries, "assets/a.json")
	// The allow-list keeps everything else out.
	assert.NotContains(t, entries, "other/b.json")
	assert.Contains(t, entries, "pack.mcmeta")

	for _, name := range []string{"out/mypack-1.19.zip", "out/mypack-1.16.zip"} {
		exists, err := afero.Exists(fsys, name)
		require.NoError(t, err)
		assert.True(t, exists, name)
	}
}

func TestRunPackVersionInArchiveName(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string]string{
		"src/pack.json":     packTemplate,
		"src/assets/a.json": "{}",
	})

	cfg := baseConfig()
	cfg.Formats = map[int]string{5: "1.20"}
	_, err := pipeline.Run(fsys, cfg, pipeline.Options{Format: pipeline.NoFormat, PackVersion: "2.1.0"})
	require.NoError(t, err)

	exists, err := afero.Exists(fsys, "out/mypack-2.1.0-1.20.zip")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRunCumulativeFold(t *testing.T) {
	// Format 5 excludes assets/old; format 3's archive must already
	// reflect that exclusion even though 3 declares no manifest of its
	// own. Format 3's overlay folder then shadows assets/icon.json for
	// format 3 and every format below it.
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string]string{
		"src/pack.json":          packTemplate,
		"src/5.json":             `{"exclusions": ["assets/old"]}`,
		"src/assets/old/a.json":  "old",
		"src/assets/icon.json":   "new-style",
		"src/3/assets/icon.json": "legacy-style",
		"src/assets/keep.json":   "kept",
	})

	cfg := baseConfig()
	_, err := pipeline.Run(fsys, cfg, pipeline.Options{Format: pipeline.NoFormat})
	require.NoError(t, err)

	top := zipEntries(t, fsys, "out/mypack-1.20.zip")
	assert.NotContains(t, top, "assets/old/a.json")
	assert.Equal(t, "new-style", top["assets/icon.json"])

	mid := zipEntries(t, fsys, "out/mypack-1.19.zip")
	assert.NotContains(t, mid, "assets/old/a.json")
	assert.Equal(t, "legacy-style", mid["assets/icon.json"])

	low := zipEntries(t, fsys, "out/mypack-1.16.zip")
	assert.Equal(t, "legacy-style", low["assets/icon.json"])
	assert.Equal(t, "kept", low["assets/keep.json"])
}

func TestRunInclusionWithoutManifest(t *testing.T) {
	// An overlay folder works on its own; no exclusion manifest needed.
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string]string{
		"src/pack.json":             packTemplate,
		"src/assets/overlay.json":   "base",
		"src/3/assets/overlay.json": "override",
	})

	cfg := baseConfig()
	_, err := pipeline.Run(fsys, cfg, pipeline.Options{Format: pipeline.NoFormat})
	require.NoError(t, err)

	top := zipEntries(t, fsys, "out/mypack-1.20.zip")
	assert.Equal(t, "base", top["assets/overlay.json"])

	mid := zipEntries(t, fsys, "out/mypack-1.19.zip")
	assert.Equal(t, "override", mid["assets/overlay.json"])
	assert.NotContains(t, mid, "3/assets/overlay.json")
}

func TestRunScaleVariants(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string]string{
		"src/pack.json":    packTemplate,
		"src/assets/a.svg": `<svg width="100" height="50"></svg>`,
		"src/scale_1.png":  "icon-1",
		"src/scale_2.png":  "icon-2",
	})

	cfg := baseConfig()
	cfg.Formats = map[int]string{5: "1.20"}
	cfg.ProcessImages = true
	cfg.Scales = map[int]int{1: 96, 2: 192}

	tally, err := pipeline.Run(fsys, cfg, pipeline.Options{
		Format:   pipeline.NoFormat,
		Renderer: stubRenderer{},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, tally.ArchivesCreated)
	assert.Equal(t, 2, tally.ImagesGenerated)

	// Scale archives nest under the format directory.
	big := zipEntries(t, fsys, "out/5/mypack-1.20-scale-2.zip")
	assert.Equal(t, "png 200x100", big["assets/a.png"])
	assert.Equal(t, "icon-2", big["pack.png"])
	assert.NotContains(t, big, "assets/a.svg")

	small := zipEntries(t, fsys, "out/5/mypack-1.20-scale-1.zip")
	assert.Equal(t, "png 100x50", small["assets/a.png"])
	assert.Equal(t, "icon-1", small["pack.png"])
}

func TestRunScaleFilter(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string]string{
		"src/pack.json":    packTemplate,
		"src/assets/a.svg": `<svg width="10" height="10"></svg>`,
	})

	cfg := baseConfig()
	cfg.Formats = map[int]string{5: "1.20"}
	cfg.ProcessImages = true
	cfg.Scales = map[int]int{1: 96, 2: 192}

	_, err := pipeline.Run(fsys, cfg, pipeline.Options{
		Format:   pipeline.NoFormat,
		Scales:   []int{2},
		Renderer: stubRenderer{},
	})
	require.NoError(t, err)

	exists, err := afero.Exists(fsys, "out/5/mypack-1.20-scale-2.zip")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = afero.Exists(fsys, "out/5/mypack-1.20-scale-1.zip")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRunFormatFilter(t *testing.T) {
	// Filtering to format 3 still applies format 5's exclusions first and
	// never processes format 1.
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string]string{
		"src/pack.json":         packTemplate,
		"src/5.json":            `{"exclusions": ["assets/old"]}`,
		"src/assets/old/a.json": "old",
		"src/assets/keep.json":  "kept",
	})

	cfg := baseConfig()
	tally, err := pipeline.Run(fsys, cfg, pipeline.Options{Format: 3})
	require.NoError(t, err)

	assert.Equal(t, 2, tally.FormatsProcessed)
	assert.Equal(t, 1, tally.ArchivesCreated)

	for name, want := range map[string]bool{
		"out/mypack-1.20.zip": false,
		"out/mypack-1.19.zip": true,
		"out/mypack-1.16.zip": false,
	} {
		exists, err := afero.Exists(fsys, name)
		require.NoError(t, err)
		assert.Equal(t, want, exists, name)
	}

	entries := zipEntries(t, fsys, "out/mypack-1.19.zip")
	assert.NotContains(t, entries, "assets/old/a.json")
}

func TestRunUndeclaredFormat(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string]string{"src/pack.json": packTemplate})

	_, err := pipeline.Run(fsys, baseConfig(), pipeline.Options{Format: 42})
	require.Error(t, err)
	assert.Equal(t, errors.ErrFormatNotFound, errors.GetErrorCode(err))
}

func TestRunUndeclaredScale(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string]string{"src/pack.json": packTemplate})

	cfg := baseConfig()
	cfg.ProcessImages = true
	cfg.Scales = map[int]int{1: 96}

	_, err := pipeline.Run(fsys, cfg, pipeline.Options{Format: pipeline.NoFormat, Scales: []int{9}})
	require.Error(t, err)
	assert.Equal(t, errors.ErrScaleNotValid, errors.GetErrorCode(err))
}

func TestRunMissingSourceDir(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_, err := pipeline.Run(fsys, baseConfig(), pipeline.Options{Format: pipeline.NoFormat})
	require.Error(t, err)
	assert.Equal(t, errors.ErrMissingSourceDir, errors.GetErrorCode(err))
}

func TestRunMissingTemplateIsFatal(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string]string{"src/assets/a.json": "{}"})

	_, err := pipeline.Run(fsys, baseConfig(), pipeline.Options{Format: pipeline.NoFormat})
	require.Error(t, err)
	assert.Equal(t, errors.ErrMetaNotFound, errors.GetErrorCode(err))
}

func TestRunDryRun(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string]string{
		"src/pack.json":     packTemplate,
		"src/assets/a.json": "{}",
	})

	tally, err := pipeline.Run(fsys, baseConfig(), pipeline.Options{Format: pipeline.NoFormat, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 3, tally.FormatsProcessed)

	entries, err := afero.ReadDir(fsys, "out")
	if err == nil {
		assert.Empty(t, entries)
	}
}

func TestRunThemedScaleVariant(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string]string{
		"src/pack.json":    packTemplate,
		"src/assets/a.svg": `<svg width="10" height="10"><rect fill="#1a2b3c"/></svg>`,
		"themes/dark.json": `{"colors": {"primary": "#000000"}}`,
	})

	cfg := baseConfig()
	cfg.Formats = map[int]string{5: "1.20"}
	cfg.ProcessImages = true
	cfg.Scales = map[int]int{1: 96}
	cfg.ThemeDir = "themes"
	cfg.DefaultColors = map[string]string{"primary": "#1a2b3c"}

	var rendered []string
	renderer := renderFunc(func(svg []byte, w, h int) ([]byte, error) {
		rendered = append(rendered, string(svg))
		return []byte("png"), nil
	})

	tally, err := pipeline.Run(fsys, cfg, pipeline.Options{
		Format:   pipeline.NoFormat,
		Theme:    "dark",
		Renderer: renderer,
	})
	require.NoError(t, err)

	// Theming runs before rasterization, so the renderer sees the
	// substituted color.
	require.Len(t, rendered, 1)
	assert.Contains(t, rendered[0], "#000000")
	assert.Equal(t, 1, tally.SVGFilesEdited)
}

type renderFunc func(svg []byte, width, height int) ([]byte, error)

func (f renderFunc) Render(svg []byte, width, height int) ([]byte, error) {
	return f(svg, width, height)
}

func TestRunExitOnErrorPromotes(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string]string{
		"src/pack.json":        packTemplate,
		"src/assets/a.x99.svg": "<svg/>",
	})

	cfg := baseConfig()
	cfg.Formats = map[int]string{5: "1.20"}

	_, err := pipeline.Run(fsys, cfg, pipeline.Options{Format: pipeline.NoFormat, ExitOnError: true})
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidResolution, errors.GetErrorCode(err))
	assert.Equal(t, errors.SeverityFatal, errors.GetSeverity(err))
}
