package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	packerrors "github.com/zentheon/respackr/pkg/errors"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validTOML = `
name = "mypack"
description = "A test pack"
source_dir = "src"
allowed_paths = ["assets", "pack.mcmeta"]
process_images = true
theme_dir = "themes"

[formats]
18 = "1.20"
15 = "1.19"

[scales]
1 = 96
2 = 192

[default_colors]
primary = "#1a2b3c"
`

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "respackr.toml", validTOML)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mypack", cfg.Name)
	assert.Equal(t, "src", cfg.SourceDir)
	assert.Equal(t, map[int]string{18: "1.20", 15: "1.19"}, cfg.Formats)
	assert.Equal(t, map[int]int{1: 96, 2: 192}, cfg.Scales)
	assert.Equal(t, map[string]string{"primary": "#1a2b3c"}, cfg.DefaultColors)
	assert.True(t, cfg.ProcessImages)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "respackr.toml", `
name = "mypack"
source_dir = "src"

[formats]
15 = "1.19"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	// Embedded defaults fill what the file omits.
	assert.Equal(t, "generated", cfg.OutputDir)
	assert.Equal(t, 0, cfg.FutureFormats)
	assert.False(t, cfg.ProcessImages)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "respackr.yaml", `
name: mypack
source_dir: src
formats:
  "18": "1.20"
scales:
  "2": 192
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{18: "1.20"}, cfg.Formats)
	assert.Equal(t, map[int]int{2: 192}, cfg.Scales)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Equal(t, packerrors.ErrConfigNotFound, packerrors.GetErrorCode(err))
	assert.Equal(t, packerrors.SeverityFatal, packerrors.GetSeverity(err))
}

func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, "respackr.toml", "name = [broken")

	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, packerrors.ErrConfigParse, packerrors.GetErrorCode(err))
}

func TestLoadNonIntegerTableKey(t *testing.T) {
	path := writeConfig(t, "respackr.toml", `
name = "mypack"
source_dir = "src"

[formats]
latest = "1.20"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, packerrors.ErrConfigInvalid, packerrors.GetErrorCode(err))
}

func TestValidate(t *testing.T) {
	base := func() string {
		return `
name = "mypack"
source_dir = "src"

[formats]
15 = "1.19"
`
	}

	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing name",
			content: `
source_dir = "src"
[formats]
15 = "1.19"
`,
		},
		{
			name: "missing source_dir",
			content: `
name = "mypack"
[formats]
15 = "1.19"
`,
		},
		{
			name: "missing formats",
			content: `
name = "mypack"
source_dir = "src"
`,
		},
		{
			name: "empty format label",
			content: `
name = "mypack"
source_dir = "src"
[formats]
15 = ""
`,
		},
		{
			name:    "negative future_formats",
			content: base() + "future_formats = -1\n",
		},
		{
			name:    "process_images without scales",
			content: base() + "process_images = true\n",
		},
		{
			name: "non-positive scale DPI",
			content: base() + `
process_images = true
[scales]
1 = 0
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "respackr.toml", tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.Equal(t, packerrors.ErrConfigInvalid, packerrors.GetErrorCode(err))
			assert.Equal(t, packerrors.SeverityFatal, packerrors.GetSeverity(err))
		})
	}
}

func TestSortedAccessors(t *testing.T) {
	cfg := &Config{
		Formats: map[int]string{9: "1.16", 18: "1.20", 15: "1.19", 0: "1.7"},
		Scales:  map[int]int{1: 96, 3: 288, 2: 192},
	}

	assert.Equal(t, []int{18, 15, 9, 0}, cfg.SortedFormats())
	assert.Equal(t, []int{3, 2, 1}, cfg.SortedScales())
}

func TestWriteStarter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "respackr.toml")
	require.NoError(t, WriteStarter(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mypack", cfg.Name)
	assert.NotEmpty(t, cfg.Formats)

	// Never clobbers an existing file.
	err = WriteStarter(path)
	require.Error(t, err)
	assert.Equal(t, packerrors.ErrConfigInvalid, packerrors.GetErrorCode(err))
}
