package generate

// Message constants
const (
	MsgShort = "Build the resourcepack archives"
	MsgLong  = `The 'generate' command runs the full build: it scans the source tree,
optionally recolors and rasterizes vector assets, then produces one archive
per declared format (and per scale, when scales are configured).

Formats are processed from newest to oldest, and each format's exclusions
and overlay folders carry over to every older format below it.`

	MsgExample = `  # Build everything declared in respackr.toml
  respackr generate --packver 2.1.0

  # Build with the dark theme, scale 2 only
  respackr generate --packver 2.1.0 --theme dark --scale 2

  # Build a single format (newer formats' overlays still apply)
  respackr generate --packver 2.1.0 --format 15

  # Strict CI mode: any recorded error aborts the run
  respackr generate --packver 2.1.0 --exit-error`
)
