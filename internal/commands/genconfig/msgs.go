package genconfig

// Message constants
const (
	MsgShort = "Write a starter configuration file"
	MsgLong  = `The 'genconfig' command writes an example respackr.toml with every
supported key filled in, ready to edit. It refuses to overwrite an
existing file.`

	MsgExample = `  # Write ./respackr.toml
  respackr genconfig

  # Write somewhere else
  respackr genconfig --output packs/respackr.toml`
)
