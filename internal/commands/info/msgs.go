package info

// Message constants
const (
	MsgShort = "Print the resolved build configuration"
	MsgLong  = `The 'info' command loads the configuration, merges it with the built-in
defaults, validates it, and prints the result. Useful for checking what a
build would actually use without running one.`

	MsgExample = `  # Print the resolved config as TOML
  respackr info

  # Print it as YAML
  respackr info --output yaml`
)
