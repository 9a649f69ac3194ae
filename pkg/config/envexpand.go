package config

import "os"

// ExpandEnv expands ${VAR} and $VAR references in YAML content before
// parsing, so a DSN or port can be supplied by the environment without a
// templating layer.
func ExpandEnv(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}
