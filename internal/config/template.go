package config

import (
	"fmt"
	"os"
)

// WriteTemplate writes a starter config to path, refusing to clobber
// an existing file unless overwrite is set. Grounded on the teacher's
// internal/config/templates.go WriteTemplate/Template pair.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(defaultTemplate), 0o600)
}

const defaultTemplate = `name = "ratreed"
addr = ":3960"
rebase_policy = "strict"
pass_through_errors = false

[wire]
max_string_len = 8388608
max_list_depth = 64

[edit]
txn_sourced_copy = false
`
