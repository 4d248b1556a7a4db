package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const templateHeader = `# docwire configuration
#
# schemas lists YAML schema files, relative to this file.
# log.level accepts trace, debug, info, warn, error, disabled.

`

// Template renders the default configuration as TOML.
func Template() ([]byte, error) {
	body, err := toml.Marshal(Default())
	if err != nil {
		return nil, fmt.Errorf("render config template: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(templateHeader)
	buf.Write(body)
	return buf.Bytes(), nil
}

func WriteTemplate(path string, overwrite bool) error {
	template, err := Template()
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, template, 0o600)
}
