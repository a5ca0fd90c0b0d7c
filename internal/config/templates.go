package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const templateHeader = "# drivectl defaults; command line flags take precedence.\n"

// Template renders the default config as TOML.
func Template() (string, error) {
	body, err := toml.Marshal(DefaultDriveConfig())
	if err != nil {
		return "", fmt.Errorf("config template render failed: %w", err)
	}
	return templateHeader + string(body), nil
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
	return os.WriteFile(path, []byte(template), 0o600)
}
