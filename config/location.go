// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package config

import (
	"os"
	"path/filepath"
)

// DefaultFileName is the file name of the config file within its directory
const DefaultFileName = "config.yaml"

// EnvConfigPath overrides the location of the config file
const EnvConfigPath = "ENNIO_CONFIG"

// DefaultDirectory returns the default directory for ennio configuration ($HOME/.ennio)
//
// Currently this relies upon the $HOME environment variable being set
func DefaultDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".ennio"), nil
}

// Path returns the location of the config file
//
// explicit wins when set, then $ENNIO_CONFIG, then $HOME/.ennio/config.yaml
func Path(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if fromEnv := os.Getenv(EnvConfigPath); fromEnv != "" {
		return fromEnv, nil
	}
	dir, err := DefaultDirectory()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultFileName), nil
}
