package config

/*
 * AWS SSO Profiles
 * Copyright (c) 2021-2025 Aaron Turner  <synfinatic at gmail dot com>
 *
 * This program is free software: you can redistribute it
 * and/or modify it under the terms of the GNU General Public License as
 * published by the Free Software Foundation, either version 3 of the
 * License, or with the authors permission any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	CONFIG_FILE     = "%s/config.yaml"
	JSON_STORE_FILE = "%s/store.json"
)

// GetHomePath expands a leading ~ and normalizes the path separators
func GetHomePath(path string) string {
	// easiest to just manually replace our separator rather than relying on filepath.Join()
	sep := fmt.Sprintf("%c", os.PathSeparator)
	p := strings.ReplaceAll(path, "/", sep)
	if strings.HasPrefix(p, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			panic(fmt.Sprintf("unable to GetHomePath: %s", path))
		}

		p = strings.Replace(p, "~", home, 1)
	}
	return filepath.Clean(p)
}

// ConfigDir returns the path to the config directory
func ConfigDir(expand bool) string {
	path := "~/.config/aws-sso-profiles" // default XDG path is default

	// check if the user has a custom XDG_CONFIG_HOME
	xdgPath, ok := os.LookupEnv("XDG_CONFIG_HOME")
	if ok {
		// fixup the path if it's the default, otherwise our tests are a disaster
		if xdgPath == fmt.Sprintf("%s/.config", os.Getenv("HOME")) {
			xdgPath = "~/.config"
		}
		path = fmt.Sprintf("%s/aws-sso-profiles", xdgPath)
	}

	if expand {
		path = GetHomePath(path)
	}
	return path
}

// ConfigFile returns the path to the config file
func ConfigFile(expand bool) string {
	return fmt.Sprintf(CONFIG_FILE, ConfigDir(expand))
}

// JsonStoreFile returns the path to the JSON store file
func JsonStoreFile(expand bool) string {
	return fmt.Sprintf(JSON_STORE_FILE, ConfigDir(expand))
}
