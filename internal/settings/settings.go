package settings

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

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
)

type Settings struct {
	configFile  string                 // name of this file
	SecureStore string                 `koanf:"SecureStore" yaml:"SecureStore,omitempty"` // file, json or keyring
	JsonStore   string                 `koanf:"JsonStore" yaml:"JsonStore,omitempty"`
	SSORegion   string                 `koanf:"SSORegion" yaml:"SSORegion,omitempty"`
	Browser     string                 `koanf:"Browser" yaml:"Browser,omitempty"`
	UrlAction   string                 `koanf:"UrlAction" yaml:"UrlAction,omitempty"`
	Threads     int                    `koanf:"Threads" yaml:"Threads,omitempty"`
	MaxBackoff  int                    `koanf:"MaxBackoff" yaml:"MaxBackoff,omitempty"`
	MaxRetry    int                    `koanf:"MaxRetry" yaml:"MaxRetry,omitempty"`
	LogLevel    string                 `koanf:"LogLevel" yaml:"LogLevel,omitempty"`
	LogLines    bool                   `koanf:"LogLines" yaml:"LogLines,omitempty"`
	ExtraVars   map[string]interface{} `koanf:"ExtraVars" yaml:"ExtraVars,omitempty"`
}

type OverrideSettings struct {
	Browser   string
	UrlAction string
	LogLevel  string
	LogLines  bool
	Threads   int
}

// LoadSettings loads our settings from defaults, the config file and the
// CLI overrides, in that order.  The config file is optional.
func LoadSettings(configFile string, defaults map[string]interface{}, override OverrideSettings) (*Settings, error) {
	var err error
	konf := koanf.New(".")
	s := &Settings{
		configFile: configFile,
	}

	if err = konf.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return s, fmt.Errorf("unable to load default settings: %s", err.Error())
	}

	// unlike the config file of most tools, ours is entirely optional
	// since every directory is named on the CLI
	if _, err = os.Stat(configFile); err == nil {
		if err = konf.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return s, fmt.Errorf("unable to open config file %s: %s", configFile, err.Error())
		}
	}

	if err = konf.Unmarshal("", s); err != nil {
		return s, fmt.Errorf("unable to process config file: %s", err.Error())
	}

	s.setOverrides(override)

	return s, nil
}

// configure our settings using the overrides
func (s *Settings) setOverrides(override OverrideSettings) {
	// Setup Logging
	if override.LogLevel != "" {
		s.LogLevel = override.LogLevel
	}

	err := log.SetLevelString(s.LogLevel)
	if err != nil {
		log.Fatal("Invalid log level", "level", s.LogLevel, "error", err.Error())
	}

	if override.LogLines {
		s.LogLines = true
	}
	log.SetReportCaller(s.LogLines)

	// Other overrides from CLI
	if override.Browser != "" {
		s.Browser = override.Browser
	}
	if override.UrlAction != "" {
		s.UrlAction = override.UrlAction
	}
	if override.Threads > 0 {
		s.Threads = override.Threads
	}
}

func (s *Settings) ConfigFile() string {
	return s.configFile
}

// TemplateVars flattens the ExtraVars from the config file down to the
// strings our profile templates take.  CLI --extra-var values are merged
// on top of these by the caller.
func (s *Settings) TemplateVars() map[string]string {
	vars := map[string]string{}
	for k, v := range s.ExtraVars {
		vars[k] = fmt.Sprintf("%v", v)
	}
	return vars
}
