package logger

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
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/synfinatic/flexlog"
)

var logger flexlog.FlexLogger

// initialize the default logger to log to stderr at the warn level
func init() {
	w := os.Stderr
	color := isatty.IsTerminal(w.Fd())
	logger = flexlog.NewLogger(flexlog.NewConsole, w, false, slog.LevelWarn, color)
}

// GetLogger returns the process-wide logger.  Packages grab a reference
// to this in their init() so everyone shares the same handler and level.
func GetLogger() flexlog.FlexLogger {
	return logger
}

// SetLogger replaces the process-wide logger.  Used by tests.
func SetLogger(l flexlog.FlexLogger) {
	logger = l
}
