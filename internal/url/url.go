package url

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
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/skratchdot/open-golang/open"
)

const (
	DEFAULT_PRE_MSG  = "Please open the following URL in your browser:\n\n"
	DEFAULT_POST_MSG = "\n\n"
)

// these types & variables make our code easier to unit test
type urlOpenerFunc func(string) error
type urlOpenerWithFunc func(string, string) error
type clipboardWriterFunc func(string) error

var urlOpener urlOpenerFunc = open.Run
var urlOpenerWith urlOpenerWithFunc = open.RunWith
var clipboardWriter clipboardWriterFunc = clipboard.WriteAll

type Action string

const (
	Undef    Action = ""         // undefined
	Clip     Action = "clip"     // copy to clipboard
	Print    Action = "print"    // print message & url to stderr
	PrintUrl Action = "printurl" // print only the url to stderr
	Open     Action = "open"     // auto-open in default or specified browser
)

// NewAction converts the user supplied string into an Action
func NewAction(action string) (Action, error) {
	var actionMap = map[string]Action{
		"":         Undef,
		"clip":     Clip,
		"open":     Open,
		"print":    Print,
		"printurl": PrintUrl,
	}
	ret, ok := actionMap[action]
	if !ok {
		return Open, fmt.Errorf("invalid Action: %s", action)
	}
	return ret, nil
}

type HandleUrl struct {
	Action  Action
	Browser string
	Url     string
	PreMsg  string
	PostMsg string
}

func NewHandleUrl(action Action, url, browser string) *HandleUrl {
	if action == Undef {
		action = Open
	}

	h := &HandleUrl{
		Action:  action,
		Browser: browser,
		Url:     url,
		PreMsg:  DEFAULT_PRE_MSG,
		PostMsg: DEFAULT_POST_MSG,
	}
	return h
}

var printWriter io.Writer = os.Stderr

// Open our url using our config
func (h *HandleUrl) Open() error {
	var err error
	var browser string

	switch h.Action {
	case Clip:
		err = clipboardWriter(h.Url)
		if err == nil {
			log.Info("Please open URL copied to clipboard.\n")
		} else {
			err = fmt.Errorf("unable to copy URL to clipboard: %s", err.Error())
		}

	case Print:
		fmt.Fprintf(printWriter, "%s%s%s", h.PreMsg, h.Url, h.PostMsg)

	case PrintUrl:
		fmt.Fprintf(printWriter, "%s\n", h.Url)

	case Open:
		switch h.Browser {
		case "":
			err = urlOpener(h.Url)
			browser = "default browser"
		default:
			err = urlOpenerWith(h.Url, h.Browser)
			browser = h.Browser
		}
		if err != nil {
			err = fmt.Errorf("unable to open URL with %s: %s", browser, err.Error())
		} else {
			log.Info("Opening URL", "browser", browser)
		}

	default:
		err = fmt.Errorf("unsupported Open action: %s", string(h.Action))
	}

	return err
}
