package profiles

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
	"regexp"
)

// Replacement is one ordered regex rewrite rule for profile names
type Replacement struct {
	Pattern string
	Replace string
}

// the built in rules; AWS config section names with spaces or
// underscores are annoying to type
var defaultReplacements = []Replacement{
	{Pattern: "_", Replace: "-"},
	{Pattern: " ", Replace: "-"},
}

// MergeReplacements returns the user rules (in their given order)
// followed by the built in defaults, except where a user rule already
// claims the same pattern.  First definition wins.
func MergeReplacements(user []Replacement) []Replacement {
	merged := make([]Replacement, 0, len(user)+len(defaultReplacements))
	seen := map[string]bool{}

	for _, r := range user {
		merged = append(merged, r)
		seen[r.Pattern] = true
	}
	for _, r := range defaultReplacements {
		if !seen[r.Pattern] {
			merged = append(merged, r)
		}
	}
	return merged
}

// Munge applies the given rules, in order, to the name.  Each pattern is
// a regular expression; a pattern that fails to compile is reported at
// this point, not earlier.
func Munge(name string, rules []Replacement) (string, error) {
	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return "", fmt.Errorf("invalid replacement pattern '%s': %s", r.Pattern, err.Error())
		}
		name = re.ReplaceAllString(name, r.Replace)
	}
	return name, nil
}

// BuildName generates the profile name for an (account, role) pair.
// Deterministic: the same inputs always yield the same name.  Nobody
// checks the result is a legal config section name; that is what the
// replacement rules are for.
func BuildName(accountName, roleName string, userRules []Replacement) (string, error) {
	return Munge(accountName+"-"+roleName, MergeReplacements(userRules))
}
