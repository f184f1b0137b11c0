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
	"strings"
)

// DEFAULT_PROFILE_TEMPLATE is what users get if they don't supply their
// own.  The leading newline survives dedenting and separates the blocks
// in the final output.
const DEFAULT_PROFILE_TEMPLATE = `
    [profile {profile_name}]
    sso_session = {sso_session}
    sso_account_id = {account_id}
    sso_role_name = {role_name}
`

const SSO_SESSION_BLOCK = `
    [sso-session {sso_session_name}]
    sso_start_url = {sso_start_url}
    sso_region = us-east-1
`

// Dedent strips the longest common leading whitespace from every line,
// so templates can be written indented.  Whitespace-only lines don't
// count toward the margin and come out empty.
func Dedent(text string) string {
	lines := strings.Split(text, "\n")

	margin := ""
	first := true
	for _, line := range lines {
		stripped := strings.TrimLeft(line, " \t")
		if stripped == "" {
			continue
		}
		indent := line[:len(line)-len(stripped)]
		if first {
			margin = indent
			first = false
			continue
		}
		i := 0
		for i < len(margin) && i < len(indent) && margin[i] == indent[i] {
			i++
		}
		margin = margin[:i]
	}

	for i, line := range lines {
		switch {
		case strings.TrimLeft(line, " \t") == "":
			lines[i] = ""
		case margin != "":
			lines[i] = strings.TrimPrefix(line, margin)
		}
	}
	return strings.Join(lines, "\n")
}

// substitute fills `{name}` placeholders in the template from vars.
// `{{` and `}}` escape to literal braces.  Referencing a placeholder we
// have no value for is fatal; nothing is rendered for that template.
func substitute(template string, vars map[string]string) (string, error) {
	var b strings.Builder

	for i := 0; i < len(template); {
		switch template[i] {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				b.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(template[i:], '}')
			if end == -1 {
				return "", fmt.Errorf("unterminated placeholder in template: '%s'", template[i:])
			}
			name := template[i+1 : i+end]
			v, ok := vars[name]
			if !ok {
				return "", fmt.Errorf("no value for placeholder '{%s}' in template", name)
			}
			b.WriteString(v)
			i += end + 1
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				b.WriteByte('}')
				i += 2
				continue
			}
			return "", fmt.Errorf("unmatched '}' in template")
		default:
			b.WriteByte(template[i])
			i++
		}
	}
	return b.String(), nil
}

// RenderSession renders the [sso-session] block for a directory
func RenderSession(sessionName, startUrl string) (string, error) {
	return substitute(Dedent(SSO_SESSION_BLOCK), map[string]string{
		"sso_session_name": sessionName,
		"sso_start_url":    startUrl,
	})
}

// RenderProfile renders one [profile] block.  Any extraVars become
// additional placeholders; the built in placeholders always win.
func RenderProfile(template string, profile Profile, sessionName string, extraVars map[string]string) (string, error) {
	vars := make(map[string]string, len(extraVars)+5)
	for k, v := range extraVars {
		vars[k] = v
	}
	vars["profile_name"] = profile.Name
	vars["account_name"] = profile.AccountName
	vars["account_id"] = profile.AccountId
	vars["role_name"] = profile.RoleName
	vars["sso_session"] = sessionName

	return substitute(Dedent(template), vars)
}
