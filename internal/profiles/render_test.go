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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedent(t *testing.T) {
	assert.Equal(t, "\nfoo\nbar\n", Dedent("\n    foo\n    bar\n"))
	// whitespace-only lines don't count toward the margin
	assert.Equal(t, "\nfoo\n\nbar\n", Dedent("\n    foo\n  \n    bar\n"))
	// deeper indents keep their relative depth
	assert.Equal(t, "foo\n  bar", Dedent("  foo\n    bar"))
	// nothing in common == unchanged
	assert.Equal(t, "foo\n  bar", Dedent("foo\n  bar"))
}

func TestSubstitute(t *testing.T) {
	got, err := substitute("[profile {name}]", map[string]string{"name": "dev"})
	assert.NoError(t, err)
	assert.Equal(t, "[profile dev]", got)

	// literal braces
	got, err = substitute("{{{name}}}", map[string]string{"name": "dev"})
	assert.NoError(t, err)
	assert.Equal(t, "{dev}", got)

	_, err = substitute("{missing}", map[string]string{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no value for placeholder '{missing}'")

	_, err = substitute("{oops", map[string]string{})
	assert.Error(t, err)

	_, err = substitute("oops}", map[string]string{})
	assert.Error(t, err)
}

func TestRenderProfile(t *testing.T) {
	p := Profile{
		Name:        "acct-role",
		AccountName: "acct",
		AccountId:   "111111111111",
		RoleName:    "role",
	}

	got, err := RenderProfile("[profile {profile_name}]\nsso_session = {sso_session}\n", p, "mydir", nil)
	assert.NoError(t, err)
	assert.Equal(t, "[profile acct-role]\nsso_session = mydir\n", got)

	// extra vars are available, but never shadow the builtins
	got, err = RenderProfile("{profile_name} {region}", p, "mydir", map[string]string{
		"region":       "eu-west-1",
		"profile_name": "nope",
	})
	assert.NoError(t, err)
	assert.Equal(t, "acct-role eu-west-1", got)

	_, err = RenderProfile("{unknown_var}", p, "mydir", nil)
	assert.Error(t, err)
}

func TestRenderProfileDefaultTemplate(t *testing.T) {
	p := Profile{
		Name:        "Dev-Team-AdministratorAccess",
		AccountName: "Dev Team",
		AccountId:   "222222222222",
		RoleName:    "AdministratorAccess",
	}

	got, err := RenderProfile(DEFAULT_PROFILE_TEMPLATE, p, "mydir", nil)
	assert.NoError(t, err)
	assert.Equal(t, `
[profile Dev-Team-AdministratorAccess]
sso_session = mydir
sso_account_id = 222222222222
sso_role_name = AdministratorAccess
`, got)
}

func TestRenderSession(t *testing.T) {
	got, err := RenderSession("mydir", "https://mydir.awsapps.com/start")
	assert.NoError(t, err)
	assert.Equal(t, `
[sso-session mydir]
sso_start_url = https://mydir.awsapps.com/start
sso_region = us-east-1
`, got)
}
