package generate

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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synfinatic/aws-sso-profiles/internal/awssso"
	"github.com/synfinatic/aws-sso-profiles/internal/profiles"
	"github.com/synfinatic/aws-sso-profiles/internal/storage"
)

// fakeFlow scripts one directory without any AWS behind it
type fakeFlow struct {
	key          string
	registration storage.RegisterClientData
	registered   bool
	authCalls    int
	accounts     []awssso.AccountInfo
	accountRoles map[string][]awssso.RoleInfo

	registerErr error
	authErr     error
	rolesErr    error
}

func (f *fakeFlow) StoreKey() string { return f.key }

func (f *fakeFlow) RegisterClient(force bool) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	f.registered = true
	f.registration = storage.RegisterClientData{
		ClientId:     "client-id",
		ClientSecret: "client-secret",
	}
	return nil
}

func (f *fakeFlow) Registration() storage.RegisterClientData {
	return f.registration
}

func (f *fakeFlow) SetRegistration(r storage.RegisterClientData) {
	f.registration = r
}

func (f *fakeFlow) Authenticate() error {
	f.authCalls++
	return f.authErr
}

func (f *fakeFlow) GetAccounts() ([]awssso.AccountInfo, error) {
	return f.accounts, nil
}

func (f *fakeFlow) GetAccountRoles(accounts []awssso.AccountInfo, threads int) (map[string][]awssso.RoleInfo, error) {
	if f.rolesErr != nil {
		return nil, f.rolesErr
	}
	return f.accountRoles, nil
}

func testFlow(key string) *fakeFlow {
	return &fakeFlow{
		key: key,
		accounts: []awssso.AccountInfo{
			{AccountId: "111111111111", AccountName: "acct"},
		},
		accountRoles: map[string][]awssso.RoleInfo{
			"acct": {
				{RoleName: "role", AccountId: "111111111111", AccountName: "acct"},
			},
		},
	}
}

func TestGeneratorRun(t *testing.T) {
	// directories render in sorted order no matter how they were given
	zeta := testFlow("zeta")
	alpha := testFlow("alpha")

	g := New(Config{
		Directories: []string{"zeta", "alpha"},
	}, map[string]SSOFlow{
		"zeta":  zeta,
		"alpha": alpha,
	})

	out, err := g.Run()
	require.NoError(t, err)

	alphaAt := strings.Index(out, "[sso-session alpha]")
	zetaAt := strings.Index(out, "[sso-session zeta]")
	require.NotEqual(t, -1, alphaAt)
	require.NotEqual(t, -1, zetaAt)
	assert.Less(t, alphaAt, zetaAt)

	assert.Contains(t, out, "sso_start_url = https://alpha.awsapps.com/start")
	assert.Contains(t, out, "[profile acct-role]")
	assert.Contains(t, out, "sso_session = zeta")

	// registration was resolved once and shared with both flows
	assert.Equal(t, 1, alpha.authCalls)
	assert.Equal(t, 1, zeta.authCalls)
	assert.Equal(t, alpha.registration, zeta.registration)
	assert.True(t, alpha.registered)
	assert.False(t, zeta.registered)
}

func TestGeneratorRunExactOutput(t *testing.T) {
	flow := testFlow("mydir")
	g := New(Config{Directories: []string{"mydir"}},
		map[string]SSOFlow{"mydir": flow})

	out, err := g.Run()
	require.NoError(t, err)
	assert.Equal(t, `
[sso-session mydir]
sso_start_url = https://mydir.awsapps.com/start
sso_region = us-east-1

[profile acct-role]
sso_session = mydir
sso_account_id = 111111111111
sso_role_name = role
`, out)
}

func TestGeneratorRunCustomTemplate(t *testing.T) {
	flow := testFlow("mydir")
	g := New(Config{
		Directories: []string{"mydir"},
		Template:    "\n[profile {profile_name}]\nregion = {region}\n",
		ExtraVars:   map[string]string{"region": "eu-west-1"},
	}, map[string]SSOFlow{"mydir": flow})

	out, err := g.Run()
	require.NoError(t, err)
	assert.Contains(t, out, "[profile acct-role]\nregion = eu-west-1\n")
}

func TestGeneratorRunFailures(t *testing.T) {
	// authentication failure aborts with no output
	flow := testFlow("mydir")
	flow.authErr = fmt.Errorf("denied")
	g := New(Config{Directories: []string{"mydir"}},
		map[string]SSOFlow{"mydir": flow})
	out, err := g.Run()
	assert.Error(t, err)
	assert.Empty(t, out)

	// role enumeration failure on the second directory discards the
	// output already rendered for the first
	alpha := testFlow("alpha")
	zeta := testFlow("zeta")
	zeta.rolesErr = fmt.Errorf("throttled")
	g = New(Config{Directories: []string{"zeta", "alpha"}},
		map[string]SSOFlow{"alpha": alpha, "zeta": zeta})
	out, err = g.Run()
	assert.Error(t, err)
	assert.Empty(t, out)

	// client registration failure
	flow = testFlow("mydir")
	flow.registerErr = fmt.Errorf("api down")
	g = New(Config{Directories: []string{"mydir"}},
		map[string]SSOFlow{"mydir": flow})
	_, err = g.Run()
	assert.Error(t, err)

	// no directories at all
	g = New(Config{}, map[string]SSOFlow{})
	_, err = g.Run()
	assert.Error(t, err)

	// missing flow for a directory
	g = New(Config{Directories: []string{"mydir"}}, map[string]SSOFlow{})
	_, err = g.Run()
	assert.Error(t, err)

	// bad replacement regex
	flow = testFlow("mydir")
	g = New(Config{
		Directories:  []string{"mydir"},
		Replacements: []profiles.Replacement{{Pattern: "[", Replace: "x"}},
	}, map[string]SSOFlow{"mydir": flow})
	out, err = g.Run()
	assert.Error(t, err)
	assert.Empty(t, out)
}
