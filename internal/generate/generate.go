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
	"sort"
	"strings"

	"github.com/synfinatic/aws-sso-profiles/internal/awssso"
	"github.com/synfinatic/aws-sso-profiles/internal/profiles"
	"github.com/synfinatic/aws-sso-profiles/internal/storage"
)

// SSOFlow is the slice of awssso.AWSSSO the generator drives, split out
// so tests can substitute a fake directory
type SSOFlow interface {
	StoreKey() string
	RegisterClient(force bool) error
	Registration() storage.RegisterClientData
	SetRegistration(storage.RegisterClientData)
	Authenticate() error
	GetAccounts() ([]awssso.AccountInfo, error)
	GetAccountRoles(accounts []awssso.AccountInfo, threads int) (map[string][]awssso.RoleInfo, error)
}

// Config drives one Generator run
type Config struct {
	Directories  []string
	Template     string // empty == profiles.DEFAULT_PROFILE_TEMPLATE
	ExtraVars    map[string]string
	Replacements []profiles.Replacement
	Threads      int
}

// Generator produces the AWS config blocks for a set of SSO directories
type Generator struct {
	config Config
	flows  map[string]SSOFlow
}

// New creates a Generator over the given per-directory flows.  The
// flows map must have one entry per Config.Directories entry.
func New(config Config, flows map[string]SSOFlow) *Generator {
	if config.Template == "" {
		config.Template = profiles.DEFAULT_PROFILE_TEMPLATE
	}
	if config.Threads < 1 {
		config.Threads = awssso.DEFAULT_THREADS
	}
	return &Generator{
		config: config,
		flows:  flows,
	}
}

// Run authenticates against each directory, enumerates every account
// and role and renders the config blocks.  All or nothing: any failure
// anywhere returns an error and no output.
func (g *Generator) Run() (string, error) {
	if len(g.config.Directories) == 0 {
		return "", fmt.Errorf("no SSO directories to process")
	}

	directories := make([]string, len(g.config.Directories))
	copy(directories, g.config.Directories)
	sort.Strings(directories)

	for _, d := range directories {
		if _, ok := g.flows[d]; !ok {
			return "", fmt.Errorf("no SSO client for directory %s", d)
		}
	}

	// the OIDC client registration is directory independent, so resolve
	// it once and share it with every flow
	first := g.flows[directories[0]]
	if err := first.RegisterClient(false); err != nil {
		return "", fmt.Errorf("unable to register client with AWS SSO: %s", err.Error())
	}
	registration := first.Registration()

	var out strings.Builder
	for _, d := range directories {
		flow := g.flows[d]
		flow.SetRegistration(registration)

		block, err := g.generateDirectory(flow)
		if err != nil {
			return "", err
		}
		out.WriteString(block)
	}

	return out.String(), nil
}

// generateDirectory renders the sso-session block plus one profile
// block per (account, role) pair for a single directory
func (g *Generator) generateDirectory(flow SSOFlow) (string, error) {
	directory := flow.StoreKey()
	log.Info("Authenticating", "directory", directory)

	if err := flow.Authenticate(); err != nil {
		return "", fmt.Errorf("%s: %s", directory, err.Error())
	}

	accounts, err := flow.GetAccounts()
	if err != nil {
		return "", fmt.Errorf("%s: %s", directory, err.Error())
	}
	log.Debug("enumerated accounts", "directory", directory, "count", len(accounts))

	accountRoles, err := flow.GetAccountRoles(accounts, g.config.Threads)
	if err != nil {
		return "", fmt.Errorf("%s: %s", directory, err.Error())
	}

	plist, err := profiles.Build(accountRoles, g.config.Replacements)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	startUrl := fmt.Sprintf(awssso.START_URL_FORMAT, directory)
	session, err := profiles.RenderSession(directory, startUrl)
	if err != nil {
		return "", err
	}
	out.WriteString(session)

	for _, p := range plist {
		block, err := profiles.RenderProfile(g.config.Template, p, directory, g.config.ExtraVars)
		if err != nil {
			return "", err
		}
		out.WriteString(block)
	}
	return out.String(), nil
}
