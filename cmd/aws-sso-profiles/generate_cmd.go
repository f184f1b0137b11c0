package main

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

	"github.com/synfinatic/aws-sso-profiles/internal/awssso"
	"github.com/synfinatic/aws-sso-profiles/internal/generate"
	"github.com/synfinatic/aws-sso-profiles/internal/profiles"
	"github.com/synfinatic/aws-sso-profiles/internal/progress"
	"github.com/synfinatic/aws-sso-profiles/internal/url"
)

type GenerateCmd struct {
	SSODirectory     []string `kong:"short='s',name='sso-directory',required,help='AWS SSO directory name, as in https://<directory>.awsapps.com/start (repeatable)'"`
	ProfileTemplate  string   `kong:"short='t',name='profile-template',help='Template for each generated profile block'"`
	ExtraVar         []string `kong:"short='e',name='extra-var',help='Extra key=value available to the profile template (repeatable)'"`
	RegexReplacement []string `kong:"short='r',name='regex-replacement',help='pattern,replacement regex applied to profile names (repeatable)'"`
}

func (cc *GenerateCmd) Run(ctx *RunContext) error {
	extraVars := ctx.Settings.TemplateVars()
	cliVars, err := parseExtraVars(cc.ExtraVar)
	if err != nil {
		return err
	}
	for k, v := range cliVars {
		extraVars[k] = v
	}

	replacements, err := parseReplacements(cc.RegexReplacement)
	if err != nil {
		return err
	}

	action, err := url.NewAction(ctx.Settings.UrlAction)
	if err != nil {
		return fmt.Errorf("invalid UrlAction: %s", ctx.Settings.UrlAction)
	}

	tracker := progress.NewStderrTracker()
	defer tracker.Close()

	opts := awssso.Options{
		SsoRegion:  ctx.Settings.SSORegion,
		UrlAction:  action,
		Browser:    ctx.Settings.Browser,
		MaxRetry:   ctx.Settings.MaxRetry,
		MaxBackoff: ctx.Settings.MaxBackoff,
		Tracker:    tracker,
	}

	// repeating a directory on the CLI is not an error, just redundant
	flows := map[string]generate.SSOFlow{}
	directories := []string{}
	for _, d := range cc.SSODirectory {
		if _, ok := flows[d]; ok {
			continue
		}
		flows[d] = awssso.New(d, opts, ctx.Store)
		directories = append(directories, d)
	}

	g := generate.New(generate.Config{
		Directories:  directories,
		Template:     cc.ProfileTemplate,
		ExtraVars:    extraVars,
		Replacements: replacements,
		Threads:      ctx.Settings.Threads,
	}, flows)

	out, err := g.Run()
	if err != nil {
		return err
	}

	fmt.Print(out)
	return nil
}

// parseExtraVars validates the -e key=value arguments.  Exactly one
// equals sign per argument.
func parseExtraVars(args []string) (map[string]string, error) {
	vars := map[string]string{}
	for _, a := range args {
		if strings.Count(a, "=") != 1 {
			return nil, fmt.Errorf("Expected values in the form 'key=value', got: '%s'", a)
		}
		key, value, _ := strings.Cut(a, "=")
		vars[key] = value
	}
	return vars, nil
}

// parseReplacements validates the -r pattern,replacement arguments.
// Exactly one comma per argument; a regex needing a literal comma can
// spell it \x2c.
func parseReplacements(args []string) ([]profiles.Replacement, error) {
	replacements := []profiles.Replacement{}
	for _, a := range args {
		if strings.Count(a, ",") != 1 {
			return nil, fmt.Errorf("Expected values in the form 'pattern,replacement', got: '%s'", a)
		}
		pattern, replace, _ := strings.Cut(a, ",")
		replacements = append(replacements, profiles.Replacement{
			Pattern: pattern,
			Replace: replace,
		})
	}
	return replacements, nil
}
