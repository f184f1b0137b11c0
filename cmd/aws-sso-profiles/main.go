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
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/alecthomas/kong"
	"github.com/posener/complete"
	"github.com/synfinatic/aws-sso-profiles/internal/awssso"
	"github.com/synfinatic/aws-sso-profiles/internal/config"
	"github.com/synfinatic/aws-sso-profiles/internal/logger"
	"github.com/synfinatic/aws-sso-profiles/internal/settings"
	"github.com/synfinatic/aws-sso-profiles/internal/storage"
	"github.com/synfinatic/aws-sso-profiles/internal/url"
	"github.com/synfinatic/flexlog"
	"github.com/willabides/kongplete"
)

// These variables are defined in the Makefile
var Version = "unknown"
var Buildinfos = "unknown"
var Tag = "NO-TAG"
var CommitID = "unknown"
var Delta = ""

var log flexlog.FlexLogger

type RunContext struct {
	Kctx     *kong.Context
	Cli      *CLI
	Settings *settings.Settings
	Store    storage.SecureStorage
}

const (
	DEFAULT_STORE  = "file"
	COPYRIGHT_YEAR = "2021-2025"
)

var DEFAULT_CONFIG map[string]interface{} = map[string]interface{}{
	"SecureStore": DEFAULT_STORE,
	"SSORegion":   awssso.DEFAULT_REGION,
	"UrlAction":   "open",
	"LogLevel":    "warn",
	"Threads":     awssso.DEFAULT_THREADS,
	"MaxBackoff":  awssso.MAX_BACKOFF_SECONDS,
	"MaxRetry":    awssso.MAX_RETRY_ATTEMPTS,
}

type CLI struct {
	// Common Arguments
	Browser    string `kong:"short='b',help='Path to browser to open URLs with',env='AWS_SSO_BROWSER'"`
	ConfigFile string `kong:"name='config',default='${CONFIG_FILE}',help='Config file',env='AWS_SSO_PROFILES_CONFIG',predictor='allFiles'"`
	LogLevel   string `kong:"short='L',name='level',help='Logging level [error|warn|info|debug|trace] (default: warn)'"`
	Lines      bool   `kong:"help='Print line number in logs'"`
	UrlAction  string `kong:"short='u',help='How to handle URLs [clip|open|print|printurl] (default: open)',predictor='urlAction'"`
	Threads    int    `kong:"help='Override number of threads for talking to AWS (default: 4)'"`

	// Commands
	Generate           GenerateCmd                  `kong:"cmd,default='1',help='Generate AWS config profiles for your SSO directories (default command)'"`
	Version            VersionCmd                   `kong:"cmd,help='Print version and exit'"`
	InstallCompletions kongplete.InstallCompletions `kong:"cmd,help='Install shell completions'"`
}

func main() {
	cli := CLI{}
	var err error

	log = logger.GetLogger()
	ctx, override := parseArgs(&cli)

	runCtx := RunContext{
		Kctx: ctx,
		Cli:  &cli,
	}

	switch ctx.Command() {
	case "version", "install-completions":
		// neither needs our config file or the secure store
		if err = ctx.Run(&runCtx); err != nil {
			log.Fatal(err.Error())
		}
		return
	}

	// Load the config file
	cli.ConfigFile = config.GetHomePath(cli.ConfigFile)

	if runCtx.Settings, err = settings.LoadSettings(cli.ConfigFile, DEFAULT_CONFIG, override); err != nil {
		log.Fatal(err.Error())
	}

	loadSecureStore(&runCtx)

	if err = ctx.Run(&runCtx); err != nil {
		log.Fatal(err.Error())
	}
}

// loadSecureStore loads our secure store data for future access
func loadSecureStore(ctx *RunContext) {
	var err error
	switch ctx.Settings.SecureStore {
	case "json":
		sfile := config.JsonStoreFile(true)
		if ctx.Settings.JsonStore != "" {
			sfile = config.GetHomePath(ctx.Settings.JsonStore)
		}
		ctx.Store, err = storage.OpenJsonStore(sfile)
		if err != nil {
			log.Fatal("Unable to open JsonStore", "file", sfile, "error", err.Error())
		}
		log.Warn("Using insecure json file for SecureStore", "file", sfile)
	default:
		cfg, err := storage.NewKeyringConfig(ctx.Settings.SecureStore, config.ConfigDir(true))
		if err != nil {
			log.Fatal("Unable to create SecureStore", "error", err.Error())
		}
		ctx.Store, err = storage.OpenKeyring(cfg)
		if err != nil {
			log.Fatal("Unable to open SecureStore", "store", ctx.Settings.SecureStore, "error", err.Error())
		}
	}
}

// parseArgs parses our CLI arguments
func parseArgs(cli *CLI) (*kong.Context, settings.OverrideSettings) {
	// need to pass in the variables for defaults
	vars := kong.Vars{
		"CONFIG_DIR":      config.ConfigDir(false),
		"CONFIG_FILE":     config.ConfigFile(false),
		"DEFAULT_STORE":   DEFAULT_STORE,
		"JSON_STORE_FILE": config.JsonStoreFile(false),
		"VERSION":         Version,
	}

	help := kong.HelpOptions{
		NoExpandSubcommands: true,
	}

	parser := kong.Must(
		cli,
		kong.Name("aws-sso-profiles"),
		kong.Description(heredoc.Doc(`
			Generate AWS CLI config profiles for every account and role you
			can access via AWS Identity Center (SSO).`)),
		kong.ConfigureHelp(help),
		vars,
	)

	kongplete.Complete(parser,
		kongplete.WithPredictors(
			map[string]complete.Predictor{
				"allFiles":  complete.PredictFiles("*"),
				"urlAction": complete.PredictSet("clip", "open", "print", "printurl"),
			},
		),
	)

	args := os.Args[1:]
	if len(args) == 0 {
		args = []string{"--help"}
	}

	ctx, err := parser.Parse(args)
	parser.FatalIfErrorf(err)

	if _, err = url.NewAction(cli.UrlAction); err != nil {
		log.Fatal("Invalid --url-action", "action", cli.UrlAction)
	}

	override := settings.OverrideSettings{
		Browser:   cli.Browser,
		UrlAction: cli.UrlAction,
		LogLevel:  cli.LogLevel,
		LogLines:  cli.Lines,
		Threads:   cli.Threads,
	}

	return ctx, override
}
