package awssso

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
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/service/sso"
	"github.com/aws/aws-sdk-go-v2/service/ssooidc"
	"github.com/synfinatic/aws-sso-profiles/internal/progress"
	"github.com/synfinatic/aws-sso-profiles/internal/storage"
	"github.com/synfinatic/aws-sso-profiles/internal/url"
)

const (
	START_URL_FORMAT = "https://%s.awsapps.com/start"
	DEFAULT_REGION   = "us-east-1"
	DEFAULT_THREADS  = 4

	MAX_RETRY_ATTEMPTS  = 10
	MAX_BACKOFF_SECONDS = 5
)

// Necessary for mocking
type SsoOidcAPI interface {
	RegisterClient(context.Context, *ssooidc.RegisterClientInput, ...func(*ssooidc.Options)) (*ssooidc.RegisterClientOutput, error)
	StartDeviceAuthorization(context.Context, *ssooidc.StartDeviceAuthorizationInput, ...func(*ssooidc.Options)) (*ssooidc.StartDeviceAuthorizationOutput, error)
	CreateToken(context.Context, *ssooidc.CreateTokenInput, ...func(*ssooidc.Options)) (*ssooidc.CreateTokenOutput, error)
}

type SsoAPI interface {
	ListAccountRoles(context.Context, *sso.ListAccountRolesInput, ...func(*sso.Options)) (*sso.ListAccountRolesOutput, error)
	ListAccounts(context.Context, *sso.ListAccountsInput, ...func(*sso.Options)) (*sso.ListAccountsOutput, error)
}

// AWSSSO is our client for one SSO directory.  The OIDC client
// registration is shared between directories; everything else (device
// auth, access token) is scoped to this instance and never persisted.
type AWSSSO struct {
	key        string // directory name
	StartUrl   string
	SsoRegion  string
	ClientName string
	ClientType string
	sso        SsoAPI
	ssooidc    SsoOidcAPI
	store      storage.SecureStorage
	ClientData storage.RegisterClientData
	DeviceAuth StartDeviceAuthData
	Token      CreateTokenResponse

	urlAction     url.Action
	browser       string
	tracker       *progress.Tracker
	retryInterval time.Duration
}

// Options tune a new AWSSSO client
type Options struct {
	SsoRegion  string
	UrlAction  url.Action
	Browser    string
	MaxRetry   int
	MaxBackoff int
	Tracker    *progress.Tracker
}

// New creates the AWSSSO client for the named directory
func New(directory string, opts Options, store storage.SecureStorage) *AWSSSO {
	region := opts.SsoRegion
	if region == "" {
		region = DEFAULT_REGION
	}
	maxRetry := MAX_RETRY_ATTEMPTS
	if opts.MaxRetry > 0 {
		maxRetry = opts.MaxRetry
	}
	maxBackoff := MAX_BACKOFF_SECONDS
	if opts.MaxBackoff > 0 {
		maxBackoff = opts.MaxBackoff
	}
	log.Debug("loading SSO", "directory", directory, "retries", maxRetry, "maxBackoff", maxBackoff)

	r := retry.NewStandard(func(o *retry.StandardOptions) {
		o.MaxAttempts = maxRetry
		o.MaxBackoff = time.Duration(maxBackoff) * time.Second
	})

	oidcSession := ssooidc.New(ssooidc.Options{
		Region:  region,
		Retryer: r,
	})

	ssoSession := sso.New(sso.Options{
		Region:  region,
		Retryer: r,
	})

	return &AWSSSO{
		key:           directory,
		StartUrl:      fmt.Sprintf(START_URL_FORMAT, directory),
		SsoRegion:     region,
		ClientName:    ssoClientName,
		ClientType:    ssoClientType,
		sso:           ssoSession,
		ssooidc:       oidcSession,
		store:         store,
		urlAction:     opts.UrlAction,
		browser:       opts.Browser,
		tracker:       opts.Tracker,
		retryInterval: RETRY_INTERVAL * time.Second,
	}
}

// StoreKey returns the directory name this AWSSSO instance serves
func (as *AWSSSO) StoreKey() string {
	return as.key
}

type AccountInfo struct {
	AccountId   string `json:"AccountId"`
	AccountName string `json:"AccountName"`
}

type RoleInfo struct {
	RoleName    string `json:"RoleName"`
	AccountId   string `json:"AccountId"`
	AccountName string `json:"AccountName"`
}

// GetAccounts queries AWS and returns the list of AWS accounts visible
// to our session token, draining the pagination before returning
func (as *AWSSSO) GetAccounts() ([]AccountInfo, error) {
	task := as.tracker.Start("Listing accounts...", 0)

	accounts := []AccountInfo{}
	input := sso.ListAccountsInput{
		AccessToken: aws.String(as.Token.AccessToken),
		MaxResults:  aws.Int32(1000),
	}

	for {
		output, err := as.sso.ListAccounts(context.TODO(), &input)
		if err != nil {
			return accounts, fmt.Errorf("listAccounts: %s", err.Error())
		}
		for _, r := range output.AccountList {
			accounts = append(accounts, AccountInfo{
				AccountId:   aws.ToString(r.AccountId),
				AccountName: aws.ToString(r.AccountName),
			})
		}
		if aws.ToString(output.NextToken) == "" {
			break
		}
		input.NextToken = output.NextToken
	}

	task.Done()
	log.Debug("listed accounts", "count", len(accounts))
	return accounts, nil
}

// GetRoles fetches all the SSO IAM roles for the given AWS account,
// draining the pagination.  Runs inside the GetAccountRoles worker pool
// so it must not touch any shared state.
func (as *AWSSSO) GetRoles(account AccountInfo) ([]RoleInfo, error) {
	roles := []RoleInfo{}
	input := sso.ListAccountRolesInput{
		AccessToken: aws.String(as.Token.AccessToken),
		AccountId:   aws.String(account.AccountId),
		MaxResults:  aws.Int32(1000),
	}

	for {
		output, err := as.sso.ListAccountRoles(context.TODO(), &input)
		if err != nil {
			return roles, fmt.Errorf("listAccountRoles: %s", err.Error())
		}
		for _, r := range output.RoleList {
			roles = append(roles, RoleInfo{
				RoleName:    aws.ToString(r.RoleName),
				AccountId:   aws.ToString(r.AccountId),
				AccountName: account.AccountName,
			})
		}
		if aws.ToString(output.NextToken) == "" {
			break
		}
		input.NextToken = output.NextToken
	}

	return roles, nil
}

type roleResult struct {
	account AccountInfo
	roles   []RoleInfo
	err     error
}

// GetAccountRoles fans out over a fixed size worker pool to fetch the
// roles for every account.  Results merge in completion order; the first
// worker failure aborts the whole enumeration.  Accounts sharing a name
// silently overwrite each other.
func (as *AWSSSO) GetAccountRoles(accounts []AccountInfo, threads int) (map[string][]RoleInfo, error) {
	accountRoles := map[string][]RoleInfo{}
	if len(accounts) == 0 {
		return accountRoles, nil
	}

	workers := threads
	if workers < 1 {
		workers = DEFAULT_THREADS
	}
	if workers > len(accounts) {
		workers = len(accounts)
	}

	tasks := make(chan AccountInfo, len(accounts))
	results := make(chan roleResult, len(accounts))
	quit := make(chan struct{})

	// feed our workers with all the accounts up front
	for _, aInfo := range accounts {
		tasks <- aInfo
	}
	close(tasks)

	for w := 1; w <= workers; w++ {
		go as.fetchRoles(w, tasks, results, quit)
	}

	task := as.tracker.Start("Listing roles for accounts...", len(accounts))

	for count := 0; count < len(accounts); count++ {
		r := <-results
		if r.err != nil {
			// stop workers from picking up more accounts; the results
			// channel is sized so in-flight workers never block on send
			close(quit)
			return nil, fmt.Errorf("unable to list roles for account %s: %s",
				r.account.AccountId, r.err.Error())
		}
		if _, ok := accountRoles[r.account.AccountName]; ok {
			log.Debug("duplicate account name; last writer wins",
				"accountName", r.account.AccountName, "accountId", r.account.AccountId)
		}
		accountRoles[r.account.AccountName] = r.roles
		task.Advance()
	}

	return accountRoles, nil
}

// fetchRoles is the worker pool goroutine
func (as *AWSSSO) fetchRoles(id int, tasks <-chan AccountInfo, results chan<- roleResult, quit <-chan struct{}) {
	for a := range tasks {
		select {
		case <-quit:
			return
		default:
		}
		log.Debug("worker processing account", "worker", id, "accountId", a.AccountId)
		roles, err := as.GetRoles(a)
		results <- roleResult{account: a, roles: roles, err: err}
	}
}
