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
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssooidc"
	oidctypes "github.com/aws/aws-sdk-go-v2/service/ssooidc/types"
	"github.com/davecgh/go-spew/spew"
	"github.com/synfinatic/aws-sso-profiles/internal/storage"
	"github.com/synfinatic/aws-sso-profiles/internal/url"
)

const (
	ssoClientName = "sso-config-generator"
	ssoClientType = "public"
	ssoGrantType  = "urn:ietf:params:oauth:grant-type:device_code"
	// The default values for OIDC defined in:
	// https://tools.ietf.org/html/draft-ietf-oauth-device-flow-15#section-3.5
	SLOW_DOWN_SEC  = 5
	RETRY_INTERVAL = 5
)

// StartDeviceAuthData tracks our ongoing device authorization challenge
type StartDeviceAuthData struct {
	DeviceCode              string
	UserCode                string
	VerificationUri         string
	VerificationUriComplete string
	ExpiresIn               int32
	Interval                int32
}

// CreateTokenResponse holds the SSO AccessToken for this directory.
// Lives in memory only; it is never written to the secure store.
type CreateTokenResponse struct {
	AccessToken string
	ExpiresIn   int32
}

// RegisterClient reads our client registration from the secure store,
// or registers a fresh one with AWS and persists it.  Anything wrong
// with the cached copy (missing, unparsable, expiring) is just a miss.
func (as *AWSSSO) RegisterClient(force bool) error {
	if !force {
		err := as.store.GetRegisterClientData(storage.REGISTRATION_KEY, &as.ClientData)
		if err == nil && as.ClientData.Valid() {
			log.Debug("Using cached client registration")
			return nil
		}
		log.Info("No valid cached client registration; registering a new one")
	}

	input := ssooidc.RegisterClientInput{
		ClientName: aws.String(as.ClientName),
		ClientType: aws.String(as.ClientType),
	}
	resp, err := as.ssooidc.RegisterClient(context.TODO(), &input)
	if err != nil {
		return fmt.Errorf("registerClient: %s", err.Error())
	}

	as.ClientData = storage.RegisterClientData{
		ClientId:              aws.ToString(resp.ClientId),
		ClientSecret:          aws.ToString(resp.ClientSecret),
		ClientSecretExpiresAt: resp.ClientSecretExpiresAt,
		ClientIdIssuedAt:      resp.ClientIdIssuedAt,
	}

	if err = as.store.SaveRegisterClientData(storage.REGISTRATION_KEY, as.ClientData); err != nil {
		// not fatal; we just register again next run
		log.Error("unable to save client registration", "error", err.Error())
	}
	return nil
}

// Registration returns our current client registration so it can be
// shared with the AWSSSO instances of other directories
func (as *AWSSSO) Registration() storage.RegisterClientData {
	return as.ClientData
}

// SetRegistration injects a client registration resolved elsewhere
func (as *AWSSSO) SetRegistration(r storage.RegisterClientData) {
	as.ClientData = r
}

// Authenticate runs the device authorization flow for our directory:
// start the challenge, hand the verification URL to the user and block
// until AWS issues us an AccessToken.
func (as *AWSSSO) Authenticate() error {
	err := as.startDeviceAuthorization()
	if err != nil {
		// startDeviceAuthorization can fail if our cached client
		// registration was revoked server side
		log.Debug("startDeviceAuthorization failed; forcing fresh client registration")
		if err = as.RegisterClient(true); err != nil {
			return fmt.Errorf("unable to register client with AWS SSO: %s", err.Error())
		}
		if err = as.startDeviceAuthorization(); err != nil {
			return fmt.Errorf("unable to start device authorization with AWS SSO: %s", err.Error())
		}
	}

	urlOpener := url.NewHandleUrl(as.urlAction, as.DeviceAuth.VerificationUriComplete, as.browser)
	if err = urlOpener.Open(); err != nil {
		return err
	}

	if err = as.createToken(); err != nil {
		return fmt.Errorf("unable to create new AWS SSO token: %s", err.Error())
	}
	return nil
}

// startDeviceAuthorization makes the call to AWS to initiate the OIDC
// device flow for our start URL
func (as *AWSSSO) startDeviceAuthorization() error {
	input := ssooidc.StartDeviceAuthorizationInput{
		StartUrl:     aws.String(as.StartUrl),
		ClientId:     aws.String(as.ClientData.ClientId),
		ClientSecret: aws.String(as.ClientData.ClientSecret),
	}
	resp, err := as.ssooidc.StartDeviceAuthorization(context.TODO(), &input)
	if err != nil {
		return err
	}

	as.DeviceAuth = StartDeviceAuthData{
		DeviceCode:              aws.ToString(resp.DeviceCode),
		UserCode:                aws.ToString(resp.UserCode),
		VerificationUri:         aws.ToString(resp.VerificationUri),
		VerificationUriComplete: aws.ToString(resp.VerificationUriComplete),
		ExpiresIn:               resp.ExpiresIn,
		Interval:                resp.Interval,
	}
	log.Debug("created OIDC device code", "directory", as.key, "expires", as.DeviceAuth.ExpiresIn)
	log.Trace("StartDeviceAuthorization", "data", spew.Sdump(as.DeviceAuth))

	return nil
}

// createToken polls AWS until the user approves the device in their
// browser.  "authorization pending" is the only retryable answer; AWS
// can also ask us to slow down.  Everything else is fatal and there is
// no retry cap -- the user can always ^C.
func (as *AWSSSO) createToken() error {
	input := ssooidc.CreateTokenInput{
		ClientId:     aws.String(as.ClientData.ClientId),
		ClientSecret: aws.String(as.ClientData.ClientSecret),
		DeviceCode:   aws.String(as.DeviceAuth.DeviceCode),
		GrantType:    aws.String(ssoGrantType),
	}

	// figure out our timings
	var slowDown = SLOW_DOWN_SEC * time.Second
	retryInterval := as.retryInterval
	if as.DeviceAuth.Interval > 0 && time.Duration(as.DeviceAuth.Interval)*time.Second > retryInterval {
		retryInterval = time.Duration(as.DeviceAuth.Interval) * time.Second
	}

	task := as.tracker.Start("Waiting for device authorization...", 0)

	var err error
	var resp *ssooidc.CreateTokenOutput

	for {
		resp, err = as.ssooidc.CreateToken(context.TODO(), &input)
		if err == nil {
			break
		}

		var sde *oidctypes.SlowDownException
		var ape *oidctypes.AuthorizationPendingException

		if errors.As(err, &sde) {
			log.Debug("Slowing down CreateToken()")
			retryInterval += slowDown
			time.Sleep(retryInterval)
		} else if errors.As(err, &ape) {
			time.Sleep(retryInterval)
		} else {
			return fmt.Errorf("createToken: %s", err.Error())
		}
	}

	task.Done()

	as.Token = CreateTokenResponse{
		AccessToken: aws.ToString(resp.AccessToken),
		ExpiresIn:   resp.ExpiresIn,
	}
	return nil
}
