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
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssooidc"
	oidctypes "github.com/aws/aws-sdk-go-v2/service/ssooidc/types"
	"github.com/stretchr/testify/assert"
	"github.com/synfinatic/aws-sso-profiles/internal/storage"
	"github.com/synfinatic/aws-sso-profiles/internal/url"
)

// mock ssooidc
type mockSsoOidcApi struct {
	Results []mockSsoOidcApiResults
}

type mockSsoOidcApiResults struct {
	RegisterClient           *ssooidc.RegisterClientOutput
	StartDeviceAuthorization *ssooidc.StartDeviceAuthorizationOutput
	CreateToken              *ssooidc.CreateTokenOutput
	Error                    error
}

func (m *mockSsoOidcApi) next() (mockSsoOidcApiResults, error) {
	if len(m.Results) == 0 {
		return mockSsoOidcApiResults{}, fmt.Errorf("calling mocked OIDC API too many times")
	}
	var x mockSsoOidcApiResults
	x, m.Results = m.Results[0], m.Results[1:]
	return x, nil
}

func (m *mockSsoOidcApi) RegisterClient(ctx context.Context, params *ssooidc.RegisterClientInput, optFns ...func(*ssooidc.Options)) (*ssooidc.RegisterClientOutput, error) {
	x, err := m.next()
	if err != nil {
		return &ssooidc.RegisterClientOutput{}, err
	}
	return x.RegisterClient, x.Error
}

func (m *mockSsoOidcApi) StartDeviceAuthorization(ctx context.Context, params *ssooidc.StartDeviceAuthorizationInput, optFns ...func(*ssooidc.Options)) (*ssooidc.StartDeviceAuthorizationOutput, error) {
	x, err := m.next()
	if err != nil {
		return &ssooidc.StartDeviceAuthorizationOutput{}, err
	}
	return x.StartDeviceAuthorization, x.Error
}

func (m *mockSsoOidcApi) CreateToken(ctx context.Context, params *ssooidc.CreateTokenInput, optFns ...func(*ssooidc.Options)) (*ssooidc.CreateTokenOutput, error) {
	x, err := m.next()
	if err != nil {
		return &ssooidc.CreateTokenOutput{}, err
	}
	return x.CreateToken, x.Error
}

func TestRegisterClientCached(t *testing.T) {
	as := testAWSSSO(t)
	as.ssooidc = &mockSsoOidcApi{} // any call would fail the test

	cached := storage.RegisterClientData{
		ClientId:              "cached-id",
		ClientSecret:          "cached-secret",
		ClientSecretExpiresAt: time.Now().Add(time.Hour).Unix(),
		ClientIdIssuedAt:      time.Now().Unix(),
	}
	assert.NoError(t, as.store.SaveRegisterClientData(storage.REGISTRATION_KEY, cached))

	assert.NoError(t, as.RegisterClient(false))
	assert.Equal(t, cached, as.ClientData)
}

func TestRegisterClientFresh(t *testing.T) {
	as := testAWSSSO(t)

	// expired cache entry == miss
	stale := storage.RegisterClientData{
		ClientId:              "stale-id",
		ClientSecret:          "stale-secret",
		ClientSecretExpiresAt: time.Now().Unix(),
	}
	assert.NoError(t, as.store.SaveRegisterClientData(storage.REGISTRATION_KEY, stale))

	expires := time.Now().Add(90 * 24 * time.Hour).Unix()
	issued := time.Now().Unix()
	as.ssooidc = &mockSsoOidcApi{
		Results: []mockSsoOidcApiResults{
			{
				RegisterClient: &ssooidc.RegisterClientOutput{
					ClientId:              aws.String("fresh-id"),
					ClientSecret:          aws.String("fresh-secret"),
					ClientSecretExpiresAt: expires,
					ClientIdIssuedAt:      issued,
				},
			},
		},
	}

	assert.NoError(t, as.RegisterClient(false))
	assert.Equal(t, "fresh-id", as.ClientData.ClientId)

	// and it was persisted for the next run
	saved := storage.RegisterClientData{}
	assert.NoError(t, as.store.GetRegisterClientData(storage.REGISTRATION_KEY, &saved))
	assert.Equal(t, as.ClientData, saved)
}

func TestRegisterClientError(t *testing.T) {
	as := testAWSSSO(t)
	as.ssooidc = &mockSsoOidcApi{
		Results: []mockSsoOidcApiResults{
			{Error: fmt.Errorf("api is down")},
		},
	}
	assert.Error(t, as.RegisterClient(false))
}

func TestAuthenticate(t *testing.T) {
	as := testAWSSSO(t)
	as.urlAction = url.PrintUrl
	as.retryInterval = time.Millisecond
	as.ClientData = storage.RegisterClientData{
		ClientId:     "client-id",
		ClientSecret: "client-secret",
	}

	as.ssooidc = &mockSsoOidcApi{
		Results: []mockSsoOidcApiResults{
			{
				StartDeviceAuthorization: &ssooidc.StartDeviceAuthorizationOutput{
					DeviceCode:              aws.String("device-code"),
					UserCode:                aws.String("user-code"),
					VerificationUri:         aws.String("https://device.sso.us-east-1.amazonaws.com"),
					VerificationUriComplete: aws.String("https://device.sso.us-east-1.amazonaws.com?user_code=user-code"),
					ExpiresIn:               600,
				},
			},
			// authorization pending twice, then granted
			{Error: &oidctypes.AuthorizationPendingException{}},
			{Error: &oidctypes.AuthorizationPendingException{}},
			{
				CreateToken: &ssooidc.CreateTokenOutput{
					AccessToken: aws.String("the-access-token"),
					ExpiresIn:   3600,
				},
			},
		},
	}

	assert.NoError(t, as.Authenticate())
	assert.Equal(t, "the-access-token", as.Token.AccessToken)
}

func TestAuthenticateFatal(t *testing.T) {
	as := testAWSSSO(t)
	as.urlAction = url.PrintUrl
	as.retryInterval = time.Millisecond
	as.ClientData = storage.RegisterClientData{
		ClientId:     "client-id",
		ClientSecret: "client-secret",
	}

	// anything which is not "authorization pending" or "slow down" kills us
	as.ssooidc = &mockSsoOidcApi{
		Results: []mockSsoOidcApiResults{
			{
				StartDeviceAuthorization: &ssooidc.StartDeviceAuthorizationOutput{
					DeviceCode: aws.String("device-code"),
				},
			},
			{Error: &oidctypes.ExpiredTokenException{}},
		},
	}

	assert.Error(t, as.Authenticate())
}
