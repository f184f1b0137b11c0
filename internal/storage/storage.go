package storage

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
	"time"
)

// REGISTRATION_KEY is the name of the record holding our OIDC client
// registration in the secure store.  There is only ever one.
const REGISTRATION_KEY = "sso-config-generator"

// EXPIRE_MARGIN is how close to the clientSecret expiration we are
// willing to reuse a cached client registration
const EXPIRE_MARGIN = 5 * time.Minute

// RegisterClientData is the long lived OIDC client registration.  The
// JSON field names are the wire format of the ssooidc RegisterClient
// response and must not change or we invalidate everyone's cache.
type RegisterClientData struct {
	ClientId              string `json:"clientId"`
	ClientSecret          string `json:"clientSecret"`
	ClientSecretExpiresAt int64  `json:"clientSecretExpiresAt"`
	ClientIdIssuedAt      int64  `json:"clientIdIssuedAt"`
}

// Expired returns true if the client secret has expired or will within
// our margin
func (r *RegisterClientData) Expired() bool {
	return r.ClientSecretExpiresAt <= time.Now().Add(EXPIRE_MARGIN).Unix()
}

// Valid returns true if the registration has all its required fields and
// is not (about to be) expired.  A registration that fails this check is
// a cache miss, never an error.
func (r *RegisterClientData) Valid() bool {
	if r.ClientId == "" || r.ClientSecret == "" || r.ClientSecretExpiresAt == 0 {
		log.Debug("cached client registration is missing required fields")
		return false
	}
	return !r.Expired()
}
