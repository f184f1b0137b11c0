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
	"encoding/json"
	"fmt"
	"os"
	"path"

	"github.com/99designs/keyring"
	"golang.org/x/term"
)

const (
	KEYRING_ID            = "aws-sso-oidc"
	KEYRING_NAME          = "awsssooidc"
	ENV_SSO_FILE_PASSWORD = "AWS_SSO_FILE_PASSWORD" // #nosec
)

// KeyringAPI is the subset of the keyring API we use so we can do unit testing
type KeyringAPI interface {
	// Returns an Item matching the key or ErrKeyNotFound
	Get(key string) (keyring.Item, error)
	// Stores an Item on the keyring
	Set(item keyring.Item) error
	// Removes the item with matching key
	Remove(key string) error
}

// Implements SecureStorage
type KeyringStore struct {
	keyring KeyringAPI
	config  keyring.Config
}

var NewPassword string = ""

type getPassword func(string) (string, error)

var getPasswordFunc getPassword = fileKeyringPassword

// NewKeyringConfig creates the config for the keyring backend named by
// `name` (empty == first available) with any file based backend living
// under configDir/secure
func NewKeyringConfig(name, configDir string) (*keyring.Config, error) {
	securePath := path.Join(configDir, "secure")

	c := keyring.Config{
		ServiceName: KEYRING_ID, // generic backend provider
		// macOS KeyChain
		KeychainTrustApplication:       true,  // stop asking user for passwords
		KeychainSynchronizable:         false, // no iCloud sync
		KeychainAccessibleWhenUnlocked: false, // no reads while device locked
		// Other systems below this line
		FileDir:                 securePath,
		FilePasswordFunc:        fileKeyringPassword,
		LibSecretCollectionName: KEYRING_NAME,
		KWalletAppID:            KEYRING_ID,
		KWalletFolder:           KEYRING_ID,
		WinCredPrefix:           KEYRING_ID,
	}

	if name != "" {
		c.AllowedBackends = []keyring.BackendType{keyring.BackendType(name)}

		if name == "file" {
			if _, err := os.Stat(securePath); os.IsNotExist(err) {
				// new secure store, so we should prompt user twice for password
				// if ENV var is not set
				if password := os.Getenv(ENV_SSO_FILE_PASSWORD); password == "" {
					pass1, err := getPasswordFunc("Select password")
					if err != nil {
						return &c, fmt.Errorf("password error: %s", err.Error())
					}
					pass2, err := getPasswordFunc("Verify password")
					if err != nil {
						return &c, fmt.Errorf("password error: %s", err.Error())
					}
					if pass1 != pass2 {
						return &c, fmt.Errorf("password missmatch")
					}
					NewPassword = pass1
				}
			}
		}
	}
	return &c, nil
}

func fileKeyringPassword(prompt string) (string, error) {
	if password := os.Getenv(ENV_SSO_FILE_PASSWORD); password != "" {
		return password, nil
	}
	if NewPassword != "" {
		return NewPassword, nil
	}

	fmt.Fprintf(os.Stderr, "%s: ", prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd())) // #nosec
	if err != nil {
		return "", err
	}
	s := string(b)
	if s == "" {
		fmt.Println()
		return "", fmt.Errorf("aborting with empty password")
	}
	fmt.Println()
	return s, nil
}

// OpenKeyring opens the secure store described by the given config
func OpenKeyring(cfg *keyring.Config) (*KeyringStore, error) {
	ring, err := keyring.Open(*cfg)
	if err != nil {
		return nil, err
	}
	kr := KeyringStore{
		keyring: ring,
		config:  *cfg,
	}
	return &kr, nil
}

// SaveRegisterClientData saves the RegisterClientData in the keyring.
// The record value is the same JSON object AWS returned to us.
func (kr *KeyringStore) SaveRegisterClientData(key string, client RegisterClientData) error {
	jbytes, err := json.Marshal(client)
	if err != nil {
		return err
	}
	return kr.keyring.Set(keyring.Item{
		Key:  key,
		Data: jbytes,
	})
}

// GetRegisterClientData retrieves the RegisterClientData from the keyring.
// Missing or unparsable records return an error which callers treat as a
// cache miss.
func (kr *KeyringStore) GetRegisterClientData(key string, client *RegisterClientData) error {
	item, err := kr.keyring.Get(key)
	if err != nil {
		return err
	}
	return json.Unmarshal(item.Data, client)
}

// DeleteRegisterClientData removes the RegisterClientData from the keyring
func (kr *KeyringStore) DeleteRegisterClientData(key string) error {
	return kr.keyring.Remove(key)
}
