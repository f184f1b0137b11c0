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
	"path/filepath"
)

// JsonStore implements SecureStorage insecurely
type JsonStore struct {
	filename       string
	RegisterClient map[string]RegisterClientData `json:"RegisterClient,omitempty"`
}

// OpenJsonStore opens our insecure JSON storage backend
func OpenJsonStore(fileName string) (*JsonStore, error) {
	cache := JsonStore{
		filename:       fileName,
		RegisterClient: map[string]RegisterClientData{},
	}

	cacheBytes, err := os.ReadFile(fileName)
	if err != nil {
		log.Info("Creating new json store", "file", fileName)
	} else if len(cacheBytes) > 0 {
		if err = json.Unmarshal(cacheBytes, &cache); err != nil {
			// corrupt store == empty store
			log.Warn("Unable to parse json store; ignoring contents", "file", fileName, "error", err.Error())
			cache.RegisterClient = map[string]RegisterClientData{}
		}
	}

	return &cache, nil
}

// save writes the JSON store file, creating the directory if necessary
func (jc *JsonStore) save() error {
	log.Debug("Saving JSON store")
	jbytes, err := json.MarshalIndent(jc, "", "  ")
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(jc.filename), 0700); err != nil {
		return err
	}

	return os.WriteFile(jc.filename, jbytes, 0600)
}

// SaveRegisterClientData saves the RegisterClientData in our JSON store
func (jc *JsonStore) SaveRegisterClientData(key string, client RegisterClientData) error {
	jc.RegisterClient[key] = client
	return jc.save()
}

// GetRegisterClientData retrieves the RegisterClientData from our JSON store
func (jc *JsonStore) GetRegisterClientData(key string, client *RegisterClientData) error {
	var ok bool
	*client, ok = jc.RegisterClient[key]
	if !ok {
		return fmt.Errorf("No RegisterClientData for %s", key)
	}
	return nil
}

// DeleteRegisterClientData deletes the RegisterClientData from the JSON store
func (jc *JsonStore) DeleteRegisterClientData(key string) error {
	delete(jc.RegisterClient, key)
	return jc.save()
}
