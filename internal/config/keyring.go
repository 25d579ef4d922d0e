/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
)

// keyringService is the OS keychain service name; the provider name is the key.
const keyringService = "Eushlator"

// ErrNoAPIKey is returned when no key is stored for a provider.
var ErrNoAPIKey = errors.New("no api key stored")

type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements TokenStore using the OS keyring via github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

var (
	tokenStoreMu sync.RWMutex
	tokenStore   TokenStore = osKeyring{}
)

// SetTokenStore replaces the key store and returns a func restoring the previous one.
func SetTokenStore(ts TokenStore) (restore func()) {
	tokenStoreMu.Lock()
	prev := tokenStore
	tokenStore = ts
	tokenStoreMu.Unlock()
	return func() {
		tokenStoreMu.Lock()
		tokenStore = prev
		tokenStoreMu.Unlock()
	}
}

func store() TokenStore {
	tokenStoreMu.RLock()
	defer tokenStoreMu.RUnlock()
	return tokenStore
}

// APIKey returns the stored API key for provider.
func APIKey(provider string) (string, error) {
	p := normalizeProvider(provider)
	v, err := store().Get(keyringService, p)
	if errors.Is(err, keyring.ErrNotFound) || (err == nil && v == "") {
		return "", fmt.Errorf("%w for provider %q", ErrNoAPIKey, p)
	}
	if err != nil {
		return "", fmt.Errorf("keyring get %q: %w", p, err)
	}
	return v, nil
}

// SetAPIKey stores the API key for provider.
func SetAPIKey(provider, key string) error {
	p := normalizeProvider(provider)
	if p == "" {
		return errors.New("provider name is empty")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("api key is empty")
	}
	if err := store().Set(keyringService, p, strings.TrimSpace(key)); err != nil {
		return fmt.Errorf("keyring set %q: %w", p, err)
	}
	return nil
}

// DeleteAPIKey removes the stored key; deleting a missing key is not an error.
func DeleteAPIKey(provider string) error {
	p := normalizeProvider(provider)
	if err := store().Delete(keyringService, p); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete %q: %w", p, err)
	}
	return nil
}

func normalizeProvider(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	// batch variants share the key of their provider
	return strings.TrimSuffix(p, "-batch")
}
