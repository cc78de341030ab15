// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

type AccessKeysConfig struct {
	mode   string
	secret string
}

func NewAccessKeysConfig(mode, secret string) AccessKeysConfig {
	return AccessKeysConfig{
		mode:   mode,
		secret: secret,
	}
}

func (a *AccessKeysConfig) Mode() string {
	return a.mode
}

func (a *AccessKeysConfig) Secret() string {
	return a.secret
}
