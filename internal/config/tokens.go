// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

type TokensConfig struct {
	secret       string
	issuer       string
	accessTTLSec int64
}

func NewTokensConfig(secret, issuer string, accessTTLSec int64) TokensConfig {
	return TokensConfig{
		secret:       secret,
		issuer:       issuer,
		accessTTLSec: accessTTLSec,
	}
}

func (t *TokensConfig) Secret() string {
	return t.secret
}

func (t *TokensConfig) Issuer() string {
	return t.issuer
}

func (t *TokensConfig) AccessTTLSec() int64 {
	return t.accessTTLSec
}
