// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tugascript/devlogs/dataforge/internal/utils"
)

type AccessClaims struct {
	CallerID string
}

type accessTokenClaims struct {
	jwt.RegisteredClaims
}

type AccessTokenOptions struct {
	CallerID string
	TTL      time.Duration
}

// CreateAccessToken builds an HS256 token whose subject is the caller. A zero
// TTL uses the configured access TTL.
func (t *Tokens) CreateAccessToken(opts AccessTokenOptions) (*jwt.Token, error) {
	if opts.CallerID == "" {
		return nil, errors.New("caller id is required")
	}

	ttl := opts.TTL
	if ttl == 0 {
		ttl = utils.ToSecondsDuration(t.accessTTL)
	}

	now := time.Now()
	iat := jwt.NewNumericDate(now)
	return jwt.NewWithClaims(jwt.SigningMethodHS256, accessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   opts.CallerID,
			IssuedAt:  iat,
			NotBefore: iat,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}), nil
}

func (t *Tokens) SignToken(token *jwt.Token) (string, error) {
	return token.SignedString(t.secret)
}

func (t *Tokens) VerifyAccessToken(token string) (AccessClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	claims := new(accessTokenClaims)
	if _, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...); err != nil {
		t.logger.Debug("Failed to verify access token", "error", err)
		return AccessClaims{}, err
	}
	if claims.Subject == "" {
		return AccessClaims{}, errors.New("token subject is empty")
	}

	return AccessClaims{CallerID: claims.Subject}, nil
}

func (t *Tokens) GetAccessTTL() int64 {
	return t.accessTTL
}
