// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tokens

import (
	"log/slog"
	"testing"
	"time"

	"github.com/go-faker/faker/v4"
)

func TestAccessToken(t *testing.T) {
	tks := NewTokens(slog.Default(), "test-jwt-secret", "dataforge", 900)
	callerID := faker.Username()

	sign := func(t *testing.T, tks *Tokens, opts AccessTokenOptions) string {
		t.Helper()
		token, err := tks.CreateAccessToken(opts)
		if err != nil {
			t.Fatalf("Failed to create token: %v", err)
		}
		signed, err := tks.SignToken(token)
		if err != nil {
			t.Fatalf("Failed to sign token: %v", err)
		}
		return signed
	}

	t.Run("Should round trip the caller", func(t *testing.T) {
		claims, err := tks.VerifyAccessToken(sign(t, tks, AccessTokenOptions{CallerID: callerID}))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if claims.CallerID != callerID {
			t.Fatalf("Actual: %s, Expected: %s", claims.CallerID, callerID)
		}
	})

	t.Run("Should reject expired tokens", func(t *testing.T) {
		token := sign(t, tks, AccessTokenOptions{CallerID: callerID, TTL: -time.Minute})
		if _, err := tks.VerifyAccessToken(token); err == nil {
			t.Fatal("Expected an error for an expired token")
		}
	})

	t.Run("Should reject tokens signed with another secret", func(t *testing.T) {
		other := NewTokens(slog.Default(), "another-secret", "dataforge", 900)
		if _, err := tks.VerifyAccessToken(sign(t, other, AccessTokenOptions{CallerID: callerID})); err == nil {
			t.Fatal("Expected an error for a foreign token")
		}
	})

	t.Run("Should reject tokens from another issuer", func(t *testing.T) {
		other := NewTokens(slog.Default(), "test-jwt-secret", "someone-else", 900)
		if _, err := tks.VerifyAccessToken(sign(t, other, AccessTokenOptions{CallerID: callerID})); err == nil {
			t.Fatal("Expected an error for a foreign issuer")
		}
	})
}
