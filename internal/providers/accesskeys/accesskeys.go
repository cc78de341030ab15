// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package accesskeys derives and verifies the per table, per caller and per
// method keys that gate the dynamic record endpoints.
package accesskeys

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/crypto/hkdf"

	"github.com/tugascript/devlogs/dataforge/internal/utils"
)

type Mode = string

const (
	ModeLegacy Mode = "legacy"
	ModeHMAC   Mode = "hmac"
)

const (
	legacyMethodWidth int    = 6
	legacyMethodPad   string = "a"
	legacyMarker      string = "T"
	legacyRounds      int    = 4

	hmacInfo      string = "dataforge access key"
	hmacKeyLength int    = 32
)

// Methods lists the HTTP methods a key can be derived for.
var Methods = [...]string{"GET", "POST", "PUT", "PATCH", "DELETE"}

type AccessKeys struct {
	logger *slog.Logger
	mode   Mode
	key    []byte
}

func NewAccessKeys(logger *slog.Logger, mode Mode, secret string) (*AccessKeys, error) {
	ak := &AccessKeys{
		logger: utils.ProviderLogger(logger, "access_keys"),
		mode:   mode,
	}

	switch mode {
	case ModeLegacy:
		return ak, nil
	case ModeHMAC:
		if secret == "" {
			return nil, errors.New("access key secret is required in hmac mode")
		}

		key, err := deriveHMACKey(secret)
		if err != nil {
			return nil, err
		}
		ak.key = key
		return ak, nil
	default:
		return nil, fmt.Errorf("unknown access key mode: %s", mode)
	}
}

func deriveHMACKey(secret string) ([]byte, error) {
	key := make([]byte, hmacKeyLength)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(hmacInfo)), key); err != nil {
		return nil, err
	}
	return key, nil
}

func (ak *AccessKeys) Mode() Mode {
	return ak.mode
}

// Derive returns the key for a table, a caller and an HTTP method.
func (ak *AccessKeys) Derive(tableID, callerID, method string) string {
	method = strings.ToUpper(method)
	if ak.mode == ModeHMAC {
		return deriveHMAC(ak.key, tableID, callerID, method)
	}
	return deriveLegacy(tableID, callerID, method)
}

// Verify re-derives the key and compares it with the supplied one in
// constant time.
func (ak *AccessKeys) Verify(tableID, callerID, method, supplied string) bool {
	if supplied == "" {
		return false
	}

	expected := ak.Derive(tableID, callerID, method)
	ok := subtle.ConstantTimeCompare([]byte(expected), []byte(supplied)) == 1
	if !ok {
		ak.logger.Debug("Access key mismatch", "tableId", tableID, "method", method)
	}
	return ok
}

// deriveLegacy pads the method, appends the table and caller ids, then
// repeatedly inserts a marker at the midpoint and base64 encodes the result.
func deriveLegacy(tableID, callerID, method string) string {
	key := method
	if len(key) < legacyMethodWidth {
		key += strings.Repeat(legacyMethodPad, legacyMethodWidth-len(key))
	}
	key += tableID + callerID

	for i := 0; i < legacyRounds; i++ {
		mid := len(key) / 2
		key = base64.StdEncoding.EncodeToString([]byte(key[:mid] + legacyMarker + key[mid:]))
	}
	return key
}

func deriveHMAC(key []byte, tableID, callerID, method string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(method + "|" + tableID + "|" + callerID))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
