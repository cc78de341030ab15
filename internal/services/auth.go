// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package services

import (
	"context"

	"github.com/tugascript/devlogs/dataforge/internal/exceptions"
	"github.com/tugascript/devlogs/dataforge/internal/providers/accesskeys"
	"github.com/tugascript/devlogs/dataforge/internal/providers/tokens"
	"github.com/tugascript/devlogs/dataforge/internal/services/dtos"
)

const (
	authLocation string = "auth"

	AccessKeyHeader string = "x-api-key"
)

type ProcessAuthHeaderOptions struct {
	RequestID  string
	AuthHeader string
}

// ProcessAuthHeader reads the caller identity from a bearer access token.
func (s *Services) ProcessAuthHeader(
	ctx context.Context,
	opts ProcessAuthHeaderOptions,
) (tokens.AccessClaims, *exceptions.ServiceError) {
	logger := s.buildLogger(opts.RequestID, authLocation, "ProcessAuthHeader")
	logger.DebugContext(ctx, "Processing auth header...")

	token, serviceErr := extractAuthHeaderToken(opts.AuthHeader)
	if serviceErr != nil {
		logger.InfoContext(ctx, "Missing or malformed auth header")
		return tokens.AccessClaims{}, serviceErr
	}

	claims, err := s.jwt.VerifyAccessToken(token)
	if err != nil {
		logger.InfoContext(ctx, "Failed to verify access token", "error", err)
		return tokens.AccessClaims{}, exceptions.NewUnauthorizedError()
	}

	return claims, nil
}

type VerifyAccessKeyOptions struct {
	RequestID string
	CallerID  string
	TableID   string
	Method    string
	AccessKey string
}

// VerifyAccessKey authenticates a dynamic endpoint request. It runs before
// any store access.
func (s *Services) VerifyAccessKey(
	ctx context.Context,
	opts VerifyAccessKeyOptions,
) *exceptions.ServiceError {
	logger := s.buildLogger(opts.RequestID, authLocation, "VerifyAccessKey").With(
		"callerId", opts.CallerID,
		"tableId", opts.TableID,
		"method", opts.Method,
	)
	logger.DebugContext(ctx, "Verifying access key...")

	if !s.accessKeys.Verify(opts.TableID, opts.CallerID, opts.Method, opts.AccessKey) {
		logger.InfoContext(ctx, "Invalid access key")
		return exceptions.NewInvalidAPIKeyError()
	}

	return nil
}

type GetTableAccessKeysOptions struct {
	RequestID string
	OwnerID   string
	TableID   string
}

// GetTableAccessKeys lists the keys the owner sends to the dynamic endpoints
// of a table, one per HTTP method.
func (s *Services) GetTableAccessKeys(
	ctx context.Context,
	opts GetTableAccessKeysOptions,
) (dtos.AccessKeysDTO, *exceptions.ServiceError) {
	logger := s.buildLogger(opts.RequestID, authLocation, "GetTableAccessKeys").With(
		"ownerId", opts.OwnerID,
		"tableId", opts.TableID,
	)
	logger.InfoContext(ctx, "Getting table access keys...")

	table, serviceErr := s.resolveTable(ctx, logger, GetTableOptions(opts))
	if serviceErr != nil {
		return dtos.AccessKeysDTO{}, serviceErr
	}

	tableID := table.ID.String()
	keys := make(map[string]string, len(accesskeys.Methods))
	for _, method := range accesskeys.Methods {
		keys[method] = s.accessKeys.Derive(tableID, opts.OwnerID, method)
	}

	logger.InfoContext(ctx, "Table access keys derived")
	return dtos.AccessKeysDTO{
		TableID:  tableID,
		CallerID: opts.OwnerID,
		Mode:     s.accessKeys.Mode(),
		Header:   AccessKeyHeader,
		Keys:     keys,
	}, nil
}
