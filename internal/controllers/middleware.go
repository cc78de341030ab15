// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tugascript/devlogs/dataforge/internal/exceptions"
	"github.com/tugascript/devlogs/dataforge/internal/providers/tokens"
	"github.com/tugascript/devlogs/dataforge/internal/services"
)

const (
	middlewareLocation string = "middleware"

	callerLocalsKey string = "caller"
)

// AccessClaimsMiddleware authenticates the table management endpoints with a
// bearer access token.
func (c *Controllers) AccessClaimsMiddleware(ctx *fiber.Ctx) error {
	requestID := getRequestID(ctx)
	logger := c.buildLogger(requestID, middlewareLocation, "AccessClaimsMiddleware")

	authHeader := ctx.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return serviceErrorResponse(logger, ctx, exceptions.NewUnauthorizedError())
	}

	claims, serviceErr := c.services.ProcessAuthHeader(ctx.UserContext(), services.ProcessAuthHeaderOptions{
		RequestID:  requestID,
		AuthHeader: authHeader,
	})
	if serviceErr != nil {
		return serviceErrorResponse(logger, ctx, serviceErr)
	}

	ctx.Locals(callerLocalsKey, claims)
	return ctx.Next()
}

// AccessKeyMiddleware authenticates the dynamic endpoints with the access key
// derived for the caller, the table and the request method.
func (c *Controllers) AccessKeyMiddleware(ctx *fiber.Ctx) error {
	requestID := getRequestID(ctx)
	logger := c.buildLogger(requestID, middlewareLocation, "AccessKeyMiddleware")

	if serviceErr := c.services.VerifyAccessKey(ctx.UserContext(), services.VerifyAccessKeyOptions{
		RequestID: requestID,
		CallerID:  ctx.Params("callerID"),
		TableID:   ctx.Params("tableID"),
		Method:    ctx.Method(),
		AccessKey: ctx.Get(services.AccessKeyHeader),
	}); serviceErr != nil {
		return serviceErrorResponse(logger, ctx, serviceErr)
	}

	return ctx.Next()
}

func getCallerClaims(ctx *fiber.Ctx) (tokens.AccessClaims, *exceptions.ServiceError) {
	claims, ok := ctx.Locals(callerLocalsKey).(tokens.AccessClaims)
	if !ok || claims.CallerID == "" {
		return tokens.AccessClaims{}, exceptions.NewUnauthorizedError()
	}

	return claims, nil
}
