// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tugascript/devlogs/dataforge/internal/controllers/bodies"
	"github.com/tugascript/devlogs/dataforge/internal/controllers/params"
	"github.com/tugascript/devlogs/dataforge/internal/engine"
	"github.com/tugascript/devlogs/dataforge/internal/services"
	"github.com/tugascript/devlogs/dataforge/internal/services/dtos"
	"github.com/tugascript/devlogs/dataforge/internal/utils"
)

const tablesLocation string = "tables"

func mapFieldBody(f *bodies.FieldBody) engine.Field {
	return engine.Field{
		Key:        f.FieldKey,
		Name:       f.FieldName,
		DataType:   f.DataType,
		Required:   f.IsRequired,
		PrimaryKey: f.IsPrimaryKey,
	}
}

func (c *Controllers) CreateTable(ctx *fiber.Ctx) error {
	requestID := getRequestID(ctx)
	logger := c.buildLogger(requestID, tablesLocation, "CreateTable")
	logRequest(logger, ctx)

	claims, serviceErr := getCallerClaims(ctx)
	if serviceErr != nil {
		return serviceErrorResponse(logger, ctx, serviceErr)
	}

	body := new(bodies.TableBody)
	if err := ctx.BodyParser(body); err != nil {
		return parseRequestErrorResponse(logger, ctx, err)
	}
	if err := c.validate.StructCtx(ctx.UserContext(), body); err != nil {
		return validateBodyErrorResponse(logger, ctx, err)
	}

	tableDTO, serviceErr := c.services.CreateTable(ctx.UserContext(), services.CreateTableOptions{
		RequestID: requestID,
		OwnerID:   claims.CallerID,
		Name:      body.Name,
		Fields:    utils.MapSlice(body.Fields, mapFieldBody),
	})
	if serviceErr != nil {
		return serviceErrorResponse(logger, ctx, serviceErr)
	}

	logResponse(logger, ctx, fiber.StatusCreated)
	return ctx.Status(fiber.StatusCreated).JSON(&tableDTO)
}

func (c *Controllers) ListTables(ctx *fiber.Ctx) error {
	requestID := getRequestID(ctx)
	logger := c.buildLogger(requestID, tablesLocation, "ListTables")
	logRequest(logger, ctx)

	claims, serviceErr := getCallerClaims(ctx)
	if serviceErr != nil {
		return serviceErrorResponse(logger, ctx, serviceErr)
	}

	tableDTOs, serviceErr := c.services.ListTables(ctx.UserContext(), services.ListTablesOptions{
		RequestID: requestID,
		OwnerID:   claims.CallerID,
	})
	if serviceErr != nil {
		return serviceErrorResponse(logger, ctx, serviceErr)
	}

	logResponse(logger, ctx, fiber.StatusOK)
	return ctx.Status(fiber.StatusOK).JSON(tableDTOs)
}

func (c *Controllers) GetTable(ctx *fiber.Ctx) error {
	requestID := getRequestID(ctx)
	logger := c.buildLogger(requestID, tablesLocation, "GetTable")
	logRequest(logger, ctx)

	claims, serviceErr := getCallerClaims(ctx)
	if serviceErr != nil {
		return serviceErrorResponse(logger, ctx, serviceErr)
	}

	urlParams := params.TableURLParams{TableID: ctx.Params("tableID")}
	if err := c.validate.StructCtx(ctx.UserContext(), &urlParams); err != nil {
		return validateURLParamsErrorResponse(logger, ctx, err)
	}

	tableDTO, serviceErr := c.services.GetTable(ctx.UserContext(), services.GetTableOptions{
		RequestID: requestID,
		OwnerID:   claims.CallerID,
		TableID:   urlParams.TableID,
	})
	if serviceErr != nil {
		return serviceErrorResponse(logger, ctx, serviceErr)
	}

	logResponse(logger, ctx, fiber.StatusOK)
	return ctx.Status(fiber.StatusOK).JSON(&tableDTO)
}

func (c *Controllers) UpdateTable(ctx *fiber.Ctx) error {
	requestID := getRequestID(ctx)
	logger := c.buildLogger(requestID, tablesLocation, "UpdateTable")
	logRequest(logger, ctx)

	claims, serviceErr := getCallerClaims(ctx)
	if serviceErr != nil {
		return serviceErrorResponse(logger, ctx, serviceErr)
	}

	urlParams := params.TableURLParams{TableID: ctx.Params("tableID")}
	if err := c.validate.StructCtx(ctx.UserContext(), &urlParams); err != nil {
		return validateURLParamsErrorResponse(logger, ctx, err)
	}

	body := new(bodies.TableBody)
	if err := ctx.BodyParser(body); err != nil {
		return parseRequestErrorResponse(logger, ctx, err)
	}
	if err := c.validate.StructCtx(ctx.UserContext(), body); err != nil {
		return validateBodyErrorResponse(logger, ctx, err)
	}

	tableDTO, serviceErr := c.services.UpdateTable(ctx.UserContext(), services.UpdateTableOptions{
		RequestID: requestID,
		OwnerID:   claims.CallerID,
		TableID:   urlParams.TableID,
		Name:      body.Name,
		Fields:    utils.MapSlice(body.Fields, mapFieldBody),
	})
	if serviceErr != nil {
		return serviceErrorResponse(logger, ctx, serviceErr)
	}

	logResponse(logger, ctx, fiber.StatusOK)
	return ctx.Status(fiber.StatusOK).JSON(&tableDTO)
}

func (c *Controllers) DeleteTable(ctx *fiber.Ctx) error {
	requestID := getRequestID(ctx)
	logger := c.buildLogger(requestID, tablesLocation, "DeleteTable")
	logRequest(logger, ctx)

	claims, serviceErr := getCallerClaims(ctx)
	if serviceErr != nil {
		return serviceErrorResponse(logger, ctx, serviceErr)
	}

	urlParams := params.TableURLParams{TableID: ctx.Params("tableID")}
	if err := c.validate.StructCtx(ctx.UserContext(), &urlParams); err != nil {
		return validateURLParamsErrorResponse(logger, ctx, err)
	}

	if serviceErr := c.services.DeleteTable(ctx.UserContext(), services.DeleteTableOptions{
		RequestID: requestID,
		OwnerID:   claims.CallerID,
		TableID:   urlParams.TableID,
	}); serviceErr != nil {
		return serviceErrorResponse(logger, ctx, serviceErr)
	}

	logResponse(logger, ctx, fiber.StatusOK)
	return ctx.Status(fiber.StatusOK).JSON(dtos.NewResponseDTO[any](nil, services.MessageTableDeleted))
}

func (c *Controllers) GetTableAccessKeys(ctx *fiber.Ctx) error {
	requestID := getRequestID(ctx)
	logger := c.buildLogger(requestID, tablesLocation, "GetTableAccessKeys")
	logRequest(logger, ctx)

	claims, serviceErr := getCallerClaims(ctx)
	if serviceErr != nil {
		return serviceErrorResponse(logger, ctx, serviceErr)
	}

	urlParams := params.TableURLParams{TableID: ctx.Params("tableID")}
	if err := c.validate.StructCtx(ctx.UserContext(), &urlParams); err != nil {
		return validateURLParamsErrorResponse(logger, ctx, err)
	}

	keysDTO, serviceErr := c.services.GetTableAccessKeys(ctx.UserContext(), services.GetTableAccessKeysOptions{
		RequestID: requestID,
		OwnerID:   claims.CallerID,
		TableID:   urlParams.TableID,
	})
	if serviceErr != nil {
		return serviceErrorResponse(logger, ctx, serviceErr)
	}

	logResponse(logger, ctx, fiber.StatusOK)
	return ctx.Status(fiber.StatusOK).JSON(&keysDTO)
}
