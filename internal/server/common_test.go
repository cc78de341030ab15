// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/gofiber/fiber/v2"

	"github.com/tugascript/devlogs/dataforge/internal/config"
	"github.com/tugascript/devlogs/dataforge/internal/providers/accesskeys"
	"github.com/tugascript/devlogs/dataforge/internal/providers/cache"
	"github.com/tugascript/devlogs/dataforge/internal/providers/database/bolt"
	"github.com/tugascript/devlogs/dataforge/internal/providers/tokens"
	"github.com/tugascript/devlogs/dataforge/internal/services"
	"github.com/tugascript/devlogs/dataforge/internal/services/dtos"
)

const testJWTSecret string = "test-jwt-secret-with-enough-entropy"

type testEnv struct {
	server     *FiberServer
	tokens     *tokens.Tokens
	accessKeys *accesskeys.AccessKeys
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := DefaultLogger()
	ctx := context.Background()

	store, err := bolt.Open(bolt.Options{
		Path:      filepath.Join(t.TempDir(), "dataforge.db"),
		IsTesting: true,
	})
	if err != nil {
		t.Fatal("Failed to open bolt store", err)
	}

	accessKeys, err := accesskeys.NewAccessKeys(logger, accesskeys.ModeLegacy, "")
	if err != nil {
		t.Fatal("Failed to build access keys", err)
	}

	jwts := tokens.NewTokens(logger, testJWTSecret, "", 900)
	srv := Build(ctx, logger, Options{
		Store:            store,
		Storage:          cache.NewMemoryStorage(),
		TableCacheTTLSec: 60,
		AccessKeys:       accessKeys,
		Tokens:           jwts,
		StrictQueryJSON:  true,
		RateLimiter:      config.NewRateLimiterConfig(0, 60),
	})
	srv.RegisterFiberRoutes()
	t.Cleanup(func() {
		if err := srv.Close(); err != nil {
			t.Log("Failed to close server", err)
		}
	})

	return &testEnv{server: srv, tokens: jwts, accessKeys: accessKeys}
}

func (e *testEnv) accessToken(t *testing.T, callerID string) string {
	t.Helper()

	token, err := e.tokens.CreateAccessToken(tokens.AccessTokenOptions{CallerID: callerID})
	if err != nil {
		t.Fatal("Failed to create access token", err)
	}

	signed, err := e.tokens.SignToken(token)
	if err != nil {
		t.Fatal("Failed to sign access token", err)
	}
	return signed
}

func (e *testEnv) accessKey(tableID, callerID, method string) string {
	return e.accessKeys.Derive(tableID, callerID, method)
}

func fakeCallerID(t *testing.T) string {
	t.Helper()

	var caller struct {
		Username string `faker:"username"`
	}
	if err := faker.FakeData(&caller); err != nil {
		t.Fatal("Failed to generate fake data", err)
	}
	return fmt.Sprintf("%s-%d", caller.Username, time.Now().UnixNano())
}

func CreateTestJSONRequestBody(t *testing.T, reqBody any) io.Reader {
	if reqBody == nil {
		return nil
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		t.Fatal("Failed to marshal JSON", err)
	}

	return bytes.NewReader(jsonBody)
}

type testRequest struct {
	method      string
	path        string
	accessToken string
	accessKey   string
	body        any
}

func PerformTestRequest(t *testing.T, app *fiber.App, req testRequest) *http.Response {
	t.Helper()

	httpReq := httptest.NewRequest(req.method, req.path, CreateTestJSONRequestBody(t, req.body))
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	if req.accessToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.accessToken)
	}
	if req.accessKey != "" {
		httpReq.Header.Set(services.AccessKeyHeader, req.accessKey)
	}

	resp, err := app.Test(httpReq, 2000)
	if err != nil {
		t.Fatal("Failed to perform request", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})

	return resp
}

func AssertTestStatusCode(t *testing.T, resp *http.Response, expectedStatusCode int) {
	t.Helper()

	if resp.StatusCode != expectedStatusCode {
		body, _ := io.ReadAll(resp.Body)
		t.Logf("Status Code: %d, Body: %s", resp.StatusCode, body)
		t.Fatal("Failed to assert status code")
	}
}

func AssertTestResponseBody[V any](t *testing.T, resp *http.Response, expectedBody V) V {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal("Failed to read response body", err)
	}

	if err := json.Unmarshal(body, &expectedBody); err != nil {
		t.Logf("Body: %s", body)
		t.Fatal("Failed to decode response body")
	}
	return expectedBody
}

func AssertEqual[V comparable](t *testing.T, actual, expected V) {
	t.Helper()

	if expected != actual {
		t.Fatalf("Actual: %v, Expected: %v", actual, expected)
	}
}

func AssertNotEmpty[V comparable](t *testing.T, actual V) {
	t.Helper()

	var empty V
	if actual == empty {
		t.Fatal("Value is empty")
	}
}

type TestRequestCase struct {
	Name      string
	ReqFn     func(t *testing.T) testRequest
	ExpStatus int
	AssertFn  func(t *testing.T, resp *http.Response)
}

func PerformTestRequestCases(t *testing.T, app *fiber.App, tcs []TestRequestCase) {
	for _, tc := range tcs {
		t.Run(tc.Name, func(t *testing.T) {
			resp := PerformTestRequest(t, app, tc.ReqFn(t))
			AssertTestStatusCode(t, resp, tc.ExpStatus)
			if tc.AssertFn != nil {
				tc.AssertFn(t, resp)
			}
		})
	}
}

type testField struct {
	FieldKey     string `json:"fieldKey"`
	FieldName    string `json:"fieldName"`
	DataType     string `json:"dataType"`
	IsRequired   bool   `json:"isRequired"`
	IsPrimaryKey bool   `json:"isPrimaryKey"`
}

type testTableBody struct {
	Name   string      `json:"name"`
	Fields []testField `json:"fields"`
}

func usersTableBody() testTableBody {
	return testTableBody{
		Name: "users",
		Fields: []testField{
			{FieldKey: "email", FieldName: "Email", DataType: "string", IsRequired: true, IsPrimaryKey: true},
			{FieldKey: "name", FieldName: "Name", DataType: "string", IsRequired: true},
			{FieldKey: "age", FieldName: "Age", DataType: "number"},
			{FieldKey: "active", FieldName: "Active", DataType: "boolean"},
			{FieldKey: "joined", FieldName: "Joined", DataType: "date"},
		},
	}
}

func (e *testEnv) createTable(t *testing.T, callerID string, body testTableBody) dtos.TableDTO {
	t.Helper()

	resp := PerformTestRequest(t, e.server.App, testRequest{
		method:      fiber.MethodPost,
		path:        "/v1/tables",
		accessToken: e.accessToken(t, callerID),
		body:        body,
	})
	AssertTestStatusCode(t, resp, fiber.StatusCreated)
	return AssertTestResponseBody(t, resp, dtos.TableDTO{})
}

type recordResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
	Message string         `json:"message"`
}

type listResponse struct {
	Success bool             `json:"success"`
	Data    []map[string]any `json:"data"`
	Message string           `json:"message"`
	Page    int              `json:"page"`
	Total   int64            `json:"total"`
}

func recordsPath(callerID, tableID string) string {
	return fmt.Sprintf("/api/%s/%s", callerID, tableID)
}

func recordPath(callerID, tableID, recordID string) string {
	return fmt.Sprintf("/api/%s/%s/%s", callerID, tableID, recordID)
}

func (e *testEnv) createRecord(t *testing.T, callerID, tableID string, body map[string]any) map[string]any {
	t.Helper()

	resp := PerformTestRequest(t, e.server.App, testRequest{
		method:    fiber.MethodPost,
		path:      recordsPath(callerID, tableID),
		accessKey: e.accessKey(tableID, callerID, fiber.MethodPost),
		body:      body,
	})
	AssertTestStatusCode(t, resp, fiber.StatusCreated)
	return AssertTestResponseBody(t, resp, recordResponse{}).Data
}
