// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	port              int64
	env               string
	maxProcs          int64
	redisURL          string
	serviceName       string
	strictQueryJSON   bool
	tableCacheTTLSec  int64
	loggerConfig      LoggerConfig
	tokensConfig      TokensConfig
	accessKeysConfig  AccessKeysConfig
	storeConfig       StoreConfig
	rateLimiterConfig RateLimiterConfig
}

func (c *Config) Port() int64 {
	return c.port
}

func (c *Config) Env() string {
	return c.env
}

func (c *Config) MaxProcs() int64 {
	return c.maxProcs
}

func (c *Config) RedisURL() string {
	return c.redisURL
}

func (c *Config) ServiceName() string {
	return c.serviceName
}

func (c *Config) StrictQueryJSON() bool {
	return c.strictQueryJSON
}

func (c *Config) TableCacheTTLSec() int64 {
	return c.tableCacheTTLSec
}

func (c *Config) LoggerConfig() LoggerConfig {
	return c.loggerConfig
}

func (c *Config) TokensConfig() TokensConfig {
	return c.tokensConfig
}

func (c *Config) AccessKeysConfig() AccessKeysConfig {
	return c.accessKeysConfig
}

func (c *Config) StoreConfig() StoreConfig {
	return c.storeConfig
}

func (c *Config) RateLimiterConfig() RateLimiterConfig {
	return c.rateLimiterConfig
}

var variables = [12]string{
	"PORT",
	"ENV",
	"DEBUG",
	"SERVICE_NAME",
	"MAX_PROCS",
	"STORE_DRIVER",
	"ACCESS_KEY_MODE",
	"JWT_SECRET",
	"JWT_ACCESS_TTL_SEC",
	"RATE_LIMITER_MAX",
	"RATE_LIMITER_EXP_SEC",
	"TABLE_CACHE_TTL_SEC",
}

var optionalVariables = [11]string{
	"REDIS_URL",
	"DATABASE_URL",
	"BOLT_PATH",
	"DYNAMODB_TABLE",
	"DYNAMODB_REGION",
	"DYNAMODB_ENDPOINT",
	"AWS_ACCESS_KEY_ID",
	"AWS_SECRET_ACCESS_KEY",
	"ACCESS_KEY_SECRET",
	"STRICT_QUERY_JSON",
	"JWT_ISSUER",
}

var numerics = [6]string{
	"PORT",
	"MAX_PROCS",
	"JWT_ACCESS_TTL_SEC",
	"RATE_LIMITER_MAX",
	"RATE_LIMITER_EXP_SEC",
	"TABLE_CACHE_TTL_SEC",
}

// driverVariables lists the optional variables each store driver cannot run
// without.
var driverVariables = map[string][]string{
	StoreDriverPostgres: {"DATABASE_URL"},
	StoreDriverBolt:     {"BOLT_PATH"},
	StoreDriverDynamoDB: {"DYNAMODB_TABLE", "DYNAMODB_REGION"},
}

func isTrue(value string) bool {
	return strings.ToLower(value) == "true"
}

func NewConfig(logger *slog.Logger, envPath string) Config {
	err := godotenv.Load(envPath)
	if err != nil {
		logger.Error("Error loading .env file")
	}

	variablesMap := make(map[string]string)
	for _, variable := range variables {
		value := os.Getenv(variable)
		if value == "" {
			logger.Error(variable + " is not set")
			panic(variable + " is not set")
		}
		variablesMap[variable] = value
	}

	for _, variable := range optionalVariables {
		value := os.Getenv(variable)
		variablesMap[variable] = value
	}

	intMap := make(map[string]int64)
	for _, numeric := range numerics {
		value, err := strconv.ParseInt(variablesMap[numeric], 10, 0)
		if err != nil {
			logger.Error(numeric + " is not an integer")
			panic(numeric + " is not an integer")
		}
		intMap[numeric] = value
	}

	driver := strings.ToLower(variablesMap["STORE_DRIVER"])
	required, ok := driverVariables[driver]
	if !ok {
		logger.Error("STORE_DRIVER is not supported", "driver", driver)
		panic(fmt.Sprintf("STORE_DRIVER %q is not supported", driver))
	}
	for _, variable := range required {
		if variablesMap[variable] == "" {
			logger.Error(variable+" is not set", "driver", driver)
			panic(variable + " is not set")
		}
	}

	return Config{
		port:             intMap["PORT"],
		env:              variablesMap["ENV"],
		maxProcs:         intMap["MAX_PROCS"],
		redisURL:         variablesMap["REDIS_URL"],
		serviceName:      variablesMap["SERVICE_NAME"],
		strictQueryJSON:  isTrue(variablesMap["STRICT_QUERY_JSON"]),
		tableCacheTTLSec: intMap["TABLE_CACHE_TTL_SEC"],
		loggerConfig: NewLoggerConfig(
			isTrue(variablesMap["DEBUG"]),
			variablesMap["ENV"],
			variablesMap["SERVICE_NAME"],
		),
		tokensConfig: NewTokensConfig(
			variablesMap["JWT_SECRET"],
			variablesMap["JWT_ISSUER"],
			intMap["JWT_ACCESS_TTL_SEC"],
		),
		accessKeysConfig: NewAccessKeysConfig(
			strings.ToLower(variablesMap["ACCESS_KEY_MODE"]),
			variablesMap["ACCESS_KEY_SECRET"],
		),
		storeConfig: NewStoreConfig(
			driver,
			variablesMap["DATABASE_URL"],
			variablesMap["BOLT_PATH"],
			NewDynamoDBConfig(
				variablesMap["DYNAMODB_TABLE"],
				variablesMap["DYNAMODB_REGION"],
				variablesMap["DYNAMODB_ENDPOINT"],
				variablesMap["AWS_ACCESS_KEY_ID"],
				variablesMap["AWS_SECRET_ACCESS_KEY"],
			),
		),
		rateLimiterConfig: NewRateLimiterConfig(
			intMap["RATE_LIMITER_MAX"],
			intMap["RATE_LIMITER_EXP_SEC"],
		),
	}
}
