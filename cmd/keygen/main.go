// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tugascript/devlogs/dataforge/internal/providers/accesskeys"
	"github.com/tugascript/devlogs/dataforge/internal/providers/tokens"
	"github.com/tugascript/devlogs/dataforge/internal/utils"
)

const secretByteLen int = 32

var (
	envFile string

	tableID  string
	callerID string
	method   string
	mode     string
	secret   string
	ttlSec   int64
)

func getLog() *slog.Logger {
	if os.Getenv("DEBUG") == "true" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func loadEnv(logger *slog.Logger) {
	if err := godotenv.Load(envFile); err != nil {
		logger.Debug("No env file loaded", "file", envFile, "error", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate secrets, access keys and bearer tokens for dataforge",
}

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Print a random secret usable as JWT_SECRET or ACCESS_KEY_SECRET",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := utils.GenerateBase64Secret(secretByteLen)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), s)
		return nil
	},
}

var accessKeyCmd = &cobra.Command{
	Use:   "access-key",
	Short: "Print the access key of a table, a caller and a method",
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := getLog()
		loadEnv(logger)

		if mode == "" {
			mode = os.Getenv("ACCESS_KEY_MODE")
		}
		if mode == "" {
			mode = accesskeys.ModeLegacy
		}
		if secret == "" {
			secret = os.Getenv("ACCESS_KEY_SECRET")
		}

		ak, err := accesskeys.NewAccessKeys(logger, mode, secret)
		if err != nil {
			return err
		}

		if method != "" {
			fmt.Fprintln(cmd.OutOrStdout(), ak.Derive(tableID, callerID, method))
			return nil
		}
		for _, m := range accesskeys.Methods {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", m, ak.Derive(tableID, callerID, m))
		}
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a bearer token for the table management endpoints",
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := getLog()
		loadEnv(logger)

		jwtSecret := os.Getenv("JWT_SECRET")
		if jwtSecret == "" {
			return errors.New("JWT_SECRET is not set")
		}

		accessTTL := int64(900)
		if v := os.Getenv("JWT_ACCESS_TTL_SEC"); v != "" {
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid JWT_ACCESS_TTL_SEC: %w", err)
			}
			accessTTL = parsed
		}
		if ttlSec > 0 {
			accessTTL = ttlSec
		}

		jwts := tokens.NewTokens(logger, jwtSecret, os.Getenv("JWT_ISSUER"), accessTTL)
		token, err := jwts.CreateAccessToken(tokens.AccessTokenOptions{CallerID: callerID})
		if err != nil {
			return err
		}

		signed, err := jwts.SignToken(token)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), signed)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Env file to read secrets from")

	accessKeyCmd.Flags().StringVar(&tableID, "table", "", "Table id")
	accessKeyCmd.Flags().StringVar(&callerID, "caller", "", "Caller id")
	accessKeyCmd.Flags().StringVar(&method, "method", "", "HTTP method (default: all methods)")
	accessKeyCmd.Flags().StringVar(&mode, "mode", "", "Derivation mode: legacy or hmac (default: ACCESS_KEY_MODE)")
	accessKeyCmd.Flags().StringVar(&secret, "secret", "", "HMAC secret (default: ACCESS_KEY_SECRET)")
	_ = accessKeyCmd.MarkFlagRequired("table")
	_ = accessKeyCmd.MarkFlagRequired("caller")

	tokenCmd.Flags().StringVar(&callerID, "caller", "", "Caller id used as the token subject")
	tokenCmd.Flags().Int64Var(&ttlSec, "ttl", 0, "Token lifetime in seconds (default: JWT_ACCESS_TTL_SEC)")
	_ = tokenCmd.MarkFlagRequired("caller")

	rootCmd.AddCommand(secretCmd, accessKeyCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
