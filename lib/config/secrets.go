// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// AccessTokenVariable names the environment variable holding the bot's
// Matrix access token.
const AccessTokenVariable = "MATRIX_ACCESS_TOKEN"

// LoadSecrets loads dir/.env.{APP_ENV} into the process environment
// without overriding variables that are already set. A missing file is
// not an error. Returns the selected environment.
func LoadSecrets(dir string) (Environment, error) {
	environment, err := ParseEnvironment(os.Getenv("APP_ENV"))
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, ".env."+string(environment))
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("loading %s: %w", path, err)
	}
	return environment, nil
}

// AccessToken returns the token from the environment, or an error that
// names the variable and the .env file to put it in.
func AccessToken(environment Environment) (string, error) {
	token := os.Getenv(AccessTokenVariable)
	if token == "" {
		return "", fmt.Errorf("%s missing; put it in .env.%s or the process environment", AccessTokenVariable, environment)
	}
	return token, nil
}
