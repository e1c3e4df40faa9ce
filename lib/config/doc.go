// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads PartyCrusher's configuration.
//
// Non-secret settings come from a single YAML file named by the
// --config flag or the PARTYCRUSHER_CONFIG environment variable. There
// is no discovery: a missing path is an error.
//
// The deployment environment comes from APP_ENV (dev, uat, or prod;
// default dev). It selects two things: the .env.{APP_ENV} file that
// [LoadSecrets] reads with godotenv, and the dev/uat/prod override
// section of the YAML file. Variables already present in the process
// environment always win over the .env file.
//
// String fields support ${VAR} and ${VAR:-default} expansion.
package config
