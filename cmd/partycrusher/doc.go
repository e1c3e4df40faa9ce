// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

// Partycrusher is a Matrix bot that runs looking-for-group listings
// for keystone dungeon runs.
//
// The run command (the default) loads .env.{APP_ENV} from
// --secrets-dir and the YAML configuration from --config or
// PARTYCRUSHER_CONFIG, connects with matrix.session_file or
// MATRIX_ACCESS_TOKEN, and serves every configured room until
// SIGINT or SIGTERM. Prometheus metrics are served on
// metrics.listen_address when set.
//
// The login command exchanges the bot account's password for an
// access token:
//
//	partycrusher login --homeserver https://matrix.example.org --user partycrusher
package main
