// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/partycrusher/partycrusher/lib/config"
	"github.com/partycrusher/partycrusher/lib/secret"
	"github.com/partycrusher/partycrusher/lib/service"
	"github.com/partycrusher/partycrusher/messaging"
)

const loginTimeout = 30 * time.Second

// runLogin exchanges a password for an access token. With
// --session-file the token is written there for matrix.session_file;
// otherwise the MATRIX_ACCESS_TOKEN line for a .env file is printed.
func runLogin(args []string, stdin io.Reader, stdout io.Writer) error {
	var (
		homeserverURL string
		username      string
		passwordFile  string
		sessionFile   string
	)
	flagSet := pflag.NewFlagSet("login", pflag.ContinueOnError)
	flagSet.StringVar(&homeserverURL, "homeserver", "", "Matrix homeserver URL (required)")
	flagSet.StringVarP(&username, "user", "u", "", "bot account localpart or user ID (required)")
	flagSet.StringVar(&passwordFile, "password-file", "", `read the password from this file, or "-" for stdin (default: prompt)`)
	flagSet.StringVar(&sessionFile, "session-file", "", "write the session here instead of printing the token")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if homeserverURL == "" || username == "" {
		return errors.New("login: --homeserver and --user are required")
	}

	password, err := readPassword(passwordFile, stdin, stdout)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer password.Close()

	client, err := messaging.NewClient(messaging.ClientConfig{HomeserverURL: homeserverURL})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
	defer cancel()
	session, err := client.Login(ctx, username, password)
	if err != nil {
		return err
	}
	defer session.Close()

	if sessionFile != "" {
		if err := service.SaveSession(sessionFile, homeserverURL, session); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Logged in as %s; session written to %s\n", session.UserID(), sessionFile)
		return nil
	}

	fmt.Fprintf(stdout, "# Logged in as %s (device %s)\n", session.UserID(), session.DeviceID())
	fmt.Fprintf(stdout, "%s=%s\n", config.AccessTokenVariable, session.AccessToken())
	return nil
}

// readPassword reads from passwordFile when given, else prompts on
// the terminal without echo.
func readPassword(passwordFile string, stdin io.Reader, stdout io.Writer) (*secret.Buffer, error) {
	if passwordFile != "" {
		return secret.ReadFromPath(passwordFile)
	}

	file, ok := stdin.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return nil, errors.New("no terminal to prompt for the password; use --password-file")
	}
	fmt.Fprint(stdout, "Password: ")
	raw, err := term.ReadPassword(int(file.Fd()))
	fmt.Fprintln(stdout)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("empty password")
	}
	return secret.NewFromBytes(raw)
}
