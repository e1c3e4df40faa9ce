// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/partycrusher/partycrusher/lib/ref"
	"github.com/partycrusher/partycrusher/lib/secret"
	"github.com/partycrusher/partycrusher/messaging"
)

// SessionData is the JSON structure of the session file written by
// the login subcommand.
type SessionData struct {
	HomeserverURL string `json:"homeserver_url"`
	UserID        string `json:"user_id"`
	AccessToken   string `json:"access_token"`
}

// LoadSession reads a session file and returns an authenticated client
// and session. A non-empty homeserverURL overrides the one stored in
// the file. The raw file bytes are zeroed after parsing.
//
// The caller must Close the returned session.
func LoadSession(sessionPath, homeserverURL string, logger *slog.Logger) (*messaging.Client, *messaging.DirectSession, error) {
	jsonData, err := os.ReadFile(sessionPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading session from %s: %w", sessionPath, err)
	}

	var data SessionData
	err = json.Unmarshal(jsonData, &data)
	secret.Zero(jsonData)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing session from %s: %w", sessionPath, err)
	}
	if data.AccessToken == "" {
		return nil, nil, fmt.Errorf("session file %s has empty access token", sessionPath)
	}

	serverURL := homeserverURL
	if serverURL == "" {
		serverURL = data.HomeserverURL
	}

	userID, err := ref.ParseUserID(data.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid user_id in %s: %w", sessionPath, err)
	}

	return NewTokenSession(serverURL, userID, data.AccessToken, logger)
}

// NewTokenSession builds a client and session from an access token
// taken from the environment or a session file.
func NewTokenSession(homeserverURL string, userID ref.UserID, accessToken string, logger *slog.Logger) (*messaging.Client, *messaging.DirectSession, error) {
	client, err := messaging.NewClient(messaging.ClientConfig{
		HomeserverURL: homeserverURL,
		Logger:        logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating matrix client: %w", err)
	}

	session, err := client.SessionFromToken(userID, accessToken)
	if err != nil {
		return nil, nil, err
	}
	return client, session, nil
}

// SaveSession writes session to sessionPath with mode 0600. The JSON
// bytes are zeroed after writing.
func SaveSession(sessionPath, homeserverURL string, session *messaging.DirectSession) error {
	data := SessionData{
		HomeserverURL: homeserverURL,
		UserID:        session.UserID().String(),
		AccessToken:   session.AccessToken(),
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	writeError := os.WriteFile(sessionPath, jsonData, 0600)
	secret.Zero(jsonData)
	if writeError != nil {
		return fmt.Errorf("writing session to %s: %w", sessionPath, writeError)
	}
	return nil
}

// ValidateSession calls WhoAmI and checks the token belongs to the
// configured user. Called once at startup.
func ValidateSession(ctx context.Context, session messaging.Session) (ref.UserID, error) {
	userID, err := session.WhoAmI(ctx)
	if err != nil {
		return ref.UserID{}, fmt.Errorf("validating matrix session: %w", err)
	}
	if expected := session.UserID(); !expected.IsZero() && userID != expected {
		return ref.UserID{}, fmt.Errorf("access token belongs to %s, configured user is %s", userID, expected)
	}
	return userID, nil
}
