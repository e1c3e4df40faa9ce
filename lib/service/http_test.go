// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/partycrusher/partycrusher/lib/testutil"
)

func TestHTTPServerServesAndShutsDown(t *testing.T) {
	server := NewHTTPServer(HTTPServerConfig{
		Address: "127.0.0.1:0",
		Handler: http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			io.WriteString(writer, "partycrusher_listings_open 2\n")
		}),
		Logger: discardLogger(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve(ctx) }()

	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "server ready")

	response, err := http.Get("http://" + server.Addr().String() + "/metrics")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(response.Body)
	response.Body.Close()
	if string(body) != "partycrusher_listings_open 2\n" {
		t.Errorf("body = %q", body)
	}

	cancel()
	if err := testutil.RequireReceive(t, serveErr, 15*time.Second, "serve return"); err != nil {
		t.Errorf("Serve returned %v", err)
	}
}

func TestNewHTTPServerRequiresFields(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for missing address")
		}
	}()
	NewHTTPServer(HTTPServerConfig{Handler: http.NotFoundHandler(), Logger: discardLogger()})
}
