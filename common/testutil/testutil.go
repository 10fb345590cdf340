// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package testutil implements functions for configuring integration tests
// and building metadata fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/oramatt/extract-schemas/common/db"
	"github.com/oramatt/extract-schemas/common/options"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/x/mongo/driver/connstring"
)

const uriEnvVar = "TOOLS_TESTING_MONGOD"

// GetBareSessionProvider returns a session provider from the environment or
// from a default host and port.
func GetBareSessionProvider() (*db.SessionProvider, *options.ToolOptions, error) {
	toolOptions, err := GetToolOptions()
	if err != nil {
		return nil, nil, fmt.Errorf(
			"error getting tool options to create a bare session provider: %w",
			err,
		)
	}

	sessionProvider, err := db.NewSessionProvider(*toolOptions)
	if err != nil {
		return nil, nil, err
	}

	return sessionProvider, toolOptions, nil
}

// GetToolOptions returns options pointing at the integration test server:
// TOOLS_TESTING_MONGOD when set, otherwise localhost on the test port.
func GetToolOptions() (*options.ToolOptions, error) {
	toolOptions := options.New("restoremongo_test", "", "", "")
	_, err := toolOptions.ParseArgs(GetBareArgs())
	if err != nil {
		return nil, err
	}
	return toolOptions, nil
}

// GetBareArgs returns the command line arguments that connect to the
// integration test server.
func GetBareArgs() []string {
	if uri := os.Getenv(uriEnvVar); uri != "" {
		if _, err := connstring.ParseAndValidate(uri); err != nil {
			panic(fmt.Sprintf("%#q from the %#q env var is not a valid connection string: %v", uri, uriEnvVar, err))
		}
		return []string{"--uri", uri}
	}
	return []string{"--host", "localhost", "--port", db.DefaultTestPort}
}

// MetadataDir builds a metadata root under a temporary directory. files maps
// "<db>/<collection>/<file name>" to the file content; an entry ending in "/"
// creates an empty folder.
func MetadataDir(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if rel[len(rel)-1] == '/' {
			require.NoError(t, os.MkdirAll(path, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}
