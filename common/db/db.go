// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package db implements the connection to the target MongoDB server and the
// write operations a restore performs against it.
package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oramatt/extract-schemas/common/log"
	"github.com/oramatt/extract-schemas/common/options"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/mongo"
	mopt "go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Default port for integration tests
const (
	DefaultTestPort = "33333"
)

const (
	ErrNsNotFound     = "ns not found"
	ErrNsNotFoundCode = 26
)

// SessionProvider manages the client connected to the target server.
type SessionProvider struct {
	sync.Mutex

	// the master client used for operations
	client  *mongo.Client
	timeout time.Duration
}

// GetSession returns the mongo.Client connected to the server for which the
// session provider is configured.
func (sp *SessionProvider) GetSession() (*mongo.Client, error) {
	sp.Lock()
	defer sp.Unlock()

	if sp.client == nil {
		return nil, errors.New("SessionProvider already closed")
	}

	return sp.client, nil
}

// Close closes the master session in the connection pool
func (sp *SessionProvider) Close() {
	sp.Lock()
	defer sp.Unlock()
	if sp.client != nil {
		_ = sp.client.Disconnect(context.Background())
		sp.client = nil
	}
}

// NewSessionProvider constructs a session provider, including a connected
// client. The server must answer a ping within the dial timeout.
func NewSessionProvider(opts options.ToolOptions) (*SessionProvider, error) {
	clientOpts, err := configureClient(opts)
	if err != nil {
		return nil, errors.Wrap(err, "error configuring the connector")
	}
	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout(opts))
	defer cancel()
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("could not connect to server: %v", err)
	}

	log.Logvf(log.DebugLow, "connected to %v", opts.ConnectionURI())
	return &SessionProvider{client: client, timeout: dialTimeout(opts)}, nil
}

// Timeout returns the dial timeout the provider was configured with.
func (sp *SessionProvider) Timeout() time.Duration {
	return sp.timeout
}

func dialTimeout(opts options.ToolOptions) time.Duration {
	if opts.Connection != nil && opts.Timeout > 0 {
		return time.Duration(opts.Timeout) * time.Second
	}
	return 3 * time.Second
}

// configure the client according to the options set in the uri and in the
// provided ToolOptions, with ToolOptions having precedence.
func configureClient(opts options.ToolOptions) (*mopt.ClientOptions, error) {
	if opts.URI == nil || opts.URI.ConnectionString == "" {
		// Hand-built options (tests, mostly) carry no URI, so normalize
		// them here to get defaults.
		if err := opts.NormalizeOptionsAndURI(); err != nil {
			return nil, err
		}
	}

	clientopt := mopt.Client().ApplyURI(opts.ConnectionURI())
	clientopt.SetAppName(opts.AppName)

	timeout := dialTimeout(opts)
	clientopt.SetConnectTimeout(timeout)
	clientopt.SetServerSelectionTimeout(timeout)

	if opts.Auth != nil && opts.Auth.IsSet() {
		cred := mopt.Credential{
			Username:      opts.Auth.Username,
			Password:      opts.Auth.Password,
			PasswordSet:   opts.Auth.Password != "",
			AuthSource:    opts.GetAuthenticationDatabase(),
			AuthMechanism: opts.Auth.Mechanism,
		}
		clientopt.SetAuth(cred)
	}

	if opts.SSL != nil && opts.UseSSL {
		tlsConfig, subject, err := newTLSConfig(opts.SSL)
		if err != nil {
			return nil, err
		}
		clientopt.SetTLSConfig(tlsConfig)

		if opts.Auth != nil && opts.Auth.Mechanism == "MONGODB-X509" && opts.Auth.Username == "" && subject != "" {
			cred := mopt.Credential{
				Username:      extractX509UsernameFromSubject(subject),
				AuthMechanism: opts.Auth.Mechanism,
				AuthSource:    "$external",
			}
			clientopt.SetAuth(cred)
		}
	}

	return clientopt, clientopt.Validate()
}
