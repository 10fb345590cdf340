// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/mod/semver"
)

// MinimumServerVersion is the oldest server a restore will write to.
const MinimumServerVersion = "4.0.0"

// CanonicalVersion turns a server version string such as "7.0.2" or
// "4.4.0-rc1" into its semver form ("v7.0.2"). It returns "" if the
// string is not a valid version.
func CanonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.Canonical(v)
}

// CheckVersion returns an error unless version is at least minimum.
func CheckVersion(version, minimum string) error {
	have := CanonicalVersion(version)
	if have == "" {
		return fmt.Errorf("could not parse server version %q", version)
	}
	want := CanonicalVersion(minimum)
	if want == "" {
		return fmt.Errorf("could not parse minimum version %q", minimum)
	}
	if semver.Compare(have, want) < 0 {
		return fmt.Errorf("server version %v is older than the minimum supported version %v", version, minimum)
	}
	return nil
}

// ServerVersion returns the version string the server reports in buildInfo.
func (sp *SessionProvider) ServerVersion(ctx context.Context) (string, error) {
	session, err := sp.GetSession()
	if err != nil {
		return "", err
	}
	var buildInfo struct {
		Version string `bson:"version"`
	}
	err = session.Database("admin").RunCommand(ctx, bson.D{{"buildInfo", 1}}).Decode(&buildInfo)
	if err != nil {
		return "", errors.Wrap(err, "error running buildInfo")
	}
	return buildInfo.Version, nil
}

// CheckServerCompatibility returns the server version, or an error if the
// server is older than MinimumServerVersion.
func (sp *SessionProvider) CheckServerCompatibility(ctx context.Context) (string, error) {
	version, err := sp.ServerVersion(ctx)
	if err != nil {
		return "", err
	}
	return version, CheckVersion(version, MinimumServerVersion)
}
