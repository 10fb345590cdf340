// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package testtype gates tests on the kind of environment they need.
package testtype

import (
	"os"
	"strings"
	"testing"
)

const (
	// UnitTestType tests need nothing but the Go toolchain. They run unless
	// TOOLS_TESTING_UNIT is set to "false".
	UnitTestType = "TOOLS_TESTING_UNIT"

	// IntegrationTestType tests need a running server. They run only when
	// TOOLS_TESTING_INTEGRATION is "true".
	IntegrationTestType = "TOOLS_TESTING_INTEGRATION"
)

// HasTestType reports whether tests of the given type are enabled.
func HasTestType(testType string) bool {
	val := strings.ToLower(os.Getenv(testType))
	if testType == UnitTestType {
		return val != "false"
	}
	return val == "true"
}

// SkipUnlessTestType skips the current test unless the given test type is
// enabled.
func SkipUnlessTestType(t *testing.T, testType string) {
	if !HasTestType(testType) {
		t.SkipNow()
	}
}
