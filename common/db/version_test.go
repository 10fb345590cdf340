// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package db

import (
	"testing"

	"github.com/oramatt/extract-schemas/common/testtype"
)

func TestCanonicalVersion(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	cases := map[string]string{
		"7.0.2":      "v7.0.2",
		"v4.4.0":     "v4.4.0",
		"4.4.0-rc1":  "v4.4.0-rc1",
		" 5.0.14 ":   "v5.0.14",
		"6.0":        "v6.0.0",
		"not-a-semv": "",
	}

	for in, want := range cases {
		if got := CanonicalVersion(in); got != want {
			t.Errorf("CanonicalVersion(%q): got %q; wanted: %q", in, got, want)
		}
	}
}

func TestCheckVersion(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	type testCase struct {
		version string
		ok      bool
	}
	cases := []testCase{
		{version: "4.0.0", ok: true},
		{version: "4.0.28", ok: true},
		{version: "7.0.2", ok: true},
		{version: "3.6.23", ok: false},
		{version: "4.0.0-rc0", ok: false},
		{version: "garbage", ok: false},
	}

	for _, c := range cases {
		err := CheckVersion(c.version, MinimumServerVersion)
		if c.ok && err != nil {
			t.Errorf("%v: unexpected error: %v", c.version, err)
		}
		if !c.ok && err == nil {
			t.Errorf("%v: expected an error", c.version)
		}
	}

	if err := CheckVersion("7.0.0", "nope"); err == nil {
		t.Errorf("expected an error for an invalid minimum")
	}
}
