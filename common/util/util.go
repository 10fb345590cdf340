// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package util provides commonly used utility functions.
package util

import (
	"fmt"
	"strings"

	"github.com/mitchellh/go-wordwrap"
)

const (
	ExitSuccess int = iota
	ExitFailure
)

const usageWidth = 80

// Pluralize takes an amount and two strings denoting the singular
// and plural noun the amount represents. If the amount is singular,
// the singular form is returned; otherwise plural is returned. E.g.
//
//	Pluralize(X, "mouse", "mice") -> 0 mice, 1 mouse, 2 mice, ...
func Pluralize(amount int, singular, plural string) string {
	if amount == 1 {
		return singular
	}
	return plural
}

// ShortUsage returns a wrapped hint pointing the user at --help.
func ShortUsage(tool string) string {
	return wordwrap.WrapString(
		fmt.Sprintf("try '%v --help' for more information", tool),
		usageWidth,
	)
}

// WrapDescription wraps a long option or tool description to the usage width,
// collapsing internal whitespace first.
func WrapDescription(text string) string {
	return wordwrap.WrapString(strings.Join(strings.Fields(text), " "), usageWidth)
}

// JoinNamespace joins a database and collection name into a namespace string.
func JoinNamespace(dbName, collName string) string {
	return dbName + "." + collName
}
