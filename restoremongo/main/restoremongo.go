// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Main package for the restoremongo tool.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oramatt/extract-schemas/common/log"
	"github.com/oramatt/extract-schemas/common/util"
	"github.com/oramatt/extract-schemas/restoremongo"
)

var (
	VersionStr = "built-without-version-string"
	GitCommit  = "build-without-git-commit"
)

func main() {
	opts, err := restoremongo.ParseOptions(os.Args[1:], VersionStr, GitCommit)
	if err != nil {
		log.Logvf(log.Always, "error parsing command line options: %s", err.Error())
		log.Logvf(log.Always, util.ShortUsage("restoremongo"))
		os.Exit(util.ExitFailure)
	}

	// print help, if specified
	if opts.PrintHelp(false) {
		return
	}

	// print version, if specified
	if opts.PrintVersion() {
		return
	}

	// init logger
	log.SetVerbosity(opts.Verbosity)

	os.Exit(run(opts))
}

func run(opts restoremongo.Options) int {
	if !opts.NoLogFile {
		logFile, err := log.OpenLogFile(opts.LogDir, "restoremongo", time.Now())
		if err != nil {
			log.Logvf(log.Always, "Failed: %v", err)
			return util.ExitFailure
		}
		defer logFile.Close()
		log.SetWriter(io.MultiWriter(os.Stdout, logFile))
		log.Logvf(log.Info, "logging to %v", logFile.Name())
	}

	if _, err := os.Stat(opts.TargetDirectory); err != nil {
		log.Logvf(log.Always, "Failed: metadata directory %v: %v", opts.TargetDirectory, err)
		return util.ExitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	restore, err := restoremongo.New(opts)
	if err != nil {
		log.Logvf(log.Always, "Failed: %v", err)
		return util.ExitFailure
	}
	defer restore.Close()

	if _, err = restore.Restore(ctx); err != nil {
		log.Logvf(log.Always, "Failed: %v", err)
		return util.ExitFailure
	}
	return util.ExitSuccess
}
