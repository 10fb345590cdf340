// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package restoremongo

import (
	"fmt"

	"github.com/oramatt/extract-schemas/common/options"
	"github.com/oramatt/extract-schemas/common/util"
)

// Usage describes basic usage of restoremongo.
var Usage = "<options> <metadata directory>\n\n" + util.WrapDescription(`
Recreate collections on a MongoDB server from an extracted metadata directory. Each
<database>/<collection> folder is restored from its sample document when one was
captured, otherwise from synthetic documents generated from its schema. Indexes are
rebuilt from the schema file.`)

// DefaultDirectory is the metadata root used when none is given.
const DefaultDirectory = "mongodb_metadata"

// InputOptions defines the set of options to use in configuring the restore
// process.
type InputOptions struct {
	Directory string `long:"dir" value-name:"<directory-name>" description:"metadata directory holding one folder per database (default: mongodb_metadata)"`
}

// Name returns a human-readable group name for input options.
func (*InputOptions) Name() string {
	return "input"
}

// OutputOptions defines the set of options for restoring data.
type OutputOptions struct {
	NumSyntheticDocs int    `long:"numSyntheticDocs" value-name:"<count>" default:"10" description:"number of documents to generate for a collection restored from its schema"`
	Seed             uint64 `long:"seed" value-name:"<seed>" description:"seed for synthetic data; 0 picks a random seed"`
	NoIndexRestore   bool   `long:"noIndexRestore" description:"don't restore indexes"`
	DryRun           bool   `long:"dryRun" description:"read metadata and generate documents without writing to the server"`
	LogDir           string `long:"logDir" value-name:"<directory-name>" default:"." description:"directory for the run's log file"`
	NoLogFile        bool   `long:"noLogFile" description:"only log to stdout"`
}

// Name returns a human-readable group name for output options.
func (*OutputOptions) Name() string {
	return "restore"
}

// Options holds every option group restoremongo understands.
type Options struct {
	*options.ToolOptions
	*InputOptions
	*OutputOptions
	TargetDirectory string
}

// ParseOptions reads command-line and config-file options for restoremongo.
func ParseOptions(rawArgs []string, versionStr, gitCommit string) (Options, error) {
	opts := options.New("restoremongo", versionStr, gitCommit, Usage)

	inputOpts := &InputOptions{}
	opts.AddOptions(inputOpts)
	outputOpts := &OutputOptions{}
	opts.AddOptions(outputOpts)

	extraArgs, err := opts.ParseArgs(rawArgs)
	if err != nil {
		return Options{}, err
	}

	if len(extraArgs) > 1 {
		return Options{}, fmt.Errorf("too many positional arguments: %v", extraArgs)
	}

	targetDir := inputOpts.Directory
	if len(extraArgs) == 1 {
		if targetDir != "" && targetDir != extraArgs[0] {
			return Options{}, fmt.Errorf("cannot give the metadata directory both as --dir and as a positional argument")
		}
		targetDir = extraArgs[0]
	}
	if targetDir == "" {
		targetDir = DefaultDirectory
	}

	if outputOpts.NumSyntheticDocs < 0 {
		return Options{}, fmt.Errorf("--numSyntheticDocs must not be negative, got %v", outputOpts.NumSyntheticDocs)
	}

	return Options{opts, inputOpts, outputOpts, targetDir}, nil
}
