// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package restoremongo recreates MongoDB collections from extracted
// metadata folders.
package restoremongo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oramatt/extract-schemas/common/db"
	"github.com/oramatt/extract-schemas/common/log"
	"github.com/oramatt/extract-schemas/common/options"
	"github.com/oramatt/extract-schemas/common/util"
	"github.com/oramatt/extract-schemas/synthetic"
	"github.com/pkg/errors"
)

// RestoreMongo is a container for the user-specified options and
// internal state used for running restoremongo.
type RestoreMongo struct {
	ToolOptions   *options.ToolOptions
	InputOptions  *InputOptions
	OutputOptions *OutputOptions

	TargetDirectory string

	// Target receives every write. It is nil for a dry run built with New.
	Target    db.Target
	Generator *synthetic.Generator

	sessionProvider *db.SessionProvider
}

// New initializes an instance of RestoreMongo according to the provided
// options, connecting to the server unless this is a dry run.
func New(opts Options) (*RestoreMongo, error) {
	restore := NewWithTarget(opts, nil)
	if opts.OutputOptions.DryRun {
		log.Logv(log.Always, "dry run: no changes will be made to the server")
		return restore, nil
	}

	provider, err := db.NewSessionProvider(*opts.ToolOptions)
	if err != nil {
		return nil, fmt.Errorf("error connecting to host: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), provider.Timeout())
	defer cancel()
	version, err := provider.CheckServerCompatibility(ctx)
	if err != nil {
		provider.Close()
		return nil, fmt.Errorf("incompatible server: %v", err)
	}
	log.Logvf(log.Always, "connected to server version %v", version)

	restore.Target = provider
	restore.sessionProvider = provider
	return restore, nil
}

// NewWithTarget builds a RestoreMongo that writes through target.
func NewWithTarget(opts Options, target db.Target) *RestoreMongo {
	return &RestoreMongo{
		ToolOptions:     opts.ToolOptions,
		InputOptions:    opts.InputOptions,
		OutputOptions:   opts.OutputOptions,
		TargetDirectory: opts.TargetDirectory,
		Target:          target,
		Generator:       synthetic.New(opts.OutputOptions.Seed),
	}
}

// Close ends any connections RestoreMongo holds.
func (restore *RestoreMongo) Close() {
	if restore.sessionProvider != nil {
		restore.sessionProvider.Close()
	}
}

// Restore walks the metadata directory and restores every collection folder
// in it. Only a missing or unreadable root directory is returned as an error;
// per-collection failures are counted in the returned Stats.
func (restore *RestoreMongo) Restore(ctx context.Context) (Stats, error) {
	var stats Stats
	root := restore.TargetDirectory

	info, err := os.Stat(root)
	if err != nil {
		return stats, errors.Wrapf(err, "metadata directory %v", root)
	}
	if !info.IsDir() {
		return stats, fmt.Errorf("metadata path %v is not a directory", root)
	}

	dbDirs, err := subdirectories(root)
	if err != nil {
		return stats, err
	}
	if len(dbDirs) == 0 {
		log.Logvf(log.Always, "no database folders found in %v", root)
	}

	for _, dbName := range dbDirs {
		if err = ctx.Err(); err != nil {
			return stats, err
		}
		dbDir := filepath.Join(root, dbName)
		log.Logvf(log.Always, "processing database %v", dbName)
		stats.DatabasesProcessed++

		collDirs, err := subdirectories(dbDir)
		if err != nil {
			log.Logvf(log.Always, "error reading database folder %v: %v", dbDir, err)
			stats.Errors++
			continue
		}

		for _, collName := range collDirs {
			result := restore.RestoreCollection(ctx, dbName, collName, filepath.Join(dbDir, collName))
			result.log(util.JoinNamespace(dbName, collName))
			stats.Record(result)
		}
	}

	stats.Log()
	return stats, nil
}

// subdirectories lists the directories directly under dir, in lexical order.
func subdirectories(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %v", dir)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			log.Logvf(log.DebugLow, "skipping %v: not a directory", filepath.Join(dir, entry.Name()))
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}
