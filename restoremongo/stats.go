// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package restoremongo

import (
	"github.com/oramatt/extract-schemas/common/log"
	"github.com/oramatt/extract-schemas/common/util"
	"github.com/pkg/errors"
)

// Stats counts what a restore run did.
type Stats struct {
	DatabasesProcessed   int
	CollectionsProcessed int
	CollectionsRestored  int
	CollectionsSkipped   int
	Errors               int
	DocumentsInserted    int64
	IndexesCreated       int
}

// Record folds the result of one collection into the run statistics.
func (s *Stats) Record(result Result) {
	s.CollectionsProcessed++
	s.DocumentsInserted += result.Inserted
	s.IndexesCreated += result.IndexesCreated

	switch {
	case errors.Is(result.Err, ErrNoUsableMetadata):
		s.CollectionsSkipped++
		s.Errors++
	case result.Err != nil:
		s.Errors++
	default:
		s.CollectionsRestored++
	}
}

// Log writes the run summary.
func (s Stats) Log() {
	log.Logv(log.Always, "restore summary:")
	log.Logvf(log.Always, "  %v %v processed", s.DatabasesProcessed, util.Pluralize(s.DatabasesProcessed, "database", "databases"))
	log.Logvf(log.Always, "  %v %v processed", s.CollectionsProcessed, util.Pluralize(s.CollectionsProcessed, "collection", "collections"))
	log.Logvf(log.Always, "  %v %v restored", s.CollectionsRestored, util.Pluralize(s.CollectionsRestored, "collection", "collections"))
	log.Logvf(log.Always, "  %v %v skipped", s.CollectionsSkipped, util.Pluralize(s.CollectionsSkipped, "collection", "collections"))
	log.Logvf(log.Always, "  %v %v inserted", s.DocumentsInserted, util.Pluralize(int(s.DocumentsInserted), "document", "documents"))
	log.Logvf(log.Always, "  %v %v created", s.IndexesCreated, util.Pluralize(s.IndexesCreated, "index", "indexes"))
	log.Logvf(log.Always, "  %v %v", s.Errors, util.Pluralize(s.Errors, "error", "errors"))
}
