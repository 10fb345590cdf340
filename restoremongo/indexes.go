// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package restoremongo

import (
	"context"
	"fmt"

	"github.com/oramatt/extract-schemas/common/bsonutil"
	"github.com/oramatt/extract-schemas/common/idx"
	"github.com/oramatt/extract-schemas/common/log"
	"github.com/oramatt/extract-schemas/common/util"
)

// RestoreIndexesForNamespace rebuilds the indexes described in meta. Every
// index is attempted; the returned error summarizes the ones that failed.
func (restore *RestoreMongo) RestoreIndexesForNamespace(ctx context.Context, dbName, collName string, meta *SchemaMetadata) (int, error) {
	namespace := util.JoinNamespace(dbName, collName)
	if meta == nil {
		log.Logvf(log.Always, "warning: no index metadata for %v, skipping index restore", namespace)
		return 0, nil
	}

	var created, failed int
	for _, raw := range meta.Indexes {
		index, err := idx.NewIndexDocumentFromD(raw)
		if err != nil {
			log.Logvf(log.Always, "error reading index %v for %v: %v", bsonutil.CreateExtJSONString(raw), namespace, err)
			failed++
			continue
		}

		if index.IsDefaultIdIndex() {
			log.Logvf(log.DebugLow, "skipping default _id index on %v", namespace)
			continue
		}

		if restore.OutputOptions.DryRun {
			log.Logvf(log.Info, "dry run: would create index %v on %v: %v",
				index.Name(), namespace, bsonutil.CreateExtJSONString(index.CreateIndexSpec()))
			created++
			continue
		}

		log.Logvf(log.DebugLow, "creating index %v on %v", index.Name(), namespace)
		if err = restore.Target.CreateIndex(ctx, dbName, collName, index); err != nil {
			log.Logvf(log.Always, "error creating index %v on %v: %v; index: %v",
				index.Name(), namespace, err, bsonutil.CreateExtJSONString(index.CreateIndexSpec()))
			failed++
			continue
		}
		created++
	}

	log.Logvf(log.Info, "restored %v %v on %v", created, util.Pluralize(created, "index", "indexes"), namespace)
	if failed > 0 {
		return created, fmt.Errorf("%v of %v %v failed to restore on %v",
			failed, len(meta.Indexes), util.Pluralize(len(meta.Indexes), "index", "indexes"), namespace)
	}
	return created, nil
}
