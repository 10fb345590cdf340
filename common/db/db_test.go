// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/oramatt/extract-schemas/common/idx"
	"github.com/oramatt/extract-schemas/common/options"
	"github.com/oramatt/extract-schemas/common/testtype"
	. "github.com/smartystreets/goconvey/convey"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// integrationOptions is duplicated from testutil to avoid an import cycle.
func integrationOptions() options.ToolOptions {
	opts := options.ToolOptions{
		AppName:    "db_test",
		URI:        &options.URI{ConnectionString: os.Getenv("TOOLS_TESTING_MONGOD")},
		Connection: &options.Connection{Host: "localhost", Port: DefaultTestPort, Timeout: 5},
		SSL:        &options.SSL{},
		Auth:       &options.Auth{},
	}
	return opts
}

func TestConfigureClient(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	Convey("With hand-built tool options", t, func() {
		opts := options.ToolOptions{
			AppName:    "restoremongo",
			Connection: &options.Connection{Host: "db.example.net", Port: "27018", Timeout: 7},
		}

		Convey("the client targets the host and port", func() {
			clientOpts, err := configureClient(opts)
			So(err, ShouldBeNil)
			So(clientOpts.Hosts, ShouldResemble, []string{"db.example.net:27018"})
			So(*clientOpts.AppName, ShouldEqual, "restoremongo")
			So(*clientOpts.ConnectTimeout, ShouldEqual, 7*time.Second)
			So(*clientOpts.ServerSelectionTimeout, ShouldEqual, 7*time.Second)
			So(clientOpts.Auth, ShouldBeNil)
		})

		Convey("credentials are attached when a username is set", func() {
			opts.Auth = &options.Auth{Username: "me", Password: "pw", Source: "admin"}
			clientOpts, err := configureClient(opts)
			So(err, ShouldBeNil)
			So(clientOpts.Auth, ShouldNotBeNil)
			So(clientOpts.Auth.Username, ShouldEqual, "me")
			So(clientOpts.Auth.AuthSource, ShouldEqual, "admin")
			So(clientOpts.Auth.PasswordSet, ShouldBeTrue)
		})

		Convey("a missing CA file is an error", func() {
			opts.SSL = &options.SSL{UseSSL: true, SSLCAFile: "does/not/exist.pem"}
			_, err := configureClient(opts)
			So(err, ShouldNotBeNil)
		})

		Convey("--tlsInsecure skips verification", func() {
			opts.SSL = &options.SSL{UseSSL: true, TLSInsecure: true}
			clientOpts, err := configureClient(opts)
			So(err, ShouldBeNil)
			So(clientOpts.TLSConfig, ShouldNotBeNil)
			So(clientOpts.TLSConfig.InsecureSkipVerify, ShouldBeTrue)
		})
	})
}

func TestTLSHelpers(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	Convey("x509 subjects are reversed into usernames", t, func() {
		So(extractX509UsernameFromSubject("CN=client,OU=tools,O=Example"), ShouldEqual, "O=Example,OU=tools,CN=client")
	})

	Convey("PEM data without a certificate is rejected", t, func() {
		_, err := addClientCertFromBytes(nil, []byte("not pem"), "")
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "CERTIFICATE")
	})
}

func TestIsNamespaceNotFound(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	Convey("ns not found errors are recognised", t, func() {
		So(IsNamespaceNotFound(nil), ShouldBeFalse)
		So(IsNamespaceNotFound(mongo.CommandError{Code: 26, Name: "NamespaceNotFound"}), ShouldBeTrue)
		So(IsNamespaceNotFound(fmt.Errorf("wrapped: %w", mongo.CommandError{Code: 26})), ShouldBeTrue)
		So(IsNamespaceNotFound(errors.New("ns not found")), ShouldBeTrue)
		So(IsNamespaceNotFound(errors.New("connection refused")), ShouldBeFalse)
	})
}

func TestSessionProviderTarget(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.IntegrationTestType)

	ctx := context.Background()

	Convey("With a session provider against a live server", t, func() {
		provider, err := NewSessionProvider(integrationOptions())
		So(err, ShouldBeNil)
		defer provider.Close()

		version, err := provider.CheckServerCompatibility(ctx)
		So(err, ShouldBeNil)
		So(CanonicalVersion(version), ShouldNotBeEmpty)

		const dbName, collName = "db_target_test", "coll"
		So(provider.DropCollection(ctx, dbName, collName), ShouldBeNil)

		Convey("writes go through the Target operations", func() {
			exists, err := provider.CollectionExists(ctx, dbName, collName)
			So(err, ShouldBeNil)
			So(exists, ShouldBeFalse)

			n, err := provider.InsertDocuments(ctx, dbName, collName, []bson.D{{{"a", 1}}, {{"a", 2}}})
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)

			count, err := provider.CountDocuments(ctx, dbName, collName)
			So(err, ShouldBeNil)
			So(count, ShouldEqual, 2)

			index, err := idx.NewIndexDocumentFromD(bson.D{{"key", bson.D{{"a", -1.0}}}, {"name", "a_desc"}})
			So(err, ShouldBeNil)
			So(provider.CreateIndex(ctx, dbName, collName, index), ShouldBeNil)

			exists, err = provider.CollectionExists(ctx, dbName, collName)
			So(err, ShouldBeNil)
			So(exists, ShouldBeTrue)

			So(provider.DropCollection(ctx, dbName, collName), ShouldBeNil)
			So(provider.DropCollection(ctx, dbName, collName), ShouldBeNil)
		})
	})
}
