// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package db

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"strings"

	"github.com/oramatt/extract-schemas/common/options"
	"github.com/youmark/pkcs8"
)

// newTLSConfig builds the client TLS configuration from the --ssl options. It
// returns the subject of the client certificate, if one was loaded.
func newTLSConfig(sslOpts *options.SSL) (*tls.Config, string, error) {
	// #nosec G402 -- InsecureSkipVerify is only set on explicit --tlsInsecure
	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: sslOpts.TLSInsecure,
	}

	if sslOpts.SSLCAFile != "" {
		if err := addCACertsFromFile(cfg, sslOpts.SSLCAFile); err != nil {
			return nil, "", fmt.Errorf("error loading CA file: %v", err)
		}
	}

	var subject string
	if sslOpts.SSLPEMKeyFile != "" {
		var err error
		subject, err = addClientCertFromFile(cfg, sslOpts.SSLPEMKeyFile, sslOpts.SSLPEMKeyPassword)
		if err != nil {
			return nil, "", fmt.Errorf("error loading client certificate: %v", err)
		}
	}

	return cfg, subject, nil
}

// addClientCertFromFile adds a client certificate to the configuration given a path to the
// containing file and returns the certificate's subject name.
func addClientCertFromFile(cfg *tls.Config, clientFile, keyPassword string) (string, error) {
	data, err := os.ReadFile(clientFile)
	if err != nil {
		return "", err
	}

	return addClientCertFromBytes(cfg, data, keyPassword)
}

// addClientCertFromBytes adds a client certificate, found in PEM data holding
// both the certificate and its private key, to the configuration and returns
// the certificate's subject name.
func addClientCertFromBytes(cfg *tls.Config, data []byte, keyPasswd string) (string, error) {
	var currentBlock *pem.Block
	var certBlock, certDecodedBlock, keyBlock []byte

	remaining := data
	start := 0
	for {
		currentBlock, remaining = pem.Decode(remaining)
		if currentBlock == nil {
			break
		}

		if currentBlock.Type == "CERTIFICATE" {
			certBlock = data[start : len(data)-len(remaining)]
			certDecodedBlock = currentBlock.Bytes
			start += len(certBlock)
		} else if strings.HasSuffix(currentBlock.Type, "PRIVATE KEY") {
			if strings.Contains(currentBlock.Type, "ENCRYPTED") {
				if keyPasswd == "" {
					return "", fmt.Errorf("no password provided to decrypt private key")
				}

				// The pkcs8 package only handles the PKCS #5 v2.0 scheme.
				decrypted, err := pkcs8.ParsePKCS8PrivateKey(currentBlock.Bytes, []byte(keyPasswd))
				if err != nil {
					return "", err
				}
				keyBytes, err := x509.MarshalPKCS8PrivateKey(decrypted)
				if err != nil {
					return "", err
				}

				var encoded bytes.Buffer
				if err = pem.Encode(&encoded, &pem.Block{Type: "PRIVATE KEY", Bytes: keyBytes}); err != nil {
					return "", err
				}
				keyBlock = encoded.Bytes()
				start = len(data) - len(remaining)
			} else {
				keyBlock = data[start : len(data)-len(remaining)]
				start += len(keyBlock)
			}
		}
	}

	if len(certBlock) == 0 {
		return "", fmt.Errorf("failed to find CERTIFICATE")
	}
	if len(keyBlock) == 0 {
		return "", fmt.Errorf("failed to find PRIVATE KEY")
	}

	cert, err := tls.X509KeyPair(certBlock, keyBlock)
	if err != nil {
		return "", err
	}

	cfg.Certificates = append(cfg.Certificates, cert)

	// tls.X509KeyPair does not retain the parsed leaf.
	crt, err := x509.ParseCertificate(certDecodedBlock)
	if err != nil {
		return "", err
	}

	return crt.Subject.String(), nil
}

// create a username for x509 authentication from an x509 certificate subject.
func extractX509UsernameFromSubject(subject string) string {
	// the Go x509 package gives the subject with the pairs in the reverse order from what we want.
	pairs := strings.Split(subject, ",")
	for left, right := 0, len(pairs)-1; left < right; left, right = left+1, right-1 {
		pairs[left], pairs[right] = pairs[right], pairs[left]
	}

	return strings.Join(pairs, ",")
}

// addCACertsFromFile adds the root CA certificate and any intermediates in the
// same file to the configuration.
func addCACertsFromFile(cfg *tls.Config, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	if cfg.RootCAs == nil {
		cfg.RootCAs = x509.NewCertPool()
	}

	if !cfg.RootCAs.AppendCertsFromPEM(data) {
		return fmt.Errorf("SSL trusted server certificates file does not contain any valid certificates. File: `%v`", file)
	}
	return nil
}
