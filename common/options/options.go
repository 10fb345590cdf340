// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package options implements command-line options that are shared by the
// tools in this repository.
package options

import (
	"fmt"
	"net"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	flags "github.com/jessevdk/go-flags"
	"github.com/oramatt/extract-schemas/common/log"
	"github.com/oramatt/extract-schemas/common/password"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/x/mongo/driver/connstring"
	"gopkg.in/yaml.v2"
)

const (
	DefaultHost = "localhost"
	DefaultPort = "23456"
)

const IncompatibleArgsErrorFormat = "illegal argument combination: cannot specify %s and --uri"

// ToolOptions holds the option groups every tool registers: help, version,
// verbosity, connection, TLS and authentication settings.
type ToolOptions struct {

	// The name of the tool
	AppName string

	// The version of the tool
	VersionStr string

	// The git commit reference of the tool
	GitCommit string

	// Sub-option types
	*URI
	*General
	*Verbosity
	*Connection
	*SSL
	*Auth

	// for caching the parser
	parser *flags.Parser
}

// Struct holding generic options
type General struct {
	Help       bool   `long:"help" description:"print usage"`
	Version    bool   `long:"version" description:"print the tool version and exit"`
	ConfigPath string `long:"config" value-name:"<filename>" description:"path to a YAML configuration file holding password, uri and sslPEMKeyPassword"`
}

// Struct holding verbosity-related options
type Verbosity struct {
	SetVerbosity    func(string) `short:"v" long:"verbose" value-name:"<level>" description:"more detailed log output (include multiple times for more verbosity, e.g. -vvv, or specify a numeric value, e.g. --verbose=N)" optional:"true" optional-value:""`
	Quiet           bool         `long:"quiet" description:"hide all log output"`
	VLevel          int          `no-flag:"true"`
	VerbosityParsed bool         `no-flag:"true"`
}

func (v Verbosity) Level() int {
	return v.VLevel
}

func (v Verbosity) IsQuiet() bool {
	return v.Quiet
}

type URI struct {
	ConnectionString string `long:"uri" value-name:"mongodb-uri" description:"mongodb uri connection string; overrides --host and --port"`
}

// Struct holding connection-related options
type Connection struct {
	Host    string `long:"host" value-name:"<hostname>" default:"localhost" description:"target server to connect to (setname/host1,host2 for replica sets; a host may carry its own :port)"`
	Port    string `long:"port" value-name:"<port>" default:"23456" description:"port of the target server"`
	Timeout int    `long:"dialTimeout" default:"3" description:"dial and server selection timeout in seconds"`
}

// Struct holding ssl-related options
type SSL struct {
	UseSSL            bool   `long:"ssl" description:"connect to a server that has TLS enabled"`
	SSLCAFile         string `long:"sslCAFile" value-name:"<filename>" description:"the .pem file containing the root certificate chain from the certificate authority"`
	SSLPEMKeyFile     string `long:"sslPEMKeyFile" value-name:"<filename>" description:"the .pem file containing the certificate and key"`
	SSLPEMKeyPassword string `long:"sslPEMKeyPassword" value-name:"<password>" description:"the password to decrypt the sslPEMKeyFile, if necessary"`
	TLSInsecure       bool   `long:"tlsInsecure" description:"bypass the validation for server's certificate chain and host name"`
}

// Struct holding auth-related options
type Auth struct {
	Username  string `short:"u" value-name:"<username>" long:"username" description:"username for authentication"`
	Password  string `short:"p" value-name:"<password>" long:"password" description:"password for authentication"`
	Source    string `long:"authenticationDatabase" value-name:"<database-name>" description:"database that holds the user's credentials"`
	Mechanism string `long:"authenticationMechanism" value-name:"<mechanism>" description:"authentication mechanism to use"`
}

// ExtraOptions is implemented by tool-specific option groups.
type ExtraOptions interface {
	// Name specifying what type of options these are
	Name() string
}

func parseVal(val string) int {
	idx := strings.Index(val, "=")
	ret, err := strconv.Atoi(val[idx+1:])
	if err != nil {
		panic(fmt.Errorf("value was not a valid integer: %v", err))
	}
	return ret
}

// New returns tool options with every shared group registered.
func New(appName, versionStr, gitCommit, usageStr string) *ToolOptions {
	opts := &ToolOptions{
		AppName:    appName,
		VersionStr: versionStr,
		GitCommit:  gitCommit,

		General:    &General{},
		Verbosity:  &Verbosity{},
		Connection: &Connection{},
		URI:        &URI{},
		SSL:        &SSL{},
		Auth:       &Auth{},
		parser: flags.NewNamedParser(
			fmt.Sprintf("%v %v", appName, usageStr), flags.None),
	}

	// Called when -v or --verbose is parsed
	opts.SetVerbosity = func(val string) {
		// Reset verbosity level when we call ParseArgs again and see the verbosity flag
		if opts.VLevel != 0 && opts.VerbosityParsed {
			opts.VerbosityParsed = false
			opts.VLevel = 0
		}

		if i, err := strconv.Atoi(val); err == nil {
			opts.VLevel = opts.VLevel + i // -v=N or --verbose=N
		} else if matched, _ := regexp.MatchString(`^v+$`, val); matched {
			opts.VLevel = opts.VLevel + len(val) + 1 // Handles the -vvv cases
		} else if matched, _ := regexp.MatchString(`^v+=[0-9]$`, val); matched {
			opts.VLevel = parseVal(val) // I.e. -vv=3
		} else if val == "" {
			opts.VLevel = opts.VLevel + 1 // Increment for every occurrence of flag
		} else {
			log.Logvf(log.Always, "Invalid verbosity value given")
			os.Exit(-1)
		}
	}

	groups := []struct {
		name string
		data interface{}
	}{
		{"general", opts.General},
		{"verbosity", opts.Verbosity},
		{"connection", opts.Connection},
		{"ssl", opts.SSL},
		{"authentication", opts.Auth},
		{"uri", opts.URI},
	}
	for _, group := range groups {
		if _, err := opts.parser.AddGroup(group.name+" options", "", group.data); err != nil {
			panic(fmt.Errorf("couldn't register %v options: %v", group.name, err))
		}
	}
	return opts
}

// AddOptions registers an additional options group to this instance
func (opts *ToolOptions) AddOptions(extraOpts ExtraOptions) {
	_, err := opts.parser.AddGroup(extraOpts.Name()+" options", "", extraOpts)
	if err != nil {
		panic(fmt.Sprintf("error setting command line options for %v: %v",
			extraOpts.Name(), err))
	}
}

// Print the usage message for the tool to stdout.  Returns whether or not the
// help flag is specified.
func (opts *ToolOptions) PrintHelp(force bool) bool {
	if opts.Help || force {
		opts.parser.WriteHelp(os.Stdout)
	}
	return opts.Help
}

// Print the tool version to stdout.  Returns whether or not the version flag
// is specified.
func (opts *ToolOptions) PrintVersion() bool {
	if opts.Version {
		fmt.Printf("%v version: %v\n", opts.AppName, opts.VersionStr)
		fmt.Printf("git version: %v\n", opts.GitCommit)
		fmt.Printf("Go version: %v\n", runtime.Version())
		fmt.Printf("   os: %v\n", runtime.GOOS)
		fmt.Printf("   arch: %v\n", runtime.GOARCH)
	}
	return opts.Version
}

func (auth *Auth) IsSet() bool {
	return auth != nil && auth.Username != ""
}

func (auth *Auth) RequiresExternalDB() bool {
	return auth.Mechanism == "GSSAPI" || auth.Mechanism == "PLAIN" || auth.Mechanism == "MONGODB-X509"
}

// ShouldAskForPassword returns true if the user specifies a username flag
// but no password, and the authentication mechanism requires a password.
func (auth *Auth) ShouldAskForPassword() bool {
	return auth.Username != "" && auth.Password == "" &&
		!(auth.Mechanism == "MONGODB-X509" || auth.Mechanism == "GSSAPI")
}

// GetAuthenticationDatabase returns --authenticationDatabase if set, or
// $external for mechanisms that authenticate outside the server.
func (opts *ToolOptions) GetAuthenticationDatabase() string {
	if opts.Auth.Source != "" {
		return opts.Auth.Source
	} else if opts.Auth.RequiresExternalDB() {
		return "$external"
	}
	return ""
}

// CallArgParser runs the flag parser alone, without config file handling or
// normalization.
func (opts *ToolOptions) CallArgParser(args []string) ([]string, error) {
	args, err := opts.parser.ParseArgs(args)
	if err != nil {
		return []string{}, err
	}

	// Set VerbosityParsed flag to make sure we reset verbosity level when we call ParseArgs again
	if opts.VLevel != 0 && !opts.VerbosityParsed {
		opts.VerbosityParsed = true
	}

	return args, nil
}

// ParseArgs parses a potential config file followed by the command line args, overriding
// any values in the config file. Returns any extra args not accounted for by parsing,
// as well as an error if the parsing returns an error.
func (opts *ToolOptions) ParseArgs(args []string) ([]string, error) {
	if err := opts.ParseConfigFile(args); err != nil {
		return []string{}, err
	}

	args, err := opts.CallArgParser(args)
	if err != nil {
		return []string{}, err
	}

	if err = opts.NormalizeOptionsAndURI(); err != nil {
		return []string{}, err
	}

	return args, nil
}

// ParseConfigFile looks for a --config option in args. If found, the YAML file
// it names may supply password, uri and sslPEMKeyPassword; values given on the
// command line still win because the arguments are parsed again afterwards.
func (opts *ToolOptions) ParseConfigFile(args []string) error {
	// Get config file path from the arguments, if specified.
	_, err := opts.CallArgParser(args)
	if err != nil {
		return err
	}

	if opts.General.ConfigPath == "" {
		return nil
	}

	configBytes, err := os.ReadFile(opts.General.ConfigPath)
	if err != nil {
		return errors.Wrapf(err, "error opening file with --config")
	}

	var config struct {
		Password          string `yaml:"password"`
		ConnectionString  string `yaml:"uri"`
		SSLPEMKeyPassword string `yaml:"sslPEMKeyPassword"`
	}
	err = yaml.UnmarshalStrict(configBytes, &config)
	if err != nil {
		return errors.Wrapf(err, "error parsing config file %s", opts.General.ConfigPath)
	}

	opts.Auth.Password = config.Password
	opts.URI.ConnectionString = config.ConnectionString
	opts.SSL.SSLPEMKeyPassword = config.SSLPEMKeyPassword

	return nil
}

// NormalizeOptionsAndURI fills in defaults, validates a user supplied URI and
// prompts for a password when a username was given without one.
func (opts *ToolOptions) NormalizeOptionsAndURI() error {
	if opts.Connection == nil {
		opts.Connection = &Connection{}
	}
	if opts.Host == "" {
		opts.Host = DefaultHost
	}
	if opts.Port == "" {
		opts.Port = DefaultPort
	}
	if opts.URI == nil {
		opts.URI = &URI{}
	}
	if opts.Auth == nil {
		opts.Auth = &Auth{}
	}

	if opts.URI.ConnectionString == "" {
		if _, hosts := splitHostList(opts.Host); len(hosts) == 0 {
			return fmt.Errorf("error parsing --host %q: no host given", opts.Host)
		}
		if _, err := connstring.ParseAndValidate(opts.ConnectionURI()); err != nil {
			return errors.Wrapf(err, "error parsing --host %q", opts.Host)
		}
	}

	if opts.URI.ConnectionString != "" {
		cs, err := connstring.ParseAndValidate(opts.URI.ConnectionString)
		if err != nil {
			return errors.Wrapf(err, "error parsing URI")
		}
		if cs.UsernameSet && opts.Auth.Username != "" && cs.Username != opts.Auth.Username {
			return fmt.Errorf(IncompatibleArgsErrorFormat, "a different --username")
		}
		if cs.Password != "" {
			log.Logv(log.Always, "WARNING: a password in the connection string may be visible "+
				"to other users through process listings; consider --config instead")
		}
	}

	if opts.Auth.ShouldAskForPassword() {
		pass, err := password.Prompt(opts.Auth.Username)
		if err != nil {
			return fmt.Errorf("error reading password: %v", err)
		}
		opts.Auth.Password = pass
	}

	return nil
}

// ConnectionURI returns the connection string the client should use: --uri
// when given, otherwise one built from --host and --port. Credentials are
// never embedded; they travel separately as a driver credential.
func (opts *ToolOptions) ConnectionURI() string {
	if opts.URI != nil && opts.URI.ConnectionString != "" {
		return opts.URI.ConnectionString
	}
	host, port := DefaultHost, DefaultPort
	if opts.Connection != nil {
		if opts.Host != "" {
			host = opts.Host
		}
		if opts.Port != "" {
			port = opts.Port
		}
	}
	setName, hosts := splitHostList(host)
	for i, h := range hosts {
		if !hasPort(h) {
			hosts[i] = net.JoinHostPort(h, port)
		}
	}
	uri := "mongodb://" + strings.Join(hosts, ",") + "/"
	if setName != "" {
		uri += "?replicaSet=" + setName
	}
	return uri
}

// splitHostList splits a --host value of the form [setName/]host[:port][,host[:port]...].
func splitHostList(host string) (string, []string) {
	var setName string
	if i := strings.Index(host, "/"); i >= 0 {
		setName, host = host[:i], host[i+1:]
	}
	var hosts []string
	for _, h := range strings.Split(host, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return setName, hosts
}

// hasPort reports whether h already names a port. A bare IPv6 address such
// as ::1 does not.
func hasPort(h string) bool {
	_, _, err := net.SplitHostPort(h)
	return err == nil
}
