// Copyright (c) 2024 The hwsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/hwsuite/walletpolicy/wire"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultPolicyVersion = uint(wire.WalletPolicyV2)
)

// config defines the configuration options for policytool.
//
// See loadConfig for details on the configuration load process.
type config struct {
	Name          string   `short:"n" long:"name" description:"Wallet name to register the policy under (max 16 characters)"`
	Keys          []string `short:"k" long:"key" description:"Key information for one @i placeholder, in placeholder order -- May be specified multiple times"`
	PolicyVersion uint     `long:"policyversion" description:"Wallet policy record version (1 carries the template inline, 2 commits to its hash)"`
	Verbose       bool     `short:"v" long:"verbose" description:"Log parsing progress to stdout"`
}

// usageError indicates the command line arguments were malformed, as opposed
// to a template or key that failed to parse.
type usageError string

func (e usageError) Error() string {
	return string(e)
}

// loadConfig initializes and parses the config using command line options.
func loadConfig() (*config, []string, error) {
	cfg := config{
		PolicyVersion: defaultPolicyVersion,
	}
	parser := flags.NewParser(&cfg, flags.Default)
	parser.Usage = "[OPTIONS] TEMPLATE"
	remainingArgs, err := parser.Parse()
	if err != nil {
		return nil, nil, err
	}

	if len(remainingArgs) != 1 {
		return nil, nil, usageError(
			"exactly one descriptor template argument is required")
	}
	if cfg.PolicyVersion != uint(wire.WalletPolicyV1) &&
		cfg.PolicyVersion != uint(wire.WalletPolicyV2) {

		return nil, nil, usageError(fmt.Sprintf(
			"unknown wallet policy version %d", cfg.PolicyVersion))
	}
	if len(cfg.Name) > wire.MaxNameLength {
		return nil, nil, usageError(fmt.Sprintf(
			"wallet name is longer than %d characters",
			wire.MaxNameLength))
	}

	return &cfg, remainingArgs, nil
}
