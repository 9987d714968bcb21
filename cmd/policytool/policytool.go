// Copyright (c) 2024 The hwsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// policytool parses a wallet policy descriptor template, checks it against
// the supplied key information vector, and prints the registration record
// and wallet policy id a signing device would compute for it.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"

	"github.com/btcsuite/btclog"
	"github.com/hwsuite/walletpolicy/policy"
	"github.com/hwsuite/walletpolicy/wire"
)

var cfg *config

// realMain is the real main function for the utility.  It is necessary to
// work around the fact that deferred functions do not run when os.Exit() is
// called.
func realMain() error {
	tcfg, remainingArgs, err := loadConfig()
	if err != nil {
		return err
	}
	cfg = tcfg
	template := remainingArgs[0]

	// Setup logging.
	if cfg.Verbose {
		backendLogger := btclog.NewBackend(os.Stdout)
		defer os.Stdout.Sync()
		logger := backendLogger.Logger("PLCY")
		logger.SetLevel(btclog.LevelTrace)
		policy.UseLogger(logger)
	}

	// Parse the descriptor template.
	arena := policy.NewArena(0)
	root, err := policy.Parse(arena, template)
	if err != nil {
		return fmt.Errorf("invalid descriptor template: %v", err)
	}
	fmt.Printf("template: %s\n", policy.Format(arena, root))
	if t := arena.Node(root).Type; t.Miniscript {
		fmt.Printf("type:     %s\n", t)
	}

	// Every placeholder must have a corresponding key and every key must
	// parse.
	if maxIdx, ok := policy.MaxKeyIndex(arena, root); ok {
		if uint64(maxIdx) >= uint64(len(cfg.Keys)) {
			return fmt.Errorf("template references key @%d but "+
				"only %d keys were given", maxIdx, len(cfg.Keys))
		}
	}
	for i, keyInfo := range cfg.Keys {
		info, err := policy.ParseKeyInfo(keyInfo)
		if err != nil {
			return fmt.Errorf("invalid key @%d: %v", i, err)
		}
		if _, err := info.ExtendedKey(); err != nil {
			return fmt.Errorf("invalid key @%d: %v", i, err)
		}
		if info.HasOrigin {
			fmt.Printf("key @%d:   fingerprint %s, %d derivation "+
				"steps\n", i,
				hex.EncodeToString(info.MasterFingerprint[:]),
				len(info.Steps))
		} else {
			fmt.Printf("key @%d:   no key origin\n", i)
		}
	}

	// Assemble the registration record and compute its id.
	wp, err := wire.NewWalletPolicy(uint8(cfg.PolicyVersion), cfg.Name,
		template, uint64(len(cfg.Keys)), wire.KeysMerkleRoot(cfg.Keys))
	if err != nil {
		return err
	}
	id, err := wp.ID()
	if err != nil {
		return err
	}
	fmt.Printf("record:   %d bytes (version %d)\n", wp.SerializeSize(),
		wp.Version)
	fmt.Printf("id:       %s\n", hex.EncodeToString(id[:]))
	return nil
}

func main() {
	if err := realMain(); err != nil {
		// The flags package already prints help output.
		if _, ok := err.(*flags.Error); !ok {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
