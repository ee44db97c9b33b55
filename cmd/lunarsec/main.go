// Copyright 2025 The LunarDB Security Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main implements the lunarsec CLI: one-shot input checks, the
// statement and admission helpers, and the HTTP sidecar.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Kazooki123/lunardb-security/boundary"
	"github.com/Kazooki123/lunardb-security/config"
)

var version = "0.1.0"

// errRejected makes the process exit 1 without printing a usage error.
var errRejected = errors.New("rejected")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errRejected) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "lunarsec",
		Short: "Input validation toolkit",
		Long: `lunarsec checks untrusted text before it reaches SQL, document-store or
markup contexts. The same checks are exported from liblunar for C callers.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"YAML configuration file (default $"+config.EnvConfigFile+")")

	rootCmd.AddCommand(
		validateCmd(opts),
		sqlCmd(opts),
		documentCmd(opts),
		sanitizeCmd(opts),
		statementCmd(opts),
		admitCmd(opts),
		filterCmd(opts),
		serveCmd(opts),
	)
	return rootCmd
}

// load resolves configuration from --config or the environment.
func (o *rootOptions) load() (config.Config, error) {
	if o.configPath == "" {
		return config.Load()
	}
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func (o *rootOptions) engine() (*boundary.Engine, config.Config, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, config.Config{}, err
	}
	return boundary.New(cfg), cfg, nil
}
