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

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Kazooki123/lunardb-security/guard/docguard"
	"github.com/Kazooki123/lunardb-security/guard/sqlguard"
	"github.com/Kazooki123/lunardb-security/guard/validate"
)

func validateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <text>",
		Short: "Run the full validation pipeline",
		Long: `Run every check on text and print the first one that fails.

Exits 1 when the text is rejected.

Examples:
  lunarsec validate "SELECT name FROM users WHERE id = 1"
  LUNARSEC_DOCUMENT_MODE=structured lunarsec validate "SELECT 1"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			result := validate.FromConfig(cfg).Evaluate(args[0])
			if !result.Allowed {
				fmt.Fprintf(cmd.OutOrStdout(), "rejected: %s\n", result.Reason)
				return errRejected
			}
			fmt.Fprintln(cmd.OutOrStdout(), "accepted")
			return nil
		},
	}
}

func sqlCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sql <text>",
		Short: "Check whether text parses as SQL",
		Long: `Parse text as one or more SQL statements.

Text that parses is reported safe. Exits 1 otherwise.

Examples:
  lunarsec sql "SELECT * FROM users"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := sqlguard.Check(args[0])
			if !result.Safe {
				fmt.Fprintf(cmd.OutOrStdout(), "unsafe: %v\n", result.Err)
				return errRejected
			}
			fmt.Fprintf(cmd.OutOrStdout(), "safe: %d statement(s)", result.Statements)
			if len(result.Kinds) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), " [%s]", strings.Join(result.Kinds, ", "))
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}

func documentCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "document <json>",
		Short: "Check a JSON document query for operator keys",
		Long: `Parse text as JSON and reject it if any object key at any depth starts
with the reserved operator marker.

Examples:
  lunarsec document '{"name": "alice"}'
  lunarsec document '{"password": {"$ne": null}}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			result := docguard.New(cfg.Document.OperatorMarker).Check(args[0])
			if !result.Safe {
				if result.Path != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "unsafe: %v at %s\n", result.Err, result.Path)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "unsafe: %v\n", result.Err)
				}
				return errRejected
			}
			fmt.Fprintln(cmd.OutOrStdout(), "safe")
			return nil
		},
	}
}

func sanitizeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sanitize <text>",
		Short: "Neutralize markup characters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, _, err := opts.engine()
			if err != nil {
				return err
			}
			out, ok := engine.Sanitize([]byte(args[0]))
			if !ok {
				return fmt.Errorf("text is not valid UTF-8")
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func filterCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "filter <json>",
		Short: "Vet a document query and print it as a BSON filter",
		Long: `Vet a JSON object with the document check, then print the ordered BSON
filter it becomes as relaxed Extended JSON.

Examples:
  lunarsec filter '{"name": "alice", "age": 30}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			out, err := docguard.New(cfg.Document.OperatorMarker).FilterExtJSON(args[0])
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "unsafe: %v\n", err)
				return errRejected
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
