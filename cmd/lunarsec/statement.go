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

	"github.com/spf13/cobra"
)

func statementCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "statement <query> [params...]",
		Short: "Bind parameters into a query template",
		Long: `Build a template, bind each parameter in order and print the result.

Parameters are sanitized before binding. Placeholders without a parameter
are left in place.

Examples:
  lunarsec statement "SELECT * FROM users WHERE id = ? AND name = ?" 42 "<bob>"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, _, err := opts.engine()
			if err != nil {
				return err
			}
			h := engine.CreateStatement([]byte(args[0]))
			if h == 0 {
				return fmt.Errorf("invalid query: must be non-empty and at most %d bytes",
					engine.Config().Statement.MaxQueryLength)
			}
			defer engine.DestroyStatement(h)

			for _, p := range args[1:] {
				engine.BindParameter(h, []byte(p))
			}
			out, _ := engine.ExecuteStatement(h)
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
