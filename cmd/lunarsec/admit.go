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
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Kazooki123/lunardb-security/guard/admission"
)

func admitCmd(opts *rootOptions) *cobra.Command {
	var capacity int
	var redisURL string
	var name string

	cmd := &cobra.Command{
		Use:   "admit <id>...",
		Short: "Run identifiers through an admission tracker",
		Long: `Admit identifiers in order into a tracker that accepts at most --capacity
distinct ids, printing the decision for each. Ids already admitted are
always accepted again.

With --redis the tracker is a Redis set shared by every process using the
same --name.

Examples:
  lunarsec admit --capacity 2 alice bob carol alice
  lunarsec admit --capacity 100 --redis redis://localhost:6379/0 --name login alice`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if capacity <= 0 {
				return fmt.Errorf("--capacity must be positive")
			}
			engine, cfg, err := opts.engine()
			if err != nil {
				return err
			}
			if redisURL == "" {
				redisURL = cfg.Redis.URL
			}

			var check func(id string) bool
			if redisURL != "" {
				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				defer cancel()

				client, err := admission.ConnectRedis(ctx, redisURL)
				if err != nil {
					return err
				}
				defer client.Close()

				if name == "" {
					name = uuid.New().String()
				}
				tracker := admission.NewRedisTracker(client, name, capacity)
				fmt.Fprintf(cmd.ErrOrStderr(), "using redis key %s\n", tracker.Key())
				check = func(id string) bool { return tracker.Check(ctx, id) }
			} else {
				h := engine.CreateTracker(uint64(capacity))
				defer engine.DestroyTracker(h)
				check = func(id string) bool { return engine.CheckAdmission(h, []byte(id)) }
			}

			for _, id := range args {
				decision := "rejected"
				if check(id) {
					decision = "admitted"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, decision)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&capacity, "capacity", "n", 0, "Maximum number of distinct ids (required)")
	cmd.Flags().StringVar(&redisURL, "redis", "", "Redis URL for a shared tracker (default $"+"LUNARSEC_REDIS_URL)")
	cmd.Flags().StringVar(&name, "name", "", "Shared tracker name (default: random)")

	return cmd
}
