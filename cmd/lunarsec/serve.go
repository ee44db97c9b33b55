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
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Kazooki123/lunardb-security/guard/admission"
	"github.com/Kazooki123/lunardb-security/sidecar"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP sidecar",
		Long: `Serve the validation engine over HTTP until interrupted.

Examples:
  lunarsec serve --addr :8089
  LUNARSEC_JWT_SECRET=secret lunarsec serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cfg, err := opts.engine()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Sidecar.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var serverOpts []sidecar.Option
			if cfg.Redis.URL != "" {
				client, err := admission.ConnectRedis(ctx, cfg.Redis.URL)
				if err != nil {
					return err
				}
				defer client.Close()
				serverOpts = append(serverOpts, sidecar.WithRedis(client))
			}

			return sidecar.New(engine, cfg.Sidecar, serverOpts...).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from configuration)")
	return cmd
}
