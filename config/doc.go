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

// Package config holds the runtime configuration shared by the shared
// library, the HTTP sidecar and the lunarsec CLI.
//
// Configuration is resolved in three layers:
//
//  1. Default() - built-in limits (1000 byte inputs and queries, "?" placeholders,
//     "$" operator marker, entity-encoding sanitizer).
//  2. An optional YAML file named by LUNARSEC_CONFIG. ${VAR} and
//     ${VAR:-default} references are expanded before parsing.
//  3. LUNARSEC_* environment variables.
//
// Example file:
//
//	version: "1"
//	validation:
//	  max_input_length: 1000
//	  document_mode: strict
//	statement:
//	  max_query_length: 1000
//	  placeholder: "?"
//	document:
//	  operator_marker: "$"
//	sanitize:
//	  mode: encode
//	logging:
//	  level: WARN
//	sidecar:
//	  addr: ":8089"
//	  jwt_secret: ${LUNARSEC_JWT_SECRET}
//	  allowed_origins: ["*"]
//	  tracker_capacity: 100
//	redis:
//	  url: ""
package config
