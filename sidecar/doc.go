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

// Package sidecar serves the validation engine over HTTP for hosts that
// cannot load the shared library.
//
// Every endpoint mirrors a boundary operation:
//
//	POST /v1/validate            {"text": ...}              -> {"safe": bool}
//	POST /v1/sql                 {"text": ...}              -> {"safe": bool}
//	POST /v1/document            {"text": ...}              -> {"safe": bool}
//	POST /v1/sanitize            {"text": ...}              -> {"text": ...}
//	POST /v1/statements          {"query": ..., "params": []} -> {"text": ...}
//	POST /v1/admission/{tracker} {"id": ...}                -> {"admitted": bool}
//	GET  /health
//	GET  /metrics
//
// A null "text" behaves like a NULL pointer at the C boundary. Named
// admission trackers are created on first use with the configured capacity
// and live as long as the server, in memory or in Redis when a client is
// supplied. At most MaxTrackers names exist; a request naming a new tracker
// past that limit gets 403. A Redis failure gets 503 and admits nothing. When a JWT secret is configured every endpoint except /health
// requires an HS256 bearer token.
package sidecar
