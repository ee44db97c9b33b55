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

/*
Package logger provides structured JSON logging for the lunardb-security
validation engine and its surfaces (shared library, sidecar, CLI).

# Overview

Entries are written as single-line JSON to stderr by default. The shared
library is linked into a host process that owns stdout, so the engine never
writes there.

Each log entry includes:
  - Timestamp (RFC3339Nano format)
  - Log level (DEBUG, INFO, WARN, ERROR)
  - Component name (liblunar, sidecar, lunarsec)
  - Instance ID and container name
  - Operation name (validate_input, create_statement, ...)
  - Request ID (sidecar requests only)
  - Custom fields

# Usage

	log := logger.New("liblunar")
	log.Debug("validate_input", "", "input rejected", map[string]interface{}{
	    "reason": "markup",
	})

# Levels

Entries below the logger's threshold are dropped before marshaling. The
threshold defaults to WARN and can be changed with SetLevel or the
LUNARSEC_LOG_LEVEL environment variable.

# Environment Variables

  - INSTANCE_ID: Deployment instance identifier
  - HOSTNAME: Container hostname (auto-detected)
  - LUNARSEC_LOG_LEVEL: Minimum level written (DEBUG, INFO, WARN, ERROR)

# Thread Safety

Logger instances are safe for concurrent use from multiple goroutines.
*/
package logger
