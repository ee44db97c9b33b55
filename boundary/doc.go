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
Package boundary is the Go half of the foreign-call surface.

The C entry points in cmd/liblunar read caller memory into byte slices and
hand them here. Everything past that point is ordinary Go and is tested
without cgo.

# Text

A nil slice stands for a NULL pointer. DecodeText turns raw bytes into an
owned, UTF-8-validated string or fails with ErrNullPointer or
ErrInvalidEncoding. Neither error ever reaches the caller: boolean
operations return false and string operations report no result.

# Handles

Statement templates and admission trackers live in an arena owned by the
Engine and are exposed only as non-zero Handle tokens. Create* inserts,
Destroy* removes. A token of the wrong kind, an unknown token and the zero
token all behave as invalid.

Destroying a handle twice or using it after destruction is a caller
contract violation. The arena happens to ignore unknown tokens, but tokens
are never reused, so no guarantee beyond that is made.

# Owned strings

Sanitize and ExecuteStatement return Go strings. The cgo layer copies them
into malloc'd buffers the caller must hand back through release_text.

# Concurrency

The arena is lock-protected, so distinct handles may be used from
different threads. A single handle must not be mutated concurrently.
*/
package boundary
