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

// Package sqlguard decides whether text is grammatically valid SQL.
//
// The decision is "parses", not "is free of injection": any statement the
// grammar accepts is reported safe, including destructive ones. Stacked
// statements are parsed one by one and every piece must parse.
//
// # Usage
//
//	if !sqlguard.IsSafe(input) {
//	    // reject
//	}
//
//	result := sqlguard.Check(input)
//	log.Printf("statements=%d err=%v", result.Statements, result.Err)
//
// The grammar is github.com/xwb1989/sqlparser. Its parse tables are
// package-level and immutable, so concurrent calls need no locking.
package sqlguard
