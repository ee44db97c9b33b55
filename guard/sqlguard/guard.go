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

package sqlguard

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xwb1989/sqlparser"
)

// ErrTooManyStatements is reported when the tokenizer stops making progress.
var ErrTooManyStatements = errors.New("statement limit exceeded")

// Result is the outcome of a grammar check.
type Result struct {
	// Safe is true when every statement in the text parsed.
	Safe bool `json:"safe"`

	// Statements is the number of statements parsed before stopping.
	Statements int `json:"statements"`

	// Kinds lists the statement kinds in order (select, insert, ddl, ...).
	Kinds []string `json:"kinds,omitempty"`

	// Err is the parse error when Safe is false.
	Err error `json:"-"`
}

// IsSafe reports whether text parses as SQL.
func IsSafe(text string) bool {
	return Check(text).Safe
}

// Check parses text statement by statement.
// Empty or blank text is an empty statement list and is safe.
func Check(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Safe: true}
	}

	tokens := sqlparser.NewTokenizer(strings.NewReader(text))

	var result Result
	// Each successful ParseNext consumes at least one byte.
	limit := len(text) + 1
	for i := 0; ; i++ {
		if i > limit {
			result.Err = ErrTooManyStatements
			return result
		}
		stmt, err := sqlparser.ParseNext(tokens)
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Err = fmt.Errorf("statement %d: %w", result.Statements+1, err)
			return result
		}
		if stmt == nil {
			continue
		}
		result.Statements++
		result.Kinds = append(result.Kinds, kindOf(stmt))
	}

	result.Safe = true
	return result
}

// kindOf names a parsed statement for logging.
func kindOf(stmt sqlparser.Statement) string {
	switch s := stmt.(type) {
	case *sqlparser.Select, *sqlparser.Union, *sqlparser.ParenSelect:
		return "select"
	case *sqlparser.Insert:
		if s.Action == sqlparser.ReplaceStr {
			return "replace"
		}
		return "insert"
	case *sqlparser.Update:
		return "update"
	case *sqlparser.Delete:
		return "delete"
	case *sqlparser.DDL:
		return "ddl"
	case *sqlparser.Set:
		return "set"
	case *sqlparser.Show:
		return "show"
	case *sqlparser.Use:
		return "use"
	case *sqlparser.Begin, *sqlparser.Commit, *sqlparser.Rollback:
		return "transaction"
	default:
		return "other"
	}
}
