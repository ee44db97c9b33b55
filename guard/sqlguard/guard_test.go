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
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_ValidSQL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kinds []string
	}{
		{"simple select", "SELECT * FROM users", []string{"select"}},
		{"select with placeholder", "SELECT * FROM t WHERE id = ?", []string{"select"}},
		{"select with literal", "SELECT name FROM users WHERE id = 42", []string{"select"}},
		{"insert", "INSERT INTO users (name) VALUES ('bob')", []string{"insert"}},
		{"update", "UPDATE users SET name = 'x' WHERE id = 1", []string{"update"}},
		{"delete", "DELETE FROM users WHERE id = 1", []string{"delete"}},
		{"trailing semicolon", "SELECT 1 FROM dual;", []string{"select"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Check(tt.input)
			require.True(t, result.Safe, "parse error: %v", result.Err)
			assert.NoError(t, result.Err)
			assert.Equal(t, len(tt.kinds), result.Statements)
			assert.Equal(t, tt.kinds, result.Kinds)
			assert.True(t, IsSafe(tt.input))
		})
	}
}

func TestCheck_InvalidSQL(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"prose", "hello world"},
		{"truncated select", "SELECT * FROM"},
		{"tautology fragment", "1' OR '1'='1"},
		{"comment breakout", "' OR 1=1 --"},
		{"json document", `{"name": "bob"}`},
		{"valid then garbage", "SELECT * FROM users; this is not sql"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Check(tt.input)
			assert.False(t, result.Safe)
			assert.Error(t, result.Err)
			assert.False(t, IsSafe(tt.input))
		})
	}
}

// The guard answers "does this parse", not "is this benign". A stacked
// destructive statement is well-formed SQL and is therefore accepted.
func TestCheck_AcceptsWellFormedDestructiveSQL(t *testing.T) {
	input := "SELECT * FROM users; DROP TABLE users;"

	result := Check(input)

	require.True(t, result.Safe, "parse error: %v", result.Err)
	assert.Equal(t, 2, result.Statements)
	assert.Equal(t, []string{"select", "ddl"}, result.Kinds)
}

func TestCheck_Blank(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t"} {
		result := Check(in)
		assert.True(t, result.Safe, "input %q", in)
		assert.Zero(t, result.Statements)
	}
}

func TestCheck_ErrorNamesStatement(t *testing.T) {
	result := Check("SELECT 1 FROM dual; SELEC 2")
	require.False(t, result.Safe)
	assert.True(t, strings.HasPrefix(result.Err.Error(), "statement 2:"), result.Err.Error())
	assert.Equal(t, 1, result.Statements)
}

func TestCheck_ConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if !IsSafe("SELECT id FROM users WHERE id = 1") {
					t.Error("expected valid SQL to parse")
					return
				}
				if IsSafe("not sql at all") {
					t.Error("expected prose to fail")
					return
				}
			}
		}()
	}
	wg.Wait()
}
