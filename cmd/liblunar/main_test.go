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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kazooki123/lunardb-security/boundary"
)

// withText passes a caller-owned C copy of s to fn and frees it afterwards.
func withText(t *testing.T, s string, fn func(p *cChar)) {
	t.Helper()
	p := cString(s)
	defer release_text(p)
	fn(p)
}

func TestGoBytes(t *testing.T) {
	assert.Nil(t, goBytes(nullText()))

	withText(t, "", func(p *cChar) {
		b := goBytes(p)
		assert.NotNil(t, b)
		assert.Len(t, b, 0)
	})

	withText(t, "héllo", func(p *cChar) {
		assert.Equal(t, []byte("héllo"), goBytes(p))
	})
}

func TestGoBytesRejectsUnaddressableLength(t *testing.T) {
	saved := maxTextLen
	maxTextLen = 3
	defer func() { maxTextLen = saved }()

	withText(t, "abcd", func(p *cChar) {
		_, err := boundary.DecodeText(goBytes(p))
		assert.ErrorIs(t, err, boundary.ErrInvalidEncoding)
		assert.False(t, bool(check_sql_safety(p)))
	})
	withText(t, "abc", func(p *cChar) {
		assert.Equal(t, []byte("abc"), goBytes(p))
	})
}

func TestSanitizeReturnsOwnedText(t *testing.T) {
	withText(t, "<b>'hi'</b>", func(p *cChar) {
		out := sanitize(p)
		require.NotNil(t, out)
		defer release_text(out)
		assert.Equal(t, "&lt;b&gt;&#x27;hi&#x27;&lt;/b&gt;", string(goBytes(out)))
	})

	assert.Nil(t, sanitize(nullText()))
}

func TestReleaseTextNull(t *testing.T) {
	assert.NotPanics(t, func() { release_text(nullText()) })
}

func TestChecksAtBoundary(t *testing.T) {
	withText(t, "SELECT * FROM users", func(p *cChar) {
		assert.True(t, bool(check_sql_safety(p)))
	})
	withText(t, `{"$where":"1"}`, func(p *cChar) {
		assert.False(t, bool(check_document_query_safety(p)))
	})
	withText(t, `{"name":"alice"}`, func(p *cChar) {
		assert.True(t, bool(check_document_query_safety(p)))
	})

	assert.False(t, bool(check_sql_safety(nullText())))
	assert.False(t, bool(check_document_query_safety(nullText())))
	assert.False(t, bool(validate_input(nullText())))
}

func TestStatementAtBoundary(t *testing.T) {
	assert.Zero(t, create_statement(nullText()))
	assert.Nil(t, execute_statement(0))

	query := cString("SELECT * FROM t WHERE a = ? AND b = ?")
	h := create_statement(query)
	release_text(query)
	require.NotZero(t, h)

	withText(t, "<x>", func(p *cChar) { bind_parameter(h, p) })
	bind_parameter(h, nullText())

	out := execute_statement(h)
	require.NotNil(t, out)
	assert.Equal(t, "SELECT * FROM t WHERE a = &lt;x&gt; AND b = ?", string(goBytes(out)))
	release_text(out)

	destroy_statement(h)
	assert.Nil(t, execute_statement(h))
	assert.NotPanics(t, func() { destroy_statement(h) })
}

func TestTrackerAtBoundary(t *testing.T) {
	assert.Zero(t, create_tracker(0))

	h := create_tracker(2)
	require.NotZero(t, h)

	admit := func(id string) (ok bool) {
		withText(t, id, func(p *cChar) { ok = bool(check_admission(h, p)) })
		return ok
	}
	assert.True(t, admit("A"))
	assert.True(t, admit("B"))
	assert.False(t, admit("C"))
	assert.True(t, admit("A"))
	assert.False(t, bool(check_admission(h, nullText())))

	destroy_tracker(h)
	assert.False(t, admit("A"))
	assert.NotPanics(t, func() { destroy_tracker(h) })
}

func TestRecoverBoundaryKeepsZeroResults(t *testing.T) {
	failing := func() (ok bool, out *cChar, h uintptr) {
		defer recoverBoundary("test")
		panic("boom")
	}

	ok, out, h := failing()
	assert.False(t, ok)
	assert.Nil(t, out)
	assert.Zero(t, h)
}
