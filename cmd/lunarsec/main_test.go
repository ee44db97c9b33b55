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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LUNARSEC_CONFIG", "")
	t.Setenv("LUNARSEC_REDIS_URL", "")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	out, err := run(t, "validate", "SELECT 1")
	assert.ErrorIs(t, err, errRejected)
	assert.Equal(t, "rejected: document\n", out)

	t.Setenv("LUNARSEC_DOCUMENT_MODE", "structured")
	out, err = run(t, "validate", "SELECT name FROM users WHERE id = 1")
	require.NoError(t, err)
	assert.Equal(t, "accepted\n", out)
}

func TestSQLCommand(t *testing.T) {
	out, err := run(t, "sql", "SELECT * FROM users; DROP TABLE users;")
	require.NoError(t, err)
	assert.Equal(t, "safe: 2 statement(s) [select, ddl]\n", out)

	out, err = run(t, "sql", "hello world")
	assert.ErrorIs(t, err, errRejected)
	assert.Contains(t, out, "unsafe:")
}

func TestDocumentCommand(t *testing.T) {
	out, err := run(t, "document", `{"name":"alice"}`)
	require.NoError(t, err)
	assert.Equal(t, "safe\n", out)

	out, err = run(t, "document", `{"password":{"$ne":null}}`)
	assert.ErrorIs(t, err, errRejected)
	assert.Contains(t, out, "password.$ne")
}

func TestSanitizeCommand(t *testing.T) {
	out, err := run(t, "sanitize", "<b>\"hi\"</b>")
	require.NoError(t, err)
	assert.Equal(t, "&lt;b&gt;&quot;hi&quot;&lt;/b&gt;\n", out)
}

func TestStatementCommand(t *testing.T) {
	out, err := run(t, "statement", "SELECT * FROM t WHERE a = ? AND b = ? AND c = ?", "1", "<x>")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE a = 1 AND b = &lt;x&gt; AND c = ?\n", out)

	_, err = run(t, "statement", "")
	assert.Error(t, err)
}

func TestAdmitCommand(t *testing.T) {
	out, err := run(t, "admit", "--capacity", "2", "A", "B", "C", "A")
	require.NoError(t, err)
	assert.Equal(t, "A\tadmitted\nB\tadmitted\nC\trejected\nA\tadmitted\n", out)

	_, err = run(t, "admit", "A")
	assert.Error(t, err)
}

func TestAdmitCommandRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	url := "redis://" + mr.Addr()

	out, err := run(t, "admit", "--capacity", "1", "--redis", url, "--name", "cli", "A", "B")
	require.NoError(t, err)
	assert.Equal(t, "A\tadmitted\nB\trejected\n", out)

	// A second process sees the same set.
	out, err = run(t, "admit", "--capacity", "1", "--redis", url, "--name", "cli", "A", "C")
	require.NoError(t, err)
	assert.Equal(t, "A\tadmitted\nC\trejected\n", out)
}

func TestFilterCommand(t *testing.T) {
	out, err := run(t, "filter", `{"name":"alice","age":30}`)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"alice","age":30}`+"\n", out)

	_, err = run(t, "filter", `{"$where":"1"}`)
	assert.ErrorIs(t, err, errRejected)
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lunarsec.yaml")
	require.NoError(t, os.WriteFile(path, []byte("statement:\n  max_query_length: 10\n"), 0o600))

	_, err := run(t, "--config", path, "statement", "SELECT * FROM users")
	assert.Error(t, err)

	_, err = run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "sanitize", "x")
	assert.Error(t, err)
}
