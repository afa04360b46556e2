package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func TestLog_RecordAppendsOneLinePerEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "log.log")
	log, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, log.Record("Project 1 created by user alice"))
	require.NoError(t, Recordf(log, "User %s added to project %d by %s", "bob", 1, "alice"))
	require.NoError(t, log.Record("comment with\ntwo lines"))
	require.NoError(t, log.Close())

	lines := readLines(t, path)
	require.Len(t, lines, 3)

	ts, msg, ok := strings.Cut(lines[0], "\t")
	require.True(t, ok)
	_, err = time.Parse(time.RFC3339, ts)
	assert.NoError(t, err)
	assert.Equal(t, "Project 1 created by user alice", msg)
	assert.True(t, strings.HasSuffix(lines[1], "User bob added to project 1 by alice"))
	assert.True(t, strings.HasSuffix(lines[2], `comment with\ntwo lines`))
}

func TestLog_AppendsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.log")

	log, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, log.Record("first"))
	require.NoError(t, log.Close())

	log, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, log.Record("second"))
	require.NoError(t, log.Close())

	assert.Len(t, readLines(t, path), 2)
}

func TestLog_Reset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.log")
	log, err := Open(path)
	require.NoError(t, err)
	defer log.Close()

	require.NoError(t, log.Record("before purge"))
	require.NoError(t, log.Reset())
	require.NoError(t, log.Record("after purge"))

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.True(t, strings.HasSuffix(lines[0], "after purge"))
}

func TestLog_ResetKeepsAppendMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.log")
	log, err := Open(path)
	require.NoError(t, err)
	defer log.Close()

	require.NoError(t, log.Record("before purge"))
	require.NoError(t, log.Reset())
	require.NoError(t, log.Record("first"))

	other, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = other.WriteString("written elsewhere\n")
	require.NoError(t, err)
	require.NoError(t, other.Close())

	require.NoError(t, log.Record("second"))

	lines := readLines(t, path)
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[0], "first"))
	assert.Equal(t, "written elsewhere", lines[1])
	assert.True(t, strings.HasSuffix(lines[2], "second"))
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Record("a"))
	require.NoError(t, Recordf(m, "b %d", 2))
	assert.Equal(t, []string{"a", "b 2"}, m.Lines())

	require.NoError(t, m.Reset())
	assert.Empty(t, m.Lines())
}
