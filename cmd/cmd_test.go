package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"tasc/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := rootCmd()
	c.SetOut(&out)
	c.SetErr(&out)
	c.SetArgs(args)
	err := c.ExecuteContext(context.Background())
	return out.String(), err
}

func useSQLite(t *testing.T) {
	t.Helper()
	t.Setenv("TASC_STORAGE", "sqlite")
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "tasks.db"))
	t.Setenv("TASC_LOG_LEVEL", "error")
}

func TestRunPrintsIdentifier(t *testing.T) {
	useSQLite(t)

	out, err := execute(t, "run", "--name", "greeting", "--", "echo", "hello")
	require.NoError(t, err)
	assert.Equal(t, "name: greeting\n", out)

	out, err = execute(t, "status", "name", "greeting")
	require.NoError(t, err)
	assert.Equal(t, "Task succeeded:\n    hello\n", out)
}

func TestRunUnnamedThenStatusByID(t *testing.T) {
	useSQLite(t)

	out, err := execute(t, "run", "echo", "-n", "x")
	require.NoError(t, err)
	id, ok := strings.CutPrefix(strings.TrimSpace(out), "id: ")
	require.True(t, ok, out)

	out, err = execute(t, "status", "id", id)
	require.NoError(t, err)
	assert.Equal(t, "Task succeeded:\n    x\n", out)
}

func TestRunWaitPrintsFailure(t *testing.T) {
	useSQLite(t)

	out, err := execute(t, "run", "--wait", "-e", "LC_ALL=C", "--", "ls", "/definitely/not/here")
	require.Error(t, err)
	var stageErr *domain.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, domain.StageExecute, stageErr.Stage)
	assert.True(t, strings.HasPrefix(out, "Task failed:\n    "), out)
}

func TestStatusUnknownTask(t *testing.T) {
	useSQLite(t)

	_, err := execute(t, "status", "name", "ghost")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestRunRejectsBadEnv(t *testing.T) {
	useSQLite(t)

	_, err := execute(t, "run", "-e", "NOVALUE", "--", "true")
	assert.Error(t, err)
}

func TestParseEnv(t *testing.T) {
	env, err := parseEnv([]string{"A=1", "B=x=y", "C="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "1", "B": "x=y", "C": ""}, env)

	env, err = parseEnv(nil)
	require.NoError(t, err)
	assert.Nil(t, env)

	_, err = parseEnv([]string{"=1"})
	assert.Error(t, err)
	_, err = parseEnv([]string{"A=1", "A=2"})
	assert.Error(t, err)
}

func TestPrintStatus(t *testing.T) {
	var b bytes.Buffer
	printStatus(&b, domain.Scheduled())
	assert.Equal(t, "Task is scheduled\n", b.String())

	b.Reset()
	printStatus(&b, domain.Success("file1\nfile2\n"))
	assert.Equal(t, "Task succeeded:\n    file1\n    file2\n", b.String())

	b.Reset()
	printStatus(&b, domain.Failure("No such file"))
	assert.Equal(t, "Task failed:\n    No such file\n", b.String())

	b.Reset()
	printStatus(&b, domain.Success(""))
	assert.Equal(t, "Task succeeded:\n", b.String())
}
