package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskIdentifier(t *testing.T) {
	assert.Equal(t, ByID("abc"), Task{ID: "abc", Command: "ls"}.Identifier())
	assert.Equal(t, ByName("backup"), Task{ID: "abc", Name: "backup", Command: "ls"}.Identifier())
}

func TestTaskIDMatches(t *testing.T) {
	named := Task{ID: "1", Name: "build"}
	anonymous := Task{ID: "2"}

	assert.True(t, ByID("1").Matches(named))
	assert.True(t, ByName("build").Matches(named))
	assert.False(t, ByName("").Matches(anonymous))
	assert.False(t, ByID("1").Matches(anonymous))
	assert.False(t, TaskID{Kind: "other", Value: "1"}.Matches(named))
}

func TestNewTaskCopiesEnv(t *testing.T) {
	env := map[string]string{"A": "1"}
	task := NewTask(Submission{Command: "env", Env: env}, "id-1")
	env["A"] = "changed"

	assert.Equal(t, "id-1", task.ID)
	assert.Equal(t, "1", task.Env["A"])
	assert.Nil(t, NewTask(Submission{Command: "env", Env: map[string]string{}}, "id-2").Env)
}

func TestParseStatus(t *testing.T) {
	out := "file1\nfile2"

	s, err := ParseStatus("SCHEDULED", nil)
	require.NoError(t, err)
	assert.Equal(t, Scheduled(), s)
	assert.False(t, s.Terminal())

	s, err = ParseStatus("SUCCESS", &out)
	require.NoError(t, err)
	assert.Equal(t, Success(out), s)
	assert.True(t, s.Terminal())

	s, err = ParseStatus("ERROR", &out)
	require.NoError(t, err)
	assert.Equal(t, Failure(out), s)

	_, err = ParseStatus("SUCCESS", nil)
	assert.Error(t, err)
	_, err = ParseStatus("RUNNING", nil)
	assert.Error(t, err)
}

func TestStatusMessage(t *testing.T) {
	assert.Equal(t, "No such file", StatusMessage(&CommandError{ExitCode: 1, Stderr: "No such file"}))
	assert.Equal(t, "error executing the command: boom", StatusMessage(&ExecutionError{Err: errors.New("boom")}))
}

func TestStageErrorKeepsBothFailures(t *testing.T) {
	storeErr := errors.New("storage failed")
	execErr := &CommandError{ExitCode: 2, Stderr: "bad"}

	err := error(&StageError{TaskID: "t1", Stage: StageComplete, Err: storeErr, Execution: execErr})

	assert.ErrorIs(t, err, storeErr)
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "bad", cmdErr.Stderr)
	assert.Contains(t, err.Error(), "task t1: complete: storage failed")
	assert.Contains(t, err.Error(), "after execution failure")
}
