package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"
	"tasc/internal/config"
	"tasc/internal/domain"
	"tasc/internal/ports"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"mvdan.cc/sh/v3/shell"
)

var _ ports.Executor = (*Local)(nil)

const (
	TokenizerFields = "fields"
	TokenizerShell  = "shell"
)

// Local runs task commands as child processes of the current process.
type Local struct {
	Tokenizer  string
	Timeout    time.Duration
	InheritEnv bool
}

func New(cfg config.Executor) *Local {
	return &Local{
		Tokenizer:  cfg.Tokenizer,
		Timeout:    cfg.Timeout,
		InheritEnv: cfg.InheritEnv,
	}
}

// Execute runs the command and returns its stdout as a Success status. A
// non-zero exit yields a *domain.CommandError carrying stderr.
func (e *Local) Execute(ctx context.Context, t domain.Task) (domain.TaskStatus, error) {
	env := e.environ(t.Env)

	words, err := e.split(t.Command, env)
	if err != nil {
		return domain.TaskStatus{}, &domain.ExecutionError{Err: fmt.Errorf("invalid command: %w", err)}
	}
	if len(words) == 0 {
		return domain.TaskStatus{}, &domain.ExecutionError{Err: errors.New("command can't be empty")}
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, words[0], words[1:]...)
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	log.Ctx(ctx).Debug().
		Str("task", t.ID).
		Str("program", words[0]).
		Dur("elapsed", time.Since(start)).
		Err(err).
		Msg("command finished")

	if ctxErr := ctx.Err(); ctxErr != nil && err != nil {
		return domain.TaskStatus{}, &domain.ExecutionError{Err: fmt.Errorf("command interrupted: %w", ctxErr)}
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		if !utf8.Valid(stdout.Bytes()) {
			return domain.TaskStatus{}, &domain.UnexpectedError{Err: errors.New("stdout is not valid UTF-8")}
		}
		return domain.Success(stdout.String()), nil
	case errors.As(err, &exitErr):
		if !utf8.Valid(stderr.Bytes()) {
			return domain.TaskStatus{}, &domain.UnexpectedError{Err: errors.New("stderr is not valid UTF-8")}
		}
		return domain.TaskStatus{}, &domain.CommandError{ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
	default:
		return domain.TaskStatus{}, &domain.ExecutionError{Err: err}
	}
}

func (e *Local) split(command string, env []string) ([]string, error) {
	if e.Tokenizer != TokenizerShell {
		return strings.Fields(command), nil
	}
	return shell.Fields(command, func(name string) string {
		return lookup(env, name)
	})
}

// environ returns the process environment for a task: the task overrides
// applied on top of the parent environment, or only the overrides when the
// parent environment is not inherited.
func (e *Local) environ(overrides map[string]string) []string {
	var base []string
	if e.InheritEnv {
		base = os.Environ()
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	env := make([]string, 0, len(base)+len(keys))
	for _, kv := range base {
		name, _, _ := strings.Cut(kv, "=")
		if _, overridden := overrides[name]; !overridden {
			env = append(env, kv)
		}
	}
	for _, k := range keys {
		env = append(env, k+"="+overrides[k])
	}
	return env
}

func lookup(env []string, name string) string {
	for i := len(env) - 1; i >= 0; i-- {
		if k, v, ok := strings.Cut(env[i], "="); ok && k == name {
			return v
		}
	}
	return ""
}
