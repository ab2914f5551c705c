package wine

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/arthur-debert/gamelink/pkg/errors"
	"github.com/arthur-debert/gamelink/pkg/logging"
	"github.com/rs/zerolog"
)

// Runner executes a program and returns its standard output
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs programs with os/exec
type ExecRunner struct {
	Env     []string
	Timeout time.Duration
	logger  zerolog.Logger
}

// NewExecRunner returns a runner that adds env to the inherited environment
func NewExecRunner(env []string, timeout time.Duration) *ExecRunner {
	return &ExecRunner{
		Env:     env,
		Timeout: timeout,
		logger:  logging.GetLogger("wine.exec"),
	}
}

// Run executes name with args. A non-zero exit or a timeout is an
// ErrRuntimeExec carrying the captured stderr.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), r.Env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.LogCommand(name, args)
	err := cmd.Run()

	if stderr.Len() > 0 {
		r.logger.Trace().Str("command", name).Str("stderr", stderr.String()).Msg("Command stderr")
	}
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return stdout.String(), errors.Wrapf(err, errors.ErrRuntimeExec, "%s timed out after %s", name, r.Timeout).
				WithDetail("args", args)
		}
		return stdout.String(), errors.Wrapf(err, errors.ErrRuntimeExec, "%s failed", name).
			WithDetail("args", args).
			WithDetail("stderr", strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
