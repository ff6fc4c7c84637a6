package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/projecteru2/core/log"
	utilexec "k8s.io/utils/exec"
)

// ErrEmptyCommand is returned when the command line has no program to run.
var ErrEmptyCommand = errors.New("empty command")

// Runner runs a command line and returns what it wrote to stdout.
type Runner interface {
	Run(ctx context.Context, command string) (string, error)
}

type runner struct {
	exec utilexec.Interface
}

var _ Runner = &runner{}

// New returns a Runner backed by exec. Pass utilexec.New() for the host.
func New(exec utilexec.Interface) Runner {
	return &runner{exec: exec}
}

// Run splits command on whitespace and executes it without a shell.
// The child's exit status and stderr are ignored; only a failure to start it,
// or ctx ending while it runs, is an error. Invalid UTF-8 in stdout is
// replaced with U+FFFD.
func (r *runner) Run(ctx context.Context, command string) (string, error) {
	logger := log.WithFunc("executor.Run")
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", ErrEmptyCommand
	}
	prog, args := fields[0], fields[1:]

	if _, err := r.exec.LookPath(prog); err != nil {
		return "", fmt.Errorf("unable to find %s in PATH: %w", prog, err)
	}

	logger.Debugf(ctx, "running %s", strings.Join(fields, " "))
	output, err := r.exec.CommandContext(ctx, prog, args...).Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("run %s: %w", prog, ctxErr)
		}
		var exitErr utilexec.ExitError
		if !errors.As(err, &exitErr) {
			return "", fmt.Errorf("run %s: %w", prog, err)
		}
		logger.Debugf(ctx, "%s exited with status %d", prog, exitErr.ExitStatus())
	}
	return decodeLossy(output), nil
}

// decodeLossy converts b to a string, replacing each run of invalid UTF-8 with
// the replacement character.
func decodeLossy(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
