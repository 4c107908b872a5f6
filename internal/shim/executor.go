package shim

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// ExecutionResult is the captured outcome of one run.
type ExecutionResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Executor runs the real binary.
type Executor struct {
	// Stdin is forwarded to the child when set.
	Stdin io.Reader
}

// NewExecutor creates an executor forwarding stdin.
func NewExecutor(stdin io.Reader) *Executor {
	return &Executor{Stdin: stdin}
}

// Run executes bin with args unchanged. Output is written through to stdout
// and stderr as it arrives and captured in full. A non-zero exit is not an
// error; it is reported in the result.
func (e *Executor) Run(ctx context.Context, bin string, args []string, stdout, stderr io.Writer) (*ExecutionResult, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = e.Stdin

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = teeWriter(&outBuf, stdout)
	cmd.Stderr = teeWriter(&errBuf, stderr)

	err := cmd.Run()

	if ctx.Err() != nil {
		return nil, fmt.Errorf("execution cancelled: %w", ctx.Err())
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("failed to execute %s: %w", bin, err)
		}
		exitCode = exitErr.ExitCode()
	}

	return &ExecutionResult{
		ExitCode: exitCode,
		Stdout:   outBuf.Bytes(),
		Stderr:   errBuf.Bytes(),
	}, nil
}

func teeWriter(buf *bytes.Buffer, passthrough io.Writer) io.Writer {
	if passthrough == nil {
		return buf
	}
	return io.MultiWriter(buf, passthrough)
}
