package runner

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// CommandOutput holds the captured output of a finished subprocess.
type CommandOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandTask wraps a subprocess invocation as a Task. The process is
// killed when the task context is cancelled or times out.
func CommandTask(id string, timeout time.Duration, name string, args ...string) Task[CommandOutput] {
	return Task[CommandOutput]{
		ID:      id,
		Timeout: timeout,
		Fn: func(ctx context.Context) (CommandOutput, error) {
			cmd := exec.CommandContext(ctx, name, args...)

			var stdout, stderr bytes.Buffer
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr

			err := cmd.Run()

			out := CommandOutput{
				Stdout: stdout.String(),
				Stderr: stderr.String(),
			}
			if cmd.ProcessState != nil {
				out.ExitCode = cmd.ProcessState.ExitCode()
			}

			if err != nil {
				return out, fmt.Errorf("runner: command %q: %w", name, err)
			}
			return out, nil
		},
	}
}
