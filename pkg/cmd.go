package pkg

import (
	"bytes"
	"context"
	"os/exec"
)

// RunCommandCapture runs a command and returns its combined stdout/stderr.
// The context bounds the run; a cancelled or expired context kills the
// process.
func RunCommandCapture(ctx context.Context, dir string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	return buf.String(), err
}
