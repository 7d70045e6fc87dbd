package gen

import (
	"bytes"
	"context"
	"os/exec"

	"go.uber.org/zap"

	"github.com/wippyai/witgen/errors"
)

const defaultFormatter = "gofmt"

// formatSource pipes src through the formatter command. The process is
// always waited on, and any failure fails the run.
func formatSource(ctx context.Context, tool, name string, src []byte) ([]byte, error) {
	if tool == "" {
		tool = defaultFormatter
	}
	cmd := exec.CommandContext(ctx, tool)
	cmd.Stdin = bytes.NewReader(src)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		Logger().Debug("formatter failed",
			zap.String("tool", tool),
			zap.String("file", name),
			zap.Error(err))
		e := errors.Subprocess(tool, err, stderr.String())
		e.Path = []string{name}
		return nil, e
	}
	return stdout.Bytes(), nil
}
