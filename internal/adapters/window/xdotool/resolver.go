package xdotool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/bnema/volmix/internal/ports"
)

const binaryName = "xdotool"

// Resolver asks xdotool for the first window owned by a pid.
type Resolver struct {
	binary string
	run    func(ctx context.Context, name string, args ...string) ([]byte, error)
}

var _ ports.WindowTitleResolver = (*Resolver)(nil)

// New returns a resolver, or an error when xdotool is not on PATH.
func New() (*Resolver, error) {
	path, err := exec.LookPath(binaryName)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", binaryName, err)
	}

	return &Resolver{binary: path, run: runCommand}, nil
}

func (r *Resolver) Title(ctx context.Context, pid int) (string, error) {
	if pid <= 0 {
		return "", nil
	}

	out, err := r.run(ctx, r.binary, "search", "--limit", "1", "--pid", strconv.Itoa(pid), "getwindowname")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", nil
		}
		return "", fmt.Errorf("xdotool window title for pid %d: %w", pid, err)
	}

	return firstLine(out), nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}

func firstLine(out []byte) string {
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line)
}

// None resolves no titles. It stands in when xdotool is unavailable.
type None struct{}

var _ ports.WindowTitleResolver = None{}

func (None) Title(context.Context, int) (string, error) {
	return "", nil
}
