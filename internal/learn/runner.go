package learn

import (
	"context"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// Runner captures raw documentation text for a command. Implementations own
// all process execution; the parser stays a pure function over the captured
// text.
type Runner interface {
	Help(ctx context.Context, name string) (string, error)
	Man(ctx context.Context, name string) (string, error)
}

// ExecRunner shells out to the command itself and to man(1).
type ExecRunner struct {
	Timeout time.Duration
}

// NewExecRunner returns a runner with a per-invocation timeout.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ExecRunner{Timeout: timeout}
}

// Help runs `name --help`, falling back to `name -h`. Many tools print help
// to stderr or exit non-zero after printing it, so any non-empty output
// counts as success.
func (r *ExecRunner) Help(ctx context.Context, name string) (string, error) {
	for _, flag := range []string{"--help", "-h"} {
		out, err := r.run(ctx, name, flag)
		if out != "" {
			return out, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		_ = err
	}
	return "", nil
}

// Man runs `man name` with a plain pager and fixed width so output is
// machine-parseable.
func (r *ExecRunner) Man(ctx context.Context, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, "man", name)
	cmd.Env = append(cmd.Environ(), "MANPAGER=cat", "PAGER=cat", "MANWIDTH=80", "LC_ALL=C")
	out, err := cmd.Output()
	if err != nil && len(out) == 0 {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		// No man page is an expected condition, not an error.
		return "", nil
	}
	return sanitize(string(out)), nil
}

func (r *ExecRunner) run(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	text := sanitize(string(out))
	if strings.TrimSpace(text) == "" {
		return "", err
	}
	return text, nil
}

var ansiEscapes = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

// sanitize strips ANSI escape sequences and nroff backspace overstrike
// (bold "x\bx", underline "_\bx") from captured output.
func sanitize(text string) string {
	text = ansiEscapes.ReplaceAllString(text, "")
	if !strings.ContainsRune(text, '\b') {
		return text
	}
	out := make([]rune, 0, len(text))
	for _, r := range text {
		if r == '\b' {
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
