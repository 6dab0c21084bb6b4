package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Placeholders substituted into configured recorder and player commands.
const (
	InputPlaceholder  = "{input}"
	OutputPlaceholder = "{output}"
)

var errNoCommand = errors.New("speech: command not configured")

// waitDelay bounds how long a killed command's children may hold its pipes open.
const waitDelay = time.Second

// expandArgs replaces placeholder in every argument with value.
// When no argument mentions the placeholder, value is appended.
func expandArgs(argv []string, placeholder, value string) []string {
	out := make([]string, 0, len(argv)+1)
	found := false
	for _, arg := range argv {
		if strings.Contains(arg, placeholder) {
			found = true
			arg = strings.ReplaceAll(arg, placeholder, value)
		}
		out = append(out, arg)
	}
	if !found {
		out = append(out, value)
	}
	return out
}

// runCommand runs argv to completion, returning stderr in the error on failure.
func runCommand(ctx context.Context, argv []string) error {
	if len(argv) == 0 || argv[0] == "" {
		return errNoCommand
	}

	// #nosec G204 -- argv comes from the user's own configuration file
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", argv[0], err, msg)
		}
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}
