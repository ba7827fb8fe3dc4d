package internal

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// SecretReferencePrefix marks a value that names a 1Password item field
const SecretReferencePrefix = "op://"

var (
	// CommandContext allows overriding the command creation for testing
	CommandContext = exec.CommandContext
	// LookPath allows overriding the lookup behavior for testing
	LookPath = exec.LookPath
)

// ResolveSecret returns value unchanged unless it is a 1Password secret
// reference (op://vault/item/field), in which case it is read with the op CLI.
// The boolean reports whether value was a reference.
func ResolveSecret(ctx context.Context, value string) (string, bool, error) {
	if !strings.HasPrefix(value, SecretReferencePrefix) {
		return value, false, nil
	}

	if _, err := LookPath("op"); err != nil {
		return "", true, fmt.Errorf("1Password CLI (op) not found in PATH: %w", err)
	}

	cmd := CommandContext(ctx, "op", "read", "--no-newline", value)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", true, fmt.Errorf("failed to read secret from 1Password: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", true, fmt.Errorf("failed to read secret from 1Password: %w", err)
	}

	secret := strings.TrimSpace(string(output))
	if secret == "" {
		return "", true, fmt.Errorf("1Password secret %s is empty", value)
	}
	return secret, true, nil
}
