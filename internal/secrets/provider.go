// Package secrets resolves database passwords that are not stored in the
// configuration file.
//
// The default provider shells out to the Unix "pass" password manager with
// the key "databases/<label>" (overridable per database via
// password_store_key). Static and NoOp providers exist for tests and for
// deployments where passwords live in the config file itself.
package secrets

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/datquery/dbexplorer/internal/errs"
)

// Provider looks up a password by store key. A nil-error empty result means
// "no password stored" — connections then proceed without one.
type Provider interface {
	Password(ctx context.Context, key string) (string, error)
}

// Key returns the default password store key for a database label, unless
// the configuration overrides it.
func Key(label, override string) string {
	if override != "" {
		return override
	}
	return "databases/" + label
}

// Pass resolves passwords through the Unix "pass" password manager.
type Pass struct {
	// Binary is the executable to invoke; defaults to "pass".
	Binary string
}

// Password runs `pass <key>` and returns the trimmed first line of output.
// A missing entry (exit code 1) is not an error — it returns "".
func (p *Pass) Password(ctx context.Context, key string) (string, error) {
	binary := p.Binary
	if binary == "" {
		binary = "pass"
	}

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, key)
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", nil
		}
		return "", errs.Wrap(errs.ErrKindPermissionDenied, "",
			"failed to get password from pass: "+key, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// Static serves passwords from a fixed map. Intended for tests.
type Static struct {
	Passwords map[string]string
}

func (s *Static) Password(_ context.Context, key string) (string, error) {
	return s.Passwords[key], nil
}

// NoOp never returns a password. Intended for tests and password-less setups.
type NoOp struct{}

func (NoOp) Password(context.Context, string) (string, error) {
	return "", nil
}
