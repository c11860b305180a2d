// Package reconcile scores allele partitions with an external gene tree
// reconciliation tool. It builds NEXUS jobs, shells out to the Java jar,
// and parses the inferred species tree and extra-lineage count back out of
// the tool's plain text output.
package reconcile

import (
	"context"
	"os/exec"

	"github.com/phylogeno/subgenome/pkg/errors"
)

// CommandRunner abstracts the subprocess call so tests can substitute
// canned output for the Java tool.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs the command with exec and captures stdout.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.OracleFailed, "reconciliation subprocess failed"),
			errors.Fields{"command": name},
		)
	}
	return out, nil
}

// RunnerFunc adapts a function to the CommandRunner interface.
type RunnerFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func (f RunnerFunc) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return f(ctx, name, args...)
}
