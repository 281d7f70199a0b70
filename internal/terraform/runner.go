// Package terraform drives the external terraform binary against a
// generated project directory. Provisioning stays terraform's job; this
// package only sequences subcommands and reads their results.
package terraform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/scoreform-io/scoreform/internal/logging"
)

// NotInstalledError means no terraform binary was found in PATH.
type NotInstalledError struct{}

func (e *NotInstalledError) Error() string {
	return "terraform binary not found in PATH"
}

// ExitError reports a terraform subcommand failing with a non-zero exit
// code. Code propagates to the CLI's own exit status; Stderr is kept
// for failure diagnostics.
type ExitError struct {
	Step   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("terraform %s failed with exit code %d", e.Step, e.Code)
}

// Runner executes terraform subcommands in one project directory.
// Commands run sequentially and block until the subprocess exits.
type Runner struct {
	dir    string
	bin    string
	stdout io.Writer
	stderr io.Writer
}

// NewRunner locates the terraform binary and binds it to dir. Terraform
// output streams to this process's stdout and stderr.
func NewRunner(dir string) (*Runner, error) {
	bin, err := exec.LookPath("terraform")
	if err != nil {
		return nil, &NotInstalledError{}
	}
	return &Runner{dir: dir, bin: bin, stdout: os.Stdout, stderr: os.Stderr}, nil
}

// Init runs terraform init without interactive input.
func (r *Runner) Init(ctx context.Context) error {
	return r.run(ctx, "init", "init", "-input=false")
}

// SelectWorkspace switches to the named workspace, creating it on first
// use. Terraform owns workspace name validation.
func (r *Runner) SelectWorkspace(ctx context.Context, name string) error {
	return r.run(ctx, "workspace select", "workspace", "select", "-or-create", name)
}

// Validate runs terraform validate over the generated tree.
func (r *Runner) Validate(ctx context.Context) error {
	return r.run(ctx, "validate", "validate")
}

// Plan writes an execution plan to planFile.
func (r *Runner) Plan(ctx context.Context, planFile string) error {
	return r.run(ctx, "plan", "plan", "-input=false", "-out="+planFile)
}

// Apply applies a previously written plan file, or the configuration
// directly when planFile is empty.
func (r *Runner) Apply(ctx context.Context, planFile string) error {
	if planFile != "" {
		return r.run(ctx, "apply", "apply", "-input=false", planFile)
	}
	return r.run(ctx, "apply", "apply", "-input=false", "-auto-approve")
}

// Destroy tears everything down. Confirmation happens before this call;
// terraform itself runs non-interactively.
func (r *Runner) Destroy(ctx context.Context) error {
	return r.run(ctx, "destroy", "destroy", "-auto-approve")
}

// OutputJSON returns the root module outputs as terraform's JSON form.
func (r *Runner) OutputJSON(ctx context.Context) ([]byte, error) {
	return r.capture(ctx, "output", "output", "-json")
}

// StatePull fetches and decodes the current state. Read-only: the state
// is never modified or written back.
func (r *Runner) StatePull(ctx context.Context) (*State, error) {
	raw, err := r.capture(ctx, "state pull", "state", "pull")
	if err != nil {
		return nil, err
	}
	return ParseState(raw)
}

func (r *Runner) run(ctx context.Context, step string, args ...string) error {
	cmd := exec.CommandContext(ctx, r.bin, args...)
	cmd.Dir = r.dir
	var stderr bytes.Buffer
	cmd.Stdout = r.stdout
	cmd.Stderr = io.MultiWriter(r.stderr, &stderr)

	logging.Debug("running terraform", "step", step, "dir", r.dir)
	err := cmd.Run()
	return wrapRunError(step, stderr.String(), err)
}

func (r *Runner) capture(ctx context.Context, step string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.bin, args...)
	cmd.Dir = r.dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.Debug("running terraform", "step", step, "dir", r.dir)
	err := cmd.Run()
	if err = wrapRunError(step, stderr.String(), err); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}

func wrapRunError(step, stderr string, err error) error {
	if err == nil {
		return nil
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return &ExitError{Step: step, Code: ee.ExitCode(), Stderr: stderr}
	}
	return fmt.Errorf("terraform %s: %w", step, err)
}
