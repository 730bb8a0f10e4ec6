package terraform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Runner shells out to the terraform binary inside one asset directory.
// Credentials and region flow through the process environment untouched
// (AWS_PROFILE, AWS_ACCESS_KEY_ID, AWS_REGION and friends).
type Runner struct {
	Dir    string
	Env    []string
	Stdout io.Writer
	Stderr io.Writer

	binary string
}

// NewRunner builds a Runner for an asset directory, verifying the terraform
// binary is on PATH.
func NewRunner(assetDir string) (*Runner, error) {
	binary, err := exec.LookPath("terraform")
	if err != nil {
		return nil, fmt.Errorf("terraform binary not found on PATH: %w", err)
	}

	return &Runner{
		Dir:    assetDir,
		Env:    os.Environ(),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		binary: binary,
	}, nil
}

// Init runs `terraform init -input=false`.
func (r *Runner) Init(ctx context.Context) error {
	return r.run(ctx, "init", "-input=false")
}

// Plan runs `terraform plan -input=false -out=tfplan`, leaving the plan file
// in the asset directory for a later Apply.
func (r *Runner) Plan(ctx context.Context) error {
	return r.run(ctx, "plan", "-input=false", "-out=tfplan")
}

// Apply runs `terraform apply -input=false tfplan`, consuming the plan file
// written by Plan.
func (r *Runner) Apply(ctx context.Context) error {
	return r.run(ctx, "apply", "-input=false", "tfplan")
}

// Destroy runs `terraform destroy -auto-approve -input=false`.
func (r *Runner) Destroy(ctx context.Context) error {
	return r.run(ctx, "destroy", "-auto-approve", "-input=false")
}

// Output runs `terraform output -json` and returns the output values keyed
// by name.
func (r *Runner) Output(ctx context.Context) (map[string]any, error) {
	var stdout bytes.Buffer

	cmd := exec.CommandContext(ctx, r.binary, "output", "-json")
	cmd.Dir = r.Dir
	cmd.Env = r.Env
	cmd.Stdout = &stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("terraform output failed: %w", err)
	}

	var outputs map[string]struct {
		Value any `json:"value"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &outputs); err != nil {
		return nil, fmt.Errorf("failed to decode terraform output: %w", err)
	}

	values := make(map[string]any, len(outputs))
	for name, output := range outputs {
		values[name] = output.Value
	}
	return values, nil
}

func (r *Runner) run(ctx context.Context, args ...string) error {
	slog.Info("🏗️ running terraform", "command", args[0], "args", strings.Join(args[1:], " "), "dir", r.Dir)

	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Dir = r.Dir
	cmd.Env = r.Env
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("terraform %s failed: %w", args[0], err)
	}
	return nil
}
