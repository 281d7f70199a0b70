package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/scoreform-io/scoreform/internal/cleanup"
	"github.com/scoreform-io/scoreform/internal/compiler"
	"github.com/scoreform-io/scoreform/internal/emit"
	"github.com/scoreform-io/scoreform/internal/spec"
	"github.com/scoreform-io/scoreform/internal/terraform"
)

const (
	defaultSpecPath = "score.yaml"
	defaultOutDir   = "terraform"
	planFileName    = "tfplan"
	outputsFileName = "outputs.json"
)

// loadSpec loads and validates the spec file, reporting the step. A
// validation failure lists every problem before returning.
func loadSpec(path string) (*spec.Spec, error) {
	stepf("Loading %s", path)
	s, err := spec.Load(path)
	if err != nil {
		stepFailed()
		var verr *spec.ValidationError
		if errors.As(err, &verr) {
			for _, p := range verr.Problems {
				fmt.Printf("  - %s\n", p)
			}
			return nil, fmt.Errorf("%s has %d problem(s)", path, len(verr.Problems))
		}
		return nil, err
	}
	stepOK(fmt.Sprintf("%d workload(s)", len(s.Workloads)))
	return s, nil
}

// generate compiles the spec and writes the Terraform tree into outDir,
// returning the written file paths.
func generate(s *spec.Spec, outDir string) ([]string, error) {
	stepf("Generating Terraform in %s", outDir)
	project, err := compiler.Compile(s)
	if err != nil {
		stepFailed()
		return nil, err
	}
	files, err := emit.Write(outDir, project)
	if err != nil {
		stepFailed()
		return nil, err
	}
	stepOK(fmt.Sprintf("%d file(s)", len(files)))
	for _, note := range compiler.Notices(s) {
		warnf("%s", note)
	}
	return files, nil
}

// newRunner binds terraform to outDir, turning a missing binary into an
// actionable message.
func newRunner(outDir string) (*terraform.Runner, error) {
	r, err := terraform.NewRunner(outDir)
	if err != nil {
		var nie *terraform.NotInstalledError
		if errors.As(err, &nie) {
			return nil, fmt.Errorf("%w; install it from https://developer.hashicorp.com/terraform/install", err)
		}
		return nil, err
	}
	return r, nil
}

// loadOutputs reads the outputs.json sidecar written by deploy, falling
// back to terraform output -json when the sidecar is absent.
func loadOutputs(ctx context.Context, outDir string) (map[string]terraform.Output, error) {
	sidecar := filepath.Join(outDir, outputsFileName)
	if raw, err := os.ReadFile(sidecar); err == nil {
		return terraform.ParseOutputs(raw)
	}
	r, err := newRunner(outDir)
	if err != nil {
		return nil, err
	}
	raw, err := r.OutputJSON(ctx)
	if err != nil {
		return nil, err
	}
	return terraform.ParseOutputs(raw)
}

// outputLines renders outputs as "name = value" lines in sorted order,
// masking sensitive values.
func outputLines(outs map[string]terraform.Output) []string {
	names := make([]string, 0, len(outs))
	for name := range outs {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(outs))
	for _, name := range names {
		out := outs[name]
		if out.Sensitive {
			lines = append(lines, fmt.Sprintf("%s = (sensitive)", name))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s = %s", name, compactJSON(out.Value)))
	}
	return lines
}

// compactJSON renders raw JSON on one line.
func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// toCleanupServices converts state-recorded services to drain targets,
// shortening cluster ARNs to names.
func toCleanupServices(in []terraform.ECSService) []cleanup.Service {
	out := make([]cleanup.Service, len(in))
	for i, svc := range in {
		out[i] = cleanup.Service{Cluster: terraform.ClusterName(svc.Cluster), Name: svc.Service}
	}
	return out
}
