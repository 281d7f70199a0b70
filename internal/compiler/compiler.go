// Package compiler transforms a SCORE spec into a Terraform source
// tree: one root module plus a reusable child module per workload type.
// Compilation is pure; nothing here touches the filesystem.
package compiler

import (
	"fmt"
	"strings"

	"github.com/scoreform-io/scoreform/internal/spec"
)

// Project is a compiled Terraform source tree held in memory until the
// emitter writes it out.
type Project struct {
	Provider  []byte
	Variables []byte
	Main      []byte
	Modules   []*Module
}

// Module is the reusable child module shared by every workload of one
// type. Its three files land under modules/<type>/.
type Module struct {
	Type      string
	Variables []byte
	Main      []byte
	Outputs   []byte
}

// Compile renders the full Terraform tree for a loaded spec. Workloads
// appear in declaration order and identical input yields byte-identical
// output.
func Compile(s *spec.Spec) (*Project, error) {
	topo, err := deriveTopology(s.Resources.Networking.CIDR, s.Metadata.Region)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	p := &Project{
		Provider:  providerFile().Bytes(),
		Variables: variablesFile(&s.Metadata).Bytes(),
		Main:      mainFile(s, topo).Bytes(),
	}

	for _, typ := range distinctTypes(s.Workloads) {
		p.Modules = append(p.Modules, Lookup(typ).Module())
	}
	return p, nil
}

// distinctTypes returns workload types in first-seen order.
func distinctTypes(workloads spec.Workloads) []string {
	seen := make(map[string]bool, len(workloads))
	var types []string
	for _, w := range workloads {
		if !seen[w.Type] {
			seen[w.Type] = true
			types = append(types, w.Type)
		}
	}
	return types
}

// Notices returns operator-facing warnings for a spec: declared fields
// no template consumes, and where database credentials end up.
func Notices(s *spec.Spec) []string {
	var notes []string
	for _, w := range s.Workloads {
		if fields := w.UnboundFields(); len(fields) > 0 {
			notes = append(notes, fmt.Sprintf(
				"workload %q: %s not supported by the %s template and ignored",
				w.Name, strings.Join(fields, ", "), w.Type))
		}
		if w.Type == spec.TypeDatabase {
			notes = append(notes, fmt.Sprintf(
				"workload %q: credentials are generated at apply time and stored in AWS Secrets Manager; retrieve them with \"scoreform credentials %s\"",
				w.Name, w.Name))
		}
	}
	return notes
}
