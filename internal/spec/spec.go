// Package spec defines the typed model for SCORE workload specifications
// and loads them from YAML with defaults applied and required fields
// validated up front.
package spec

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Default metadata values applied when the spec omits them.
const (
	DefaultName        = "score-app"
	DefaultProvider    = "aws"
	DefaultRegion      = "us-west-2"
	DefaultEnvironment = "dev"
	DefaultCIDR        = "10.0.0.0/16"
)

// Spec is the top-level SCORE document.
type Spec struct {
	Metadata  Metadata  `yaml:"metadata"`
	Workloads Workloads `yaml:"workloads"`
	Resources Shared    `yaml:"resources"`
}

// Metadata carries deployment-wide identity. Every field is optional.
type Metadata struct {
	Name        string            `yaml:"name"`
	Provider    string            `yaml:"provider"`
	Region      string            `yaml:"region"`
	Environment string            `yaml:"environment"`
	Tags        map[string]string `yaml:"tags"`
}

// Shared holds resources consumed by all workloads. Only networking is
// interpreted; anything else passes through untouched.
type Shared struct {
	Networking Networking `yaml:"networking"`
}

// Networking configures the shared VPC.
type Networking struct {
	CIDR string `yaml:"cidr"`
}

// Workloads is an ordered list of workloads. YAML gives us a mapping of
// name to definition; declaration order is preserved because generated
// output must be byte-identical across runs.
type Workloads []*Workload

// Find returns the workload with the given name, or nil.
func (w Workloads) Find(name string) *Workload {
	for _, wl := range w {
		if wl.Name == name {
			return wl
		}
	}
	return nil
}

// UnmarshalYAML decodes the workloads mapping while keeping key order.
func (w *Workloads) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("workloads must be a mapping, got %s", nodeKind(node.Kind))
	}
	out := make(Workloads, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		wl := &Workload{}
		if err := node.Content[i+1].Decode(wl); err != nil {
			return fmt.Errorf("workload %q: %w", node.Content[i].Value, err)
		}
		wl.Name = node.Content[i].Value
		out = append(out, wl)
	}
	*w = out
	return nil
}

func nodeKind(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
