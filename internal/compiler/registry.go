package compiler

import (
	"github.com/hashicorp/hcl/v2/hclwrite"

	"github.com/scoreform-io/scoreform/internal/spec"
)

// Generator renders the reusable module for one workload type and binds
// per-workload arguments onto its invocations in the root module.
type Generator interface {
	// Type is the workload type this generator serves.
	Type() string
	// BindArgs sets the type-specific arguments on a module call body.
	BindArgs(body *hclwrite.Body, w *spec.Workload)
	// Module renders the module's variables, main, and outputs files.
	Module() *Module
}

var generators = map[string]Generator{
	spec.TypeContainer: &containerGenerator{},
	spec.TypeFunction:  &functionGenerator{},
	spec.TypeDatabase:  &databaseGenerator{},
}

// Lookup returns the generator for a workload type. Types without a
// dedicated template share the generic stand-in; lookup never fails.
func Lookup(typ string) Generator {
	if g, ok := generators[typ]; ok {
		return g
	}
	return &genericGenerator{typ: typ}
}
