package compiler

import (
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/scoreform-io/scoreform/internal/spec"
)

// genericGenerator is the fallback for workload types without a
// dedicated template. It emits a null_resource stand-in so unknown
// types compile and plan instead of failing.
type genericGenerator struct {
	typ string
}

func (g *genericGenerator) Type() string { return g.typ }

func (g *genericGenerator) BindArgs(body *hclwrite.Body, w *spec.Workload) {
	body.SetAttributeValue("workload_type", cty.StringVal(w.Type))
}

func (g *genericGenerator) Module() *Module {
	return &Module{
		Type:      g.typ,
		Variables: g.variables().Bytes(),
		Main:      g.main().Bytes(),
		Outputs:   g.outputs().Bytes(),
	}
}

func (g *genericGenerator) variables() *hclwrite.File {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	appendVariable(body, "name", "Workload name", typeExpr("string"), cty.NilVal)
	appendVariable(body, "environment", "Deployment environment", typeExpr("string"), cty.NilVal)
	appendVariable(body, "workload_type", "Declared workload type without a dedicated template",
		typeExpr("string"), cty.NilVal)
	appendVariable(body, "tags", "Tags applied to every resource",
		typeExpr("map", "string"), cty.MapValEmpty(cty.String))

	return f
}

func (g *genericGenerator) main() *hclwrite.File {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	rb := body.AppendNewBlock("resource", []string{"null_resource", "this"}).Body()
	rb.SetAttributeRaw("triggers", hclwrite.TokensForFunctionCall("merge",
		hclwrite.TokensForObject([]hclwrite.ObjectAttrTokens{
			{Name: hclwrite.TokensForIdentifier("name"), Value: hclwrite.TokensForTraversal(traversal("var", "name"))},
			{Name: hclwrite.TokensForIdentifier("environment"), Value: hclwrite.TokensForTraversal(traversal("var", "environment"))},
			{Name: hclwrite.TokensForIdentifier("type"), Value: hclwrite.TokensForTraversal(traversal("var", "workload_type"))},
		}),
		hclwrite.TokensForTraversal(traversal("var", "tags")),
	))

	return f
}

func (g *genericGenerator) outputs() *hclwrite.File {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	b := body.AppendNewBlock("output", []string{"id"}).Body()
	b.SetAttributeTraversal("value", traversal("null_resource", "this", "id"))

	return f
}
