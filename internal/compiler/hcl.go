package compiler

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// traversal builds var.foo style references for SetAttributeTraversal
// and TokensForTraversal.
func traversal(root string, attrs ...string) hcl.Traversal {
	t := hcl.Traversal{hcl.TraverseRoot{Name: root}}
	for _, a := range attrs {
		t = append(t, hcl.TraverseAttr{Name: a})
	}
	return t
}

// template renders a quoted string template. String parts are literal
// text, hcl.Traversal parts become ${} interpolations.
func template(parts ...any) hclwrite.Tokens {
	toks := hclwrite.Tokens{
		{Type: hclsyntax.TokenOQuote, Bytes: []byte(`"`)},
	}
	for _, part := range parts {
		switch p := part.(type) {
		case string:
			toks = append(toks, &hclwrite.Token{Type: hclsyntax.TokenQuotedLit, Bytes: []byte(p)})
		case hcl.Traversal:
			toks = append(toks, &hclwrite.Token{Type: hclsyntax.TokenTemplateInterp, Bytes: []byte("${")})
			toks = append(toks, hclwrite.TokensForTraversal(p)...)
			toks = append(toks, &hclwrite.Token{Type: hclsyntax.TokenTemplateSeqEnd, Bytes: []byte("}")})
		}
	}
	toks = append(toks, &hclwrite.Token{Type: hclsyntax.TokenCQuote, Bytes: []byte(`"`)})
	return toks
}

// jsonEncode wraps expression tokens in a jsonencode() call.
func jsonEncode(v hclwrite.Tokens) hclwrite.Tokens {
	return hclwrite.TokensForFunctionCall("jsonencode", v)
}

// assumeRolePolicy is the IAM trust policy letting one AWS service
// assume a role, rendered as a jsonencode() expression.
func assumeRolePolicy(service string) hclwrite.Tokens {
	doc := cty.ObjectVal(map[string]cty.Value{
		"Version": cty.StringVal("2012-10-17"),
		"Statement": cty.TupleVal([]cty.Value{
			cty.ObjectVal(map[string]cty.Value{
				"Effect": cty.StringVal("Allow"),
				"Principal": cty.ObjectVal(map[string]cty.Value{
					"Service": cty.StringVal(service),
				}),
				"Action": cty.StringVal("sts:AssumeRole"),
			}),
		}),
	})
	return jsonEncode(hclwrite.TokensForValue(doc))
}

// ctyStringMap converts tags or env into a cty map. cty sorts keys, so
// rendering stays byte-identical across runs.
func ctyStringMap(m map[string]string) cty.Value {
	if len(m) == 0 {
		return cty.MapValEmpty(cty.String)
	}
	vals := make(map[string]cty.Value, len(m))
	for k, v := range m {
		vals[k] = cty.StringVal(v)
	}
	return cty.MapVal(vals)
}

// ctyStringList converts a string slice, preserving order.
func ctyStringList(items []string) cty.Value {
	if len(items) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(items))
	for i, s := range items {
		vals[i] = cty.StringVal(s)
	}
	return cty.ListVal(vals)
}

// typeExpr returns tokens for a Terraform type constraint such as
// string, number, or map(string).
func typeExpr(name string, args ...string) hclwrite.Tokens {
	if len(args) == 0 {
		return hclwrite.TokensForIdentifier(name)
	}
	argToks := make([]hclwrite.Tokens, len(args))
	for i, a := range args {
		argToks[i] = hclwrite.TokensForIdentifier(a)
	}
	return hclwrite.TokensForFunctionCall(name, argToks...)
}

// appendVariable emits one variable block. A cty.NilVal default means
// the variable is required.
func appendVariable(body *hclwrite.Body, name, description string, typ hclwrite.Tokens, def cty.Value) {
	b := body.AppendNewBlock("variable", []string{name}).Body()
	b.SetAttributeValue("description", cty.StringVal(description))
	b.SetAttributeRaw("type", typ)
	if def != cty.NilVal {
		b.SetAttributeValue("default", def)
	}
	body.AppendNewline()
}

// appendOutput emits one output block whose value is a traversal.
func appendOutput(body *hclwrite.Body, name string, value hcl.Traversal) {
	b := body.AppendNewBlock("output", []string{name}).Body()
	b.SetAttributeTraversal("value", value)
	body.AppendNewline()
}
