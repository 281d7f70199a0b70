package compiler

import (
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/scoreform-io/scoreform/internal/spec"
)

// functionGenerator renders the Lambda module. The deployment artifact
// is a placeholder zip next to the module; packaging code is out of
// scope here and belongs to the application's own build.
type functionGenerator struct{}

func (g *functionGenerator) Type() string { return spec.TypeFunction }

func (g *functionGenerator) BindArgs(body *hclwrite.Body, w *spec.Workload) {
	body.SetAttributeTraversal("vpc_id", traversal("module", "network", "vpc_id"))
	body.SetAttributeTraversal("private_subnet_ids", traversal("module", "network", "private_subnets"))
	body.AppendNewline()
	body.SetAttributeValue("runtime", cty.StringVal(w.Runtime))
	body.SetAttributeValue("handler", cty.StringVal(w.Handler))
	body.SetAttributeValue("memory_size", cty.NumberIntVal(int64(w.Memory)))
	body.SetAttributeValue("env", ctyStringMap(w.Env))
}

func (g *functionGenerator) Module() *Module {
	return &Module{
		Type:      spec.TypeFunction,
		Variables: g.variables().Bytes(),
		Main:      g.main().Bytes(),
		Outputs:   g.outputs().Bytes(),
	}
}

func (g *functionGenerator) variables() *hclwrite.File {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	appendVariable(body, "name", "Workload name", typeExpr("string"), cty.NilVal)
	appendVariable(body, "environment", "Deployment environment", typeExpr("string"), cty.NilVal)
	appendVariable(body, "vpc_id", "VPC to attach the function to", typeExpr("string"), cty.NilVal)
	appendVariable(body, "private_subnet_ids", "Subnets for the function's network interfaces",
		typeExpr("list", "string"), cty.NilVal)
	appendVariable(body, "runtime", "Lambda runtime identifier", typeExpr("string"), cty.NilVal)
	appendVariable(body, "handler", "Function entry point", typeExpr("string"), cty.NilVal)
	appendVariable(body, "memory_size", "Function memory in MiB", typeExpr("number"), cty.NumberIntVal(128))
	appendVariable(body, "env", "Environment variables for the function",
		typeExpr("map", "string"), cty.MapValEmpty(cty.String))
	appendVariable(body, "tags", "Tags applied to every resource",
		typeExpr("map", "string"), cty.MapValEmpty(cty.String))

	return f
}

func (g *functionGenerator) main() *hclwrite.File {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	lb := body.AppendNewBlock("locals", nil).Body()
	lb.SetAttributeRaw("prefix", template(traversal("var", "name"), "-", traversal("var", "environment")))
	body.AppendNewline()

	rb := body.AppendNewBlock("resource", []string{"aws_iam_role", "this"}).Body()
	rb.SetAttributeRaw("name", template(traversal("local", "prefix"), "-role"))
	rb.SetAttributeRaw("assume_role_policy", assumeRolePolicy("lambda.amazonaws.com"))
	rb.SetAttributeTraversal("tags", traversal("var", "tags"))
	body.AppendNewline()

	bab := body.AppendNewBlock("resource", []string{"aws_iam_role_policy_attachment", "basic"}).Body()
	bab.SetAttributeTraversal("role", traversal("aws_iam_role", "this", "name"))
	bab.SetAttributeValue("policy_arn", cty.StringVal(
		"arn:aws:iam::aws:policy/service-role/AWSLambdaBasicExecutionRole"))
	body.AppendNewline()

	vab := body.AppendNewBlock("resource", []string{"aws_iam_role_policy_attachment", "vpc"}).Body()
	vab.SetAttributeTraversal("role", traversal("aws_iam_role", "this", "name"))
	vab.SetAttributeValue("policy_arn", cty.StringVal(
		"arn:aws:iam::aws:policy/service-role/AWSLambdaVPCAccessExecutionRole"))
	body.AppendNewline()

	sgb := body.AppendNewBlock("resource", []string{"aws_security_group", "this"}).Body()
	sgb.SetAttributeRaw("name_prefix", template(traversal("local", "prefix"), "-fn-"))
	sgb.SetAttributeValue("description", cty.StringVal("Egress for the function"))
	sgb.SetAttributeTraversal("vpc_id", traversal("var", "vpc_id"))
	sgb.AppendNewline()
	appendOpenEgress(sgb)
	sgb.AppendNewline()
	sgb.SetAttributeTraversal("tags", traversal("var", "tags"))
	body.AppendNewline()

	fnb := body.AppendNewBlock("resource", []string{"aws_lambda_function", "this"}).Body()
	fnb.SetAttributeTraversal("function_name", traversal("local", "prefix"))
	fnb.SetAttributeTraversal("role", traversal("aws_iam_role", "this", "arn"))
	fnb.SetAttributeTraversal("runtime", traversal("var", "runtime"))
	fnb.SetAttributeTraversal("handler", traversal("var", "handler"))
	fnb.SetAttributeTraversal("memory_size", traversal("var", "memory_size"))
	fnb.SetAttributeValue("timeout", cty.NumberIntVal(30))
	fnb.AppendNewline()
	fnb.SetAttributeRaw("filename", template(traversal("path", "module"), "/function.zip"))
	fnb.AppendNewline()
	evb := fnb.AppendNewBlock("environment", nil).Body()
	evb.SetAttributeTraversal("variables", traversal("var", "env"))
	fnb.AppendNewline()
	vcb := fnb.AppendNewBlock("vpc_config", nil).Body()
	vcb.SetAttributeTraversal("subnet_ids", traversal("var", "private_subnet_ids"))
	vcb.SetAttributeRaw("security_group_ids", hclwrite.TokensForTuple([]hclwrite.Tokens{
		hclwrite.TokensForTraversal(traversal("aws_security_group", "this", "id")),
	}))
	fnb.AppendNewline()
	fnb.SetAttributeTraversal("tags", traversal("var", "tags"))

	return f
}

func (g *functionGenerator) outputs() *hclwrite.File {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	appendOutput(body, "function_name", traversal("aws_lambda_function", "this", "function_name"))
	appendOutput(body, "function_arn", traversal("aws_lambda_function", "this", "arn"))

	ib := body.AppendNewBlock("output", []string{"invoke_arn"}).Body()
	ib.SetAttributeTraversal("value", traversal("aws_lambda_function", "this", "invoke_arn"))

	return f
}
