package compiler

import (
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/scoreform-io/scoreform/internal/spec"
)

// Provider and shared-module versions are pinned so regenerated trees
// stay reproducible.
const (
	awsProviderVersion    = "~> 5.0"
	randomProviderVersion = "~> 3.6"
	nullProviderVersion   = "~> 3.2"
	vpcModuleSource       = "terraform-aws-modules/vpc/aws"
	vpcModuleVersion      = "5.8.1"
)

// providerFile renders provider.tf: pinned provider requirements plus
// the aws provider configured from var.region.
func providerFile() *hclwrite.File {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	tf := body.AppendNewBlock("terraform", nil).Body()
	rp := tf.AppendNewBlock("required_providers", nil).Body()
	rp.SetAttributeValue("aws", cty.ObjectVal(map[string]cty.Value{
		"source":  cty.StringVal("hashicorp/aws"),
		"version": cty.StringVal(awsProviderVersion),
	}))
	rp.SetAttributeValue("null", cty.ObjectVal(map[string]cty.Value{
		"source":  cty.StringVal("hashicorp/null"),
		"version": cty.StringVal(nullProviderVersion),
	}))
	rp.SetAttributeValue("random", cty.ObjectVal(map[string]cty.Value{
		"source":  cty.StringVal("hashicorp/random"),
		"version": cty.StringVal(randomProviderVersion),
	}))
	body.AppendNewline()

	pb := body.AppendNewBlock("provider", []string{"aws"}).Body()
	pb.SetAttributeTraversal("region", traversal("var", "region"))

	return f
}

// variablesFile renders variables.tf with defaults bound from spec
// metadata, so the tree stays deployable standalone.
func variablesFile(m *spec.Metadata) *hclwrite.File {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	appendVariable(body, "project_name", "Project name used to prefix resource names",
		typeExpr("string"), cty.StringVal(m.Name))
	appendVariable(body, "environment", "Deployment environment",
		typeExpr("string"), cty.StringVal(m.Environment))
	appendVariable(body, "region", "AWS region to deploy into",
		typeExpr("string"), cty.StringVal(m.Region))
	appendVariable(body, "tags", "Tags applied to every resource",
		typeExpr("map", "string"), ctyStringMap(m.Tags))

	return f
}

// mainFile renders main.tf: the shared network, one module invocation
// per workload in declaration order, then the outputs.
func mainFile(s *spec.Spec, topo *Topology) *hclwrite.File {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	nb := body.AppendNewBlock("module", []string{"network"}).Body()
	nb.SetAttributeValue("source", cty.StringVal(vpcModuleSource))
	nb.SetAttributeValue("version", cty.StringVal(vpcModuleVersion))
	nb.AppendNewline()
	nb.SetAttributeRaw("name", template(traversal("var", "project_name"), "-", traversal("var", "environment")))
	nb.SetAttributeValue("cidr", cty.StringVal(topo.CIDR))
	nb.AppendNewline()
	nb.SetAttributeValue("azs", ctyStringList(topo.AZs))
	nb.SetAttributeValue("private_subnets", ctyStringList(topo.PrivateSubnets))
	nb.SetAttributeValue("public_subnets", ctyStringList(topo.PublicSubnets))
	nb.AppendNewline()
	nb.SetAttributeValue("enable_nat_gateway", cty.True)
	nb.SetAttributeValue("single_nat_gateway", cty.True)
	nb.SetAttributeValue("enable_dns_hostnames", cty.True)
	nb.AppendNewline()
	nb.SetAttributeTraversal("tags", traversal("var", "tags"))

	for _, w := range s.Workloads {
		body.AppendNewline()
		mb := body.AppendNewBlock("module", []string{w.Name}).Body()
		mb.SetAttributeValue("source", cty.StringVal("./modules/"+w.Type))
		mb.AppendNewline()
		mb.SetAttributeValue("name", cty.StringVal(w.Name))
		mb.SetAttributeTraversal("environment", traversal("var", "environment"))
		Lookup(w.Type).BindArgs(mb, w)
		mb.AppendNewline()
		mb.SetAttributeTraversal("tags", traversal("var", "tags"))
	}

	body.AppendNewline()
	for _, w := range s.Workloads {
		appendOutput(body, w.Name, traversal("module", w.Name))
	}
	ob := body.AppendNewBlock("output", []string{"vpc_id"}).Body()
	ob.SetAttributeTraversal("value", traversal("module", "network", "vpc_id"))

	return f
}
