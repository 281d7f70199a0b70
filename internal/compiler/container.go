package compiler

import (
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/scoreform-io/scoreform/internal/spec"
)

// containerGenerator renders the ECS Fargate module: cluster, task
// definition, service, an internet-facing ALB, security groups, IAM
// roles, and a log group.
type containerGenerator struct{}

func (g *containerGenerator) Type() string { return spec.TypeContainer }

func (g *containerGenerator) BindArgs(body *hclwrite.Body, w *spec.Workload) {
	body.SetAttributeTraversal("vpc_id", traversal("module", "network", "vpc_id"))
	body.SetAttributeTraversal("private_subnet_ids", traversal("module", "network", "private_subnets"))
	body.SetAttributeTraversal("public_subnet_ids", traversal("module", "network", "public_subnets"))
	body.AppendNewline()
	body.SetAttributeValue("image", cty.StringVal(w.Image))
	body.SetAttributeValue("cpu", cty.NumberIntVal(int64(w.Resources.CPU)))
	body.SetAttributeValue("memory", cty.NumberIntVal(int64(w.Resources.Memory)))
	body.SetAttributeValue("port", cty.NumberIntVal(int64(w.FirstPort())))
	body.SetAttributeValue("replicas", cty.NumberIntVal(int64(w.Replicas)))
	body.SetAttributeValue("env", ctyStringMap(w.Env))
}

func (g *containerGenerator) Module() *Module {
	return &Module{
		Type:      spec.TypeContainer,
		Variables: g.variables().Bytes(),
		Main:      g.main().Bytes(),
		Outputs:   g.outputs().Bytes(),
	}
}

func (g *containerGenerator) variables() *hclwrite.File {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	appendVariable(body, "name", "Workload name", typeExpr("string"), cty.NilVal)
	appendVariable(body, "environment", "Deployment environment", typeExpr("string"), cty.NilVal)
	appendVariable(body, "vpc_id", "VPC to place the service in", typeExpr("string"), cty.NilVal)
	appendVariable(body, "private_subnet_ids", "Subnets for the service tasks",
		typeExpr("list", "string"), cty.NilVal)
	appendVariable(body, "public_subnet_ids", "Subnets for the load balancer",
		typeExpr("list", "string"), cty.NilVal)
	appendVariable(body, "image", "Container image reference", typeExpr("string"), cty.NilVal)
	appendVariable(body, "cpu", "Task CPU units", typeExpr("number"), cty.NumberIntVal(256))
	appendVariable(body, "memory", "Task memory in MiB", typeExpr("number"), cty.NumberIntVal(512))
	appendVariable(body, "port", "Container port exposed through the load balancer",
		typeExpr("number"), cty.NumberIntVal(80))
	appendVariable(body, "replicas", "Desired task count", typeExpr("number"), cty.NumberIntVal(1))
	appendVariable(body, "env", "Environment variables for the container",
		typeExpr("map", "string"), cty.MapValEmpty(cty.String))
	appendVariable(body, "tags", "Tags applied to every resource",
		typeExpr("map", "string"), cty.MapValEmpty(cty.String))

	return f
}

func (g *containerGenerator) main() *hclwrite.File {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	lb := body.AppendNewBlock("locals", nil).Body()
	lb.SetAttributeRaw("prefix", template(traversal("var", "name"), "-", traversal("var", "environment")))
	body.AppendNewline()

	body.AppendNewBlock("data", []string{"aws_region", "current"})
	body.AppendNewline()

	cb := body.AppendNewBlock("resource", []string{"aws_ecs_cluster", "this"}).Body()
	cb.SetAttributeTraversal("name", traversal("local", "prefix"))
	cb.SetAttributeTraversal("tags", traversal("var", "tags"))
	body.AppendNewline()

	lgb := body.AppendNewBlock("resource", []string{"aws_cloudwatch_log_group", "this"}).Body()
	lgb.SetAttributeRaw("name", template("/ecs/", traversal("local", "prefix")))
	lgb.SetAttributeValue("retention_in_days", cty.NumberIntVal(30))
	lgb.SetAttributeTraversal("tags", traversal("var", "tags"))
	body.AppendNewline()

	g.appendRoles(body)
	g.appendSecurityGroups(body)
	g.appendLoadBalancer(body)

	tdb := body.AppendNewBlock("resource", []string{"aws_ecs_task_definition", "this"}).Body()
	tdb.SetAttributeTraversal("family", traversal("local", "prefix"))
	tdb.SetAttributeValue("requires_compatibilities", cty.ListVal([]cty.Value{cty.StringVal("FARGATE")}))
	tdb.SetAttributeValue("network_mode", cty.StringVal("awsvpc"))
	tdb.SetAttributeTraversal("cpu", traversal("var", "cpu"))
	tdb.SetAttributeTraversal("memory", traversal("var", "memory"))
	tdb.SetAttributeTraversal("execution_role_arn", traversal("aws_iam_role", "execution", "arn"))
	tdb.SetAttributeTraversal("task_role_arn", traversal("aws_iam_role", "task", "arn"))
	tdb.AppendNewline()
	tdb.SetAttributeRaw("container_definitions", jsonEncode(g.containerDefinitions()))
	body.AppendNewline()

	sb := body.AppendNewBlock("resource", []string{"aws_ecs_service", "this"}).Body()
	sb.SetAttributeTraversal("name", traversal("var", "name"))
	sb.SetAttributeTraversal("cluster", traversal("aws_ecs_cluster", "this", "id"))
	sb.SetAttributeTraversal("task_definition", traversal("aws_ecs_task_definition", "this", "arn"))
	sb.SetAttributeTraversal("desired_count", traversal("var", "replicas"))
	sb.SetAttributeValue("launch_type", cty.StringVal("FARGATE"))
	sb.AppendNewline()
	ncb := sb.AppendNewBlock("network_configuration", nil).Body()
	ncb.SetAttributeTraversal("subnets", traversal("var", "private_subnet_ids"))
	ncb.SetAttributeRaw("security_groups", hclwrite.TokensForTuple([]hclwrite.Tokens{
		hclwrite.TokensForTraversal(traversal("aws_security_group", "service", "id")),
	}))
	ncb.SetAttributeValue("assign_public_ip", cty.False)
	sb.AppendNewline()
	lbb := sb.AppendNewBlock("load_balancer", nil).Body()
	lbb.SetAttributeTraversal("target_group_arn", traversal("aws_lb_target_group", "this", "arn"))
	lbb.SetAttributeTraversal("container_name", traversal("var", "name"))
	lbb.SetAttributeTraversal("container_port", traversal("var", "port"))
	sb.AppendNewline()
	sb.SetAttributeRaw("depends_on", hclwrite.TokensForTuple([]hclwrite.Tokens{
		hclwrite.TokensForTraversal(traversal("aws_lb_listener", "http")),
	}))

	return f
}

// containerDefinitions builds the single container entry fed through
// jsonencode() in the task definition.
func (g *containerGenerator) containerDefinitions() hclwrite.Tokens {
	ident := hclwrite.TokensForIdentifier
	str := func(s string) hclwrite.Tokens { return hclwrite.TokensForValue(cty.StringVal(s)) }
	num := func(n int64) hclwrite.Tokens { return hclwrite.TokensForValue(cty.NumberIntVal(n)) }
	ref := func(parts ...string) hclwrite.Tokens {
		return hclwrite.TokensForTraversal(traversal(parts[0], parts[1:]...))
	}

	portMapping := hclwrite.TokensForObject([]hclwrite.ObjectAttrTokens{
		{Name: ident("containerPort"), Value: ref("var", "port")},
		{Name: ident("protocol"), Value: str("tcp")},
	})

	logConfig := hclwrite.TokensForObject([]hclwrite.ObjectAttrTokens{
		{Name: ident("logDriver"), Value: str("awslogs")},
		{Name: ident("options"), Value: hclwrite.TokensForObject([]hclwrite.ObjectAttrTokens{
			{Name: str("awslogs-group"), Value: ref("aws_cloudwatch_log_group", "this", "name")},
			{Name: str("awslogs-region"), Value: ref("data", "aws_region", "current", "name")},
			{Name: str("awslogs-stream-prefix"), Value: ref("var", "name")},
		})},
	})

	healthCheck := hclwrite.TokensForObject([]hclwrite.ObjectAttrTokens{
		{Name: ident("command"), Value: hclwrite.TokensForTuple([]hclwrite.Tokens{
			str("CMD-SHELL"),
			template("curl -f http://localhost:", traversal("var", "port"), "/ || exit 1"),
		})},
		{Name: ident("interval"), Value: num(30)},
		{Name: ident("timeout"), Value: num(5)},
		{Name: ident("retries"), Value: num(3)},
		{Name: ident("startPeriod"), Value: num(60)},
	})

	container := hclwrite.TokensForObject([]hclwrite.ObjectAttrTokens{
		{Name: ident("name"), Value: ref("var", "name")},
		{Name: ident("image"), Value: ref("var", "image")},
		{Name: ident("essential"), Value: hclwrite.TokensForValue(cty.True)},
		{Name: ident("portMappings"), Value: hclwrite.TokensForTuple([]hclwrite.Tokens{portMapping})},
		{Name: ident("environment"), Value: envList()},
		{Name: ident("logConfiguration"), Value: logConfig},
		{Name: ident("healthCheck"), Value: healthCheck},
	})

	return hclwrite.TokensForTuple([]hclwrite.Tokens{container})
}

// envList renders [for k, v in var.env : { name = k, value = v }], the
// shape ECS expects environment variables in.
func envList() hclwrite.Tokens {
	toks := hclwrite.Tokens{
		{Type: hclsyntax.TokenOBrack, Bytes: []byte("[")},
		{Type: hclsyntax.TokenIdent, Bytes: []byte("for")},
		{Type: hclsyntax.TokenIdent, Bytes: []byte("k")},
		{Type: hclsyntax.TokenComma, Bytes: []byte(",")},
		{Type: hclsyntax.TokenIdent, Bytes: []byte("v")},
		{Type: hclsyntax.TokenIdent, Bytes: []byte("in")},
	}
	toks = append(toks, hclwrite.TokensForTraversal(traversal("var", "env"))...)
	toks = append(toks, &hclwrite.Token{Type: hclsyntax.TokenColon, Bytes: []byte(":")})
	toks = append(toks, hclwrite.TokensForObject([]hclwrite.ObjectAttrTokens{
		{Name: hclwrite.TokensForIdentifier("name"), Value: hclwrite.TokensForIdentifier("k")},
		{Name: hclwrite.TokensForIdentifier("value"), Value: hclwrite.TokensForIdentifier("v")},
	})...)
	toks = append(toks, &hclwrite.Token{Type: hclsyntax.TokenCBrack, Bytes: []byte("]")})
	return toks
}

func (g *containerGenerator) appendRoles(body *hclwrite.Body) {
	erb := body.AppendNewBlock("resource", []string{"aws_iam_role", "execution"}).Body()
	erb.SetAttributeRaw("name", template(traversal("local", "prefix"), "-execution"))
	erb.SetAttributeRaw("assume_role_policy", assumeRolePolicy("ecs-tasks.amazonaws.com"))
	erb.SetAttributeTraversal("tags", traversal("var", "tags"))
	body.AppendNewline()

	pab := body.AppendNewBlock("resource", []string{"aws_iam_role_policy_attachment", "execution"}).Body()
	pab.SetAttributeTraversal("role", traversal("aws_iam_role", "execution", "name"))
	pab.SetAttributeValue("policy_arn", cty.StringVal(
		"arn:aws:iam::aws:policy/service-role/AmazonECSTaskExecutionRolePolicy"))
	body.AppendNewline()

	epb := body.AppendNewBlock("resource", []string{"aws_iam_role_policy", "execution_extra"}).Body()
	epb.SetAttributeRaw("name", template(traversal("local", "prefix"), "-execution-extra"))
	epb.SetAttributeTraversal("role", traversal("aws_iam_role", "execution", "id"))
	epb.SetAttributeRaw("policy", jsonEncode(hclwrite.TokensForValue(cty.ObjectVal(map[string]cty.Value{
		"Version": cty.StringVal("2012-10-17"),
		"Statement": cty.TupleVal([]cty.Value{
			cty.ObjectVal(map[string]cty.Value{
				"Effect": cty.StringVal("Allow"),
				"Action": cty.TupleVal([]cty.Value{
					cty.StringVal("ecr:GetAuthorizationToken"),
					cty.StringVal("ecr:BatchGetImage"),
					cty.StringVal("ecr:GetDownloadUrlForLayer"),
					cty.StringVal("logs:CreateLogStream"),
					cty.StringVal("logs:PutLogEvents"),
				}),
				"Resource": cty.StringVal("*"),
			}),
		}),
	}))))
	body.AppendNewline()

	trb := body.AppendNewBlock("resource", []string{"aws_iam_role", "task"}).Body()
	trb.SetAttributeRaw("name", template(traversal("local", "prefix"), "-task"))
	trb.SetAttributeRaw("assume_role_policy", assumeRolePolicy("ecs-tasks.amazonaws.com"))
	trb.SetAttributeTraversal("tags", traversal("var", "tags"))
	body.AppendNewline()
}

func (g *containerGenerator) appendSecurityGroups(body *hclwrite.Body) {
	lsb := body.AppendNewBlock("resource", []string{"aws_security_group", "lb"}).Body()
	lsb.SetAttributeRaw("name_prefix", template(traversal("local", "prefix"), "-lb-"))
	lsb.SetAttributeValue("description", cty.StringVal("Public ingress to the load balancer"))
	lsb.SetAttributeTraversal("vpc_id", traversal("var", "vpc_id"))
	lsb.AppendNewline()
	lin := lsb.AppendNewBlock("ingress", nil).Body()
	lin.SetAttributeValue("from_port", cty.NumberIntVal(80))
	lin.SetAttributeValue("to_port", cty.NumberIntVal(80))
	lin.SetAttributeValue("protocol", cty.StringVal("tcp"))
	lin.SetAttributeValue("cidr_blocks", cty.ListVal([]cty.Value{cty.StringVal("0.0.0.0/0")}))
	lsb.AppendNewline()
	appendOpenEgress(lsb)
	lsb.AppendNewline()
	lsb.SetAttributeTraversal("tags", traversal("var", "tags"))
	body.AppendNewline()

	ssb := body.AppendNewBlock("resource", []string{"aws_security_group", "service"}).Body()
	ssb.SetAttributeRaw("name_prefix", template(traversal("local", "prefix"), "-svc-"))
	ssb.SetAttributeValue("description", cty.StringVal("Service ingress from the load balancer"))
	ssb.SetAttributeTraversal("vpc_id", traversal("var", "vpc_id"))
	ssb.AppendNewline()
	sin := ssb.AppendNewBlock("ingress", nil).Body()
	sin.SetAttributeTraversal("from_port", traversal("var", "port"))
	sin.SetAttributeTraversal("to_port", traversal("var", "port"))
	sin.SetAttributeValue("protocol", cty.StringVal("tcp"))
	sin.SetAttributeRaw("security_groups", hclwrite.TokensForTuple([]hclwrite.Tokens{
		hclwrite.TokensForTraversal(traversal("aws_security_group", "lb", "id")),
	}))
	ssb.AppendNewline()
	appendOpenEgress(ssb)
	ssb.AppendNewline()
	ssb.SetAttributeTraversal("tags", traversal("var", "tags"))
	body.AppendNewline()
}

func (g *containerGenerator) appendLoadBalancer(body *hclwrite.Body) {
	albb := body.AppendNewBlock("resource", []string{"aws_lb", "this"}).Body()
	albb.SetAttributeTraversal("name", traversal("local", "prefix"))
	albb.SetAttributeValue("internal", cty.False)
	albb.SetAttributeValue("load_balancer_type", cty.StringVal("application"))
	albb.SetAttributeRaw("security_groups", hclwrite.TokensForTuple([]hclwrite.Tokens{
		hclwrite.TokensForTraversal(traversal("aws_security_group", "lb", "id")),
	}))
	albb.SetAttributeTraversal("subnets", traversal("var", "public_subnet_ids"))
	albb.SetAttributeTraversal("tags", traversal("var", "tags"))
	body.AppendNewline()

	tgb := body.AppendNewBlock("resource", []string{"aws_lb_target_group", "this"}).Body()
	tgb.SetAttributeTraversal("name", traversal("local", "prefix"))
	tgb.SetAttributeTraversal("port", traversal("var", "port"))
	tgb.SetAttributeValue("protocol", cty.StringVal("HTTP"))
	tgb.SetAttributeTraversal("vpc_id", traversal("var", "vpc_id"))
	tgb.SetAttributeValue("target_type", cty.StringVal("ip"))
	tgb.AppendNewline()
	hcb := tgb.AppendNewBlock("health_check", nil).Body()
	hcb.SetAttributeValue("path", cty.StringVal("/"))
	hcb.SetAttributeValue("interval", cty.NumberIntVal(30))
	hcb.SetAttributeValue("timeout", cty.NumberIntVal(5))
	hcb.SetAttributeValue("healthy_threshold", cty.NumberIntVal(3))
	hcb.SetAttributeValue("unhealthy_threshold", cty.NumberIntVal(3))
	hcb.SetAttributeValue("matcher", cty.StringVal("200-399"))
	tgb.AppendNewline()
	tgb.SetAttributeTraversal("tags", traversal("var", "tags"))
	body.AppendNewline()

	lnb := body.AppendNewBlock("resource", []string{"aws_lb_listener", "http"}).Body()
	lnb.SetAttributeTraversal("load_balancer_arn", traversal("aws_lb", "this", "arn"))
	lnb.SetAttributeValue("port", cty.NumberIntVal(80))
	lnb.SetAttributeValue("protocol", cty.StringVal("HTTP"))
	lnb.AppendNewline()
	dab := lnb.AppendNewBlock("default_action", nil).Body()
	dab.SetAttributeValue("type", cty.StringVal("forward"))
	dab.SetAttributeTraversal("target_group_arn", traversal("aws_lb_target_group", "this", "arn"))
	body.AppendNewline()
}

// appendOpenEgress emits the allow-all egress block shared by the
// generated security groups.
func appendOpenEgress(body *hclwrite.Body) {
	eb := body.AppendNewBlock("egress", nil).Body()
	eb.SetAttributeValue("from_port", cty.NumberIntVal(0))
	eb.SetAttributeValue("to_port", cty.NumberIntVal(0))
	eb.SetAttributeValue("protocol", cty.StringVal("-1"))
	eb.SetAttributeValue("cidr_blocks", cty.ListVal([]cty.Value{cty.StringVal("0.0.0.0/0")}))
}

func (g *containerGenerator) outputs() *hclwrite.File {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	appendOutput(body, "cluster_name", traversal("aws_ecs_cluster", "this", "name"))
	appendOutput(body, "cluster_arn", traversal("aws_ecs_cluster", "this", "arn"))
	appendOutput(body, "service_name", traversal("aws_ecs_service", "this", "name"))
	appendOutput(body, "load_balancer_dns", traversal("aws_lb", "this", "dns_name"))
	appendOutput(body, "log_group", traversal("aws_cloudwatch_log_group", "this", "name"))

	ub := body.AppendNewBlock("output", []string{"url"}).Body()
	ub.SetAttributeRaw("value", template("http://", traversal("aws_lb", "this", "dns_name")))

	return f
}
