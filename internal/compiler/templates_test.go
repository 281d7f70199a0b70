package compiler

import (
	"testing"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainerModule(t *testing.T) {
	m := (&containerGenerator{}).Module()
	require.Equal(t, "container", m.Type)

	main := parseBody(t, "main.tf", m.Main)
	for _, want := range [][]string{
		{"aws_ecs_cluster", "this"},
		{"aws_cloudwatch_log_group", "this"},
		{"aws_iam_role", "execution"},
		{"aws_iam_role_policy_attachment", "execution"},
		{"aws_iam_role_policy", "execution_extra"},
		{"aws_iam_role", "task"},
		{"aws_security_group", "lb"},
		{"aws_security_group", "service"},
		{"aws_lb", "this"},
		{"aws_lb_target_group", "this"},
		{"aws_lb_listener", "http"},
		{"aws_ecs_task_definition", "this"},
		{"aws_ecs_service", "this"},
	} {
		assert.NotNil(t, findBlock(main, "resource", want...), "missing resource %v", want)
	}
	assert.NotNil(t, findBlock(main, "data", "aws_region", "current"))

	vars := parseBody(t, "variables.tf", m.Variables)
	assert.Equal(t, 12, countBlocks(vars, "variable"))

	outs := parseBody(t, "outputs.tf", m.Outputs)
	assert.Equal(t, 6, countBlocks(outs, "output"))
	assert.NotNil(t, findBlock(outs, "output", "load_balancer_dns"))
	assert.NotNil(t, findBlock(outs, "output", "log_group"))
}

func TestContainerTaskDefinition(t *testing.T) {
	m := (&containerGenerator{}).Module()
	main := parseBody(t, "main.tf", m.Main)

	td := findBlock(main, "resource", "aws_ecs_task_definition", "this")
	require.NotNil(t, td)

	// The container definitions go through jsonencode at apply time.
	attr, ok := td.Body.Attributes["container_definitions"]
	require.True(t, ok)
	call, ok := attr.Expr.(*hclsyntax.FunctionCallExpr)
	require.True(t, ok, "container_definitions must be a function call")
	assert.Equal(t, "jsonencode", call.Name)

	assert.Equal(t, "awsvpc", attrString(t, td.Body, "network_mode"))
}

func TestFunctionModule(t *testing.T) {
	m := (&functionGenerator{}).Module()
	require.Equal(t, "function", m.Type)

	main := parseBody(t, "main.tf", m.Main)
	for _, want := range [][]string{
		{"aws_iam_role", "this"},
		{"aws_iam_role_policy_attachment", "basic"},
		{"aws_iam_role_policy_attachment", "vpc"},
		{"aws_security_group", "this"},
		{"aws_lambda_function", "this"},
	} {
		assert.NotNil(t, findBlock(main, "resource", want...), "missing resource %v", want)
	}

	fn := findBlock(main, "resource", "aws_lambda_function", "this")
	require.NotNil(t, fn)
	assert.Contains(t, fn.Body.Attributes, "filename")
	assert.Equal(t, 1, countBlocks(fn.Body, "environment"))
	assert.Equal(t, 1, countBlocks(fn.Body, "vpc_config"))

	vars := parseBody(t, "variables.tf", m.Variables)
	assert.Equal(t, 9, countBlocks(vars, "variable"))

	outs := parseBody(t, "outputs.tf", m.Outputs)
	assert.Equal(t, 3, countBlocks(outs, "output"))
}

func TestDatabaseModule(t *testing.T) {
	m := (&databaseGenerator{}).Module()
	require.Equal(t, "database", m.Type)

	main := parseBody(t, "main.tf", m.Main)
	for _, want := range [][]string{
		{"random_password", "this"},
		{"aws_secretsmanager_secret", "this"},
		{"aws_secretsmanager_secret_version", "this"},
		{"aws_db_subnet_group", "this"},
		{"aws_security_group", "this"},
		{"aws_db_instance", "this"},
	} {
		assert.NotNil(t, findBlock(main, "resource", want...), "missing resource %v", want)
	}

	vars := parseBody(t, "variables.tf", m.Variables)
	assert.Equal(t, 11, countBlocks(vars, "variable"))

	outs := parseBody(t, "outputs.tf", m.Outputs)
	assert.Equal(t, 5, countBlocks(outs, "output"))
	assert.NotNil(t, findBlock(outs, "output", "secret_name"))
}

// The instance password must reference the generated random_password,
// never a literal value baked into the tree.
func TestDatabasePasswordIsIndirect(t *testing.T) {
	m := (&databaseGenerator{}).Module()
	main := parseBody(t, "main.tf", m.Main)

	db := findBlock(main, "resource", "aws_db_instance", "this")
	require.NotNil(t, db)

	attr, ok := db.Body.Attributes["password"]
	require.True(t, ok)
	ref, ok := attr.Expr.(*hclsyntax.ScopeTraversalExpr)
	require.True(t, ok, "password must be a reference, got %T", attr.Expr)
	assert.Equal(t, "random_password", ref.Traversal.RootName())
}

func TestGenericModule(t *testing.T) {
	m := (&genericGenerator{typ: "queue"}).Module()
	require.Equal(t, "queue", m.Type)

	main := parseBody(t, "main.tf", m.Main)
	nr := findBlock(main, "resource", "null_resource", "this")
	require.NotNil(t, nr)
	assert.Contains(t, nr.Body.Attributes, "triggers")

	vars := parseBody(t, "variables.tf", m.Variables)
	assert.Equal(t, 4, countBlocks(vars, "variable"))

	outs := parseBody(t, "outputs.tf", m.Outputs)
	assert.Equal(t, 1, countBlocks(outs, "output"))
}

func TestLookupFallsBackToGeneric(t *testing.T) {
	assert.Equal(t, "container", Lookup("container").Type())
	assert.Equal(t, "function", Lookup("function").Type())
	assert.Equal(t, "database", Lookup("database").Type())
	assert.Equal(t, "topic", Lookup("topic").Type())
}
