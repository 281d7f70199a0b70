package compiler

import (
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/scoreform-io/scoreform/internal/spec"
)

// databaseGenerator renders the RDS module. Credentials are never
// written into the spec or the generated source: a random password is
// created at apply time and kept in Secrets Manager, and only the
// secret's name leaves the module.
type databaseGenerator struct{}

func (g *databaseGenerator) Type() string { return spec.TypeDatabase }

func (g *databaseGenerator) BindArgs(body *hclwrite.Body, w *spec.Workload) {
	body.SetAttributeTraversal("vpc_id", traversal("module", "network", "vpc_id"))
	body.SetAttributeTraversal("private_subnet_ids", traversal("module", "network", "private_subnets"))
	body.AppendNewline()
	body.SetAttributeValue("engine", cty.StringVal(w.Engine))
	body.SetAttributeValue("engine_version", cty.StringVal(w.Version))
	body.SetAttributeValue("instance_class", cty.StringVal(w.InstanceClass))
	body.SetAttributeValue("allocated_storage", cty.NumberIntVal(int64(w.Storage)))
	body.SetAttributeValue("backup_retention_days", cty.NumberIntVal(int64(w.BackupRetentionDays)))
	body.SetAttributeValue("port", cty.NumberIntVal(int64(enginePort(w.Engine))))
}

// enginePort maps a database engine to its wire port. Unrecognized
// engines fall back to the SQL Server port.
func enginePort(engine string) int {
	switch engine {
	case "postgres":
		return 5432
	case "mysql":
		return 3306
	default:
		return 1433
	}
}

func (g *databaseGenerator) Module() *Module {
	return &Module{
		Type:      spec.TypeDatabase,
		Variables: g.variables().Bytes(),
		Main:      g.main().Bytes(),
		Outputs:   g.outputs().Bytes(),
	}
}

func (g *databaseGenerator) variables() *hclwrite.File {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	appendVariable(body, "name", "Workload name", typeExpr("string"), cty.NilVal)
	appendVariable(body, "environment", "Deployment environment", typeExpr("string"), cty.NilVal)
	appendVariable(body, "vpc_id", "VPC to place the database in", typeExpr("string"), cty.NilVal)
	appendVariable(body, "private_subnet_ids", "Subnets for the DB subnet group",
		typeExpr("list", "string"), cty.NilVal)
	appendVariable(body, "engine", "Database engine", typeExpr("string"), cty.NilVal)
	appendVariable(body, "engine_version", "Engine version", typeExpr("string"), cty.NilVal)
	appendVariable(body, "instance_class", "RDS instance class",
		typeExpr("string"), cty.StringVal("db.t3.micro"))
	appendVariable(body, "allocated_storage", "Storage in GiB", typeExpr("number"), cty.NumberIntVal(20))
	appendVariable(body, "backup_retention_days", "Days to retain automated backups",
		typeExpr("number"), cty.NumberIntVal(7))
	appendVariable(body, "port", "Port the engine listens on", typeExpr("number"), cty.NumberIntVal(5432))
	appendVariable(body, "tags", "Tags applied to every resource",
		typeExpr("map", "string"), cty.MapValEmpty(cty.String))

	return f
}

func (g *databaseGenerator) main() *hclwrite.File {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	lb := body.AppendNewBlock("locals", nil).Body()
	lb.SetAttributeRaw("prefix", template(traversal("var", "name"), "-", traversal("var", "environment")))
	body.AppendNewline()

	pwb := body.AppendNewBlock("resource", []string{"random_password", "this"}).Body()
	pwb.SetAttributeValue("length", cty.NumberIntVal(32))
	pwb.SetAttributeValue("special", cty.False)
	body.AppendNewline()

	scb := body.AppendNewBlock("resource", []string{"aws_secretsmanager_secret", "this"}).Body()
	scb.SetAttributeRaw("name", template(traversal("local", "prefix"), "-credentials"))
	scb.SetAttributeValue("recovery_window_in_days", cty.NumberIntVal(0))
	scb.SetAttributeTraversal("tags", traversal("var", "tags"))
	body.AppendNewline()

	svb := body.AppendNewBlock("resource", []string{"aws_secretsmanager_secret_version", "this"}).Body()
	svb.SetAttributeTraversal("secret_id", traversal("aws_secretsmanager_secret", "this", "id"))
	svb.SetAttributeRaw("secret_string", jsonEncode(hclwrite.TokensForObject([]hclwrite.ObjectAttrTokens{
		{Name: hclwrite.TokensForIdentifier("username"), Value: hclwrite.TokensForValue(cty.StringVal("app"))},
		{Name: hclwrite.TokensForIdentifier("password"), Value: hclwrite.TokensForTraversal(traversal("random_password", "this", "result"))},
	})))
	body.AppendNewline()

	sgrb := body.AppendNewBlock("resource", []string{"aws_db_subnet_group", "this"}).Body()
	sgrb.SetAttributeTraversal("name", traversal("local", "prefix"))
	sgrb.SetAttributeTraversal("subnet_ids", traversal("var", "private_subnet_ids"))
	sgrb.SetAttributeTraversal("tags", traversal("var", "tags"))
	body.AppendNewline()

	sgb := body.AppendNewBlock("resource", []string{"aws_security_group", "this"}).Body()
	sgb.SetAttributeRaw("name_prefix", template(traversal("local", "prefix"), "-db-"))
	sgb.SetAttributeValue("description", cty.StringVal("Database ingress from inside the VPC"))
	sgb.SetAttributeTraversal("vpc_id", traversal("var", "vpc_id"))
	sgb.AppendNewline()
	inb := sgb.AppendNewBlock("ingress", nil).Body()
	inb.SetAttributeTraversal("from_port", traversal("var", "port"))
	inb.SetAttributeTraversal("to_port", traversal("var", "port"))
	inb.SetAttributeValue("protocol", cty.StringVal("tcp"))
	inb.SetAttributeValue("cidr_blocks", cty.ListVal([]cty.Value{cty.StringVal("10.0.0.0/8")}))
	sgb.AppendNewline()
	appendOpenEgress(sgb)
	sgb.AppendNewline()
	sgb.SetAttributeTraversal("tags", traversal("var", "tags"))
	body.AppendNewline()

	dbb := body.AppendNewBlock("resource", []string{"aws_db_instance", "this"}).Body()
	dbb.SetAttributeTraversal("identifier", traversal("local", "prefix"))
	dbb.SetAttributeTraversal("engine", traversal("var", "engine"))
	dbb.SetAttributeTraversal("engine_version", traversal("var", "engine_version"))
	dbb.SetAttributeTraversal("instance_class", traversal("var", "instance_class"))
	dbb.SetAttributeTraversal("allocated_storage", traversal("var", "allocated_storage"))
	dbb.SetAttributeTraversal("backup_retention_period", traversal("var", "backup_retention_days"))
	dbb.SetAttributeTraversal("port", traversal("var", "port"))
	dbb.AppendNewline()
	dbb.SetAttributeValue("username", cty.StringVal("app"))
	dbb.SetAttributeTraversal("password", traversal("random_password", "this", "result"))
	dbb.AppendNewline()
	dbb.SetAttributeTraversal("db_subnet_group_name", traversal("aws_db_subnet_group", "this", "name"))
	dbb.SetAttributeRaw("vpc_security_group_ids", hclwrite.TokensForTuple([]hclwrite.Tokens{
		hclwrite.TokensForTraversal(traversal("aws_security_group", "this", "id")),
	}))
	dbb.AppendNewline()
	dbb.SetAttributeValue("skip_final_snapshot", cty.True)
	dbb.SetAttributeTraversal("tags", traversal("var", "tags"))

	return f
}

func (g *databaseGenerator) outputs() *hclwrite.File {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	appendOutput(body, "address", traversal("aws_db_instance", "this", "address"))
	appendOutput(body, "port", traversal("aws_db_instance", "this", "port"))
	appendOutput(body, "engine", traversal("aws_db_instance", "this", "engine"))
	appendOutput(body, "secret_name", traversal("aws_secretsmanager_secret", "this", "name"))

	ab := body.AppendNewBlock("output", []string{"secret_arn"}).Body()
	ab.SetAttributeTraversal("value", traversal("aws_secretsmanager_secret", "this", "arn"))

	return f
}
