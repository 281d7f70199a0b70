package spec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSpec = `
metadata:
  name: shop
  environment: staging
  region: eu-west-1
  tags:
    team: platform
workloads:
  web:
    type: container
    image: nginx:latest
    resources:
      cpu: 256
      memory: 512
    ports:
      - port: 80
    replicas: 2
  worker:
    type: container
    image: shop/worker:1.4
  resize:
    type: function
    runtime: nodejs18.x
    handler: index.handler
  main-db:
    type: database
    engine: postgres
    version: "15"
resources:
  networking:
    cidr: 10.42.0.0/16
`

func TestParseSampleSpec(t *testing.T) {
	s, err := Parse([]byte(sampleSpec), "score.yaml")
	require.NoError(t, err)

	assert.Equal(t, "shop", s.Metadata.Name)
	assert.Equal(t, "aws", s.Metadata.Provider)
	assert.Equal(t, "staging", s.Metadata.Environment)
	assert.Equal(t, "eu-west-1", s.Metadata.Region)
	assert.Equal(t, map[string]string{"team": "platform"}, s.Metadata.Tags)
	assert.Equal(t, "10.42.0.0/16", s.Resources.Networking.CIDR)

	// Declaration order must survive decoding.
	require.Len(t, s.Workloads, 4)
	assert.Equal(t, "web", s.Workloads[0].Name)
	assert.Equal(t, "worker", s.Workloads[1].Name)
	assert.Equal(t, "resize", s.Workloads[2].Name)
	assert.Equal(t, "main-db", s.Workloads[3].Name)

	web := s.Workloads[0]
	assert.Equal(t, TypeContainer, web.Type)
	assert.Equal(t, "nginx:latest", web.Image)
	assert.Equal(t, 256, web.Resources.CPU)
	assert.Equal(t, 512, web.Resources.Memory)
	assert.Equal(t, 80, web.FirstPort())
	assert.Equal(t, 2, web.Replicas)
}

func TestContainerDefaults(t *testing.T) {
	s, err := Parse([]byte(`
workloads:
  app:
    type: container
    image: app:1
`), "score.yaml")
	require.NoError(t, err)

	app := s.Workloads[0]
	assert.Equal(t, 256, app.Resources.CPU)
	assert.Equal(t, 512, app.Resources.Memory)
	assert.Equal(t, 80, app.FirstPort())
	assert.Equal(t, 1, app.Replicas)
	assert.NotNil(t, app.Env)
}

func TestMetadataDefaults(t *testing.T) {
	s, err := Parse([]byte("workloads: {}\n"), "score.yaml")
	require.NoError(t, err)

	assert.Equal(t, DefaultName, s.Metadata.Name)
	assert.Equal(t, DefaultProvider, s.Metadata.Provider)
	assert.Equal(t, DefaultRegion, s.Metadata.Region)
	assert.Equal(t, DefaultEnvironment, s.Metadata.Environment)
	assert.Empty(t, s.Metadata.Tags)
	assert.Equal(t, DefaultCIDR, s.Resources.Networking.CIDR)
	assert.Empty(t, s.Workloads)
}

func TestFunctionAndDatabaseDefaults(t *testing.T) {
	s, err := Parse([]byte(`
workloads:
  fn:
    type: function
    runtime: python3.12
    handler: app.handler
  db:
    type: database
    engine: mysql
    version: "8.0"
`), "score.yaml")
	require.NoError(t, err)

	fn := s.Workloads[0]
	assert.Equal(t, 128, fn.Memory)

	db := s.Workloads[1]
	assert.Equal(t, "db.t3.micro", db.InstanceClass)
	assert.Equal(t, 20, db.Storage)
	assert.Equal(t, 7, db.BackupRetentionDays)
}

func TestScalarPortShorthand(t *testing.T) {
	s, err := Parse([]byte(`
workloads:
  app:
    type: container
    image: app:1
    ports:
      - 8080
      - port: 9090
`), "score.yaml")
	require.NoError(t, err)

	require.Len(t, s.Workloads[0].Ports, 2)
	assert.Equal(t, 8080, s.Workloads[0].FirstPort())
	assert.Equal(t, 9090, s.Workloads[0].Ports[1].Port)
}

func TestUnknownTypeIsLegal(t *testing.T) {
	s, err := Parse([]byte(`
workloads:
  mystery:
    type: queue
`), "score.yaml")
	require.NoError(t, err)
	assert.Equal(t, "queue", s.Workloads[0].Type)
}

func TestMissingTypeBecomesGeneric(t *testing.T) {
	s, err := Parse([]byte("workloads:\n  blob: {}\n"), "score.yaml")
	require.NoError(t, err)
	assert.Equal(t, "generic", s.Workloads[0].Type)
}

func TestReservedWorkloadName(t *testing.T) {
	_, err := Parse([]byte(`
workloads:
  network:
    type: container
    image: app:1
`), "score.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collides with a generated block")
}

// Missing required fields fail at load. The legacy generator silently
// interpolated the literal string "undefined" into output instead.
func TestRequiredFieldValidation(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		problem string
	}{
		{
			name:    "container missing image",
			doc:     "workloads:\n  web:\n    type: container\n",
			problem: `workload "web": container requires image`,
		},
		{
			name:    "function missing runtime",
			doc:     "workloads:\n  fn:\n    type: function\n    handler: app.handler\n",
			problem: `workload "fn": function requires runtime`,
		},
		{
			name:    "function missing handler",
			doc:     "workloads:\n  fn:\n    type: function\n    runtime: python3.12\n",
			problem: `workload "fn": function requires handler`,
		},
		{
			name:    "database missing engine",
			doc:     "workloads:\n  db:\n    type: database\n    version: \"15\"\n",
			problem: `workload "db": database requires engine`,
		},
		{
			name:    "database missing version",
			doc:     "workloads:\n  db:\n    type: database\n    engine: postgres\n",
			problem: `workload "db": database requires version`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), "score.yaml")
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Problems, tt.problem)
		})
	}
}

func TestValidationCollectsAllProblems(t *testing.T) {
	_, err := Parse([]byte(`
workloads:
  web:
    type: container
  db:
    type: database
`), "score.yaml")
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 3)
}

func TestInvalidWorkloadName(t *testing.T) {
	_, err := Parse([]byte(`
workloads:
  "my app":
    type: container
    image: app:1
`), "score.yaml")
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "not a valid Terraform identifier")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)

	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "score.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workloads: [not: a: mapping\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)

	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestWorkloadsMustBeMapping(t *testing.T) {
	_, err := Parse([]byte("workloads:\n  - type: container\n"), "score.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a mapping")
}

func TestUnboundFields(t *testing.T) {
	s, err := Parse([]byte(`
workloads:
  web:
    type: container
    image: app:1
    healthCheck:
      path: /health
    scaling:
      min: 1
      max: 5
    dependsOn:
      - db
`), "score.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{"healthCheck", "scaling", "dependsOn"}, s.Workloads[0].UnboundFields())
}

func TestEnvCoercesScalars(t *testing.T) {
	s, err := Parse([]byte(`
workloads:
  web:
    type: container
    image: app:1
    env:
      PORT: 8080
      DEBUG: true
      NAME: svc
`), "score.yaml")
	require.NoError(t, err)

	env := s.Workloads[0].Env
	assert.Equal(t, "8080", env["PORT"])
	assert.Equal(t, "true", env["DEBUG"])
	assert.Equal(t, "svc", env["NAME"])
}
