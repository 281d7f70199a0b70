package terraform

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleState = `{
  "version": 4,
  "terraform_version": "1.9.5",
  "serial": 11,
  "lineage": "c2b1f7a0-7c9f-4b21-b7a3-2f94fd05b2a1",
  "resources": [
    {
      "module": "module.web",
      "mode": "managed",
      "type": "aws_ecs_service",
      "name": "this",
      "provider": "provider[\"registry.terraform.io/hashicorp/aws\"]",
      "instances": [
        {
          "attributes": {
            "name": "web",
            "cluster": "arn:aws:ecs:us-west-2:123456789012:cluster/web-dev",
            "desired_count": 2
          }
        }
      ]
    },
    {
      "module": "module.web",
      "mode": "data",
      "type": "aws_ecs_service",
      "name": "lookup",
      "provider": "provider[\"registry.terraform.io/hashicorp/aws\"]",
      "instances": [
        {"attributes": {"name": "ignored", "cluster": "ignored"}}
      ]
    },
    {
      "module": "module.db",
      "mode": "managed",
      "type": "aws_db_instance",
      "name": "this",
      "provider": "provider[\"registry.terraform.io/hashicorp/aws\"]",
      "instances": [
        {"attributes": {"identifier": "db-dev"}}
      ]
    }
  ]
}`

func TestParseState(t *testing.T) {
	s, err := ParseState([]byte(sampleState))
	require.NoError(t, err)

	assert.Equal(t, 4, s.Version)
	assert.Equal(t, uint64(11), s.Serial)
	require.Len(t, s.Resources, 3)
}

func TestECSServicesSkipsDataResources(t *testing.T) {
	s, err := ParseState([]byte(sampleState))
	require.NoError(t, err)

	services := s.ECSServices()
	require.Len(t, services, 1)
	assert.Equal(t, "web", services[0].Service)
	assert.Equal(t, "arn:aws:ecs:us-west-2:123456789012:cluster/web-dev", services[0].Cluster)
}

func TestDBIdentifiers(t *testing.T) {
	s, err := ParseState([]byte(sampleState))
	require.NoError(t, err)

	assert.Equal(t, []string{"db-dev"}, s.DBIdentifiers())
}

func TestParseStateRejectsGarbage(t *testing.T) {
	_, err := ParseState([]byte("not json"))
	assert.Error(t, err)
}

func TestClusterName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"arn:aws:ecs:us-west-2:123456789012:cluster/web-dev", "web-dev"},
		{"web-dev", "web-dev"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClusterName(tt.input))
		})
	}
}

func TestParseOutputs(t *testing.T) {
	raw := []byte(`{
  "web": {"sensitive": false, "type": ["object", {"url": "string"}], "value": {"url": "http://lb.example"}},
  "vpc_id": {"sensitive": false, "type": "string", "value": "vpc-0abc"}
}`)

	outs, err := ParseOutputs(raw)
	require.NoError(t, err)
	require.Len(t, outs, 2)
	assert.JSONEq(t, `"vpc-0abc"`, string(outs["vpc_id"].Value))
	assert.False(t, outs["web"].Sensitive)
}

func TestParseOutputsEmpty(t *testing.T) {
	outs, err := ParseOutputs(nil)
	require.NoError(t, err)
	assert.Empty(t, outs)
}

func TestDestroyHints(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   string
	}{
		{
			name:   "active services",
			stderr: "Error: ClusterContainsServicesException: The Cluster cannot be deleted while Services are active.",
			want:   "drained",
		},
		{
			name:   "stale db reference",
			stderr: "Error: DBInstanceNotFound: DBInstance db-dev not found",
			want:   "terraform state rm",
		},
		{
			name:   "vpc dependency",
			stderr: "Error: DependencyViolation: The vpc has dependencies and cannot be deleted",
			want:   "NAT gateway",
		},
		{
			name:   "unknown failure",
			stderr: "Error: something unexpected",
			want:   "retrying is safe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hints := DestroyHints(tt.stderr)
			require.NotEmpty(t, hints)
			assert.Contains(t, hints[0], tt.want)
		})
	}
}

func TestDestroyHintsCleanStderr(t *testing.T) {
	assert.Empty(t, DestroyHints(""))
}

func TestWrapRunErrorExitCode(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	runErr := exec.Command(sh, "-c", "exit 3").Run()
	require.Error(t, runErr)

	wrapped := wrapRunError("plan", "boom", runErr)
	var ee *ExitError
	require.ErrorAs(t, wrapped, &ee)
	assert.Equal(t, "plan", ee.Step)
	assert.Equal(t, 3, ee.Code)
	assert.Equal(t, "boom", ee.Stderr)
	assert.Contains(t, ee.Error(), "exit code 3")
}

func TestWrapRunErrorNil(t *testing.T) {
	assert.NoError(t, wrapRunError("plan", "", nil))
}
