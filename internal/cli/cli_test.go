package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoreform-io/scoreform/internal/cleanup"
	"github.com/scoreform-io/scoreform/internal/spec"
	"github.com/scoreform-io/scoreform/internal/terraform"
)

func TestColorize(t *testing.T) {
	// When noColor is false, colorize should return the code
	noColor = false
	assert.Equal(t, "\033[31m", colorize("\033[31m"))

	// When noColor is true, colorize should return empty string
	noColor = true
	assert.Equal(t, "", colorize("\033[31m"))

	// Reset
	noColor = false
}

func TestStarterSpecIsLoadable(t *testing.T) {
	s, err := spec.Parse([]byte(starterSpec), defaultSpecPath)
	require.NoError(t, err)

	require.Len(t, s.Workloads, 2)
	assert.Equal(t, "web", s.Workloads[0].Name)
	assert.Equal(t, spec.TypeContainer, s.Workloads[0].Type)
	assert.Equal(t, "main-db", s.Workloads[1].Name)
	assert.Equal(t, spec.TypeDatabase, s.Workloads[1].Type)
}

func TestOutputLines(t *testing.T) {
	outs := map[string]terraform.Output{
		"web": {Value: json.RawMessage(`{"url": "http://lb.example.com"}`)},
		"db":  {Sensitive: true, Value: json.RawMessage(`"secret"`)},
		"vpc": {Value: json.RawMessage(`"vpc-123"`)},
	}

	lines := outputLines(outs)

	assert.Equal(t, []string{
		`db = (sensitive)`,
		`vpc = "vpc-123"`,
		`web = {"url":"http://lb.example.com"}`,
	}, lines)
}

func TestCompactJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, compactJSON(json.RawMessage("{\n  \"a\": 1\n}")))
	// Invalid JSON passes through untouched.
	assert.Equal(t, "not-json", compactJSON(json.RawMessage("not-json")))
}

func TestToCleanupServices(t *testing.T) {
	in := []terraform.ECSService{
		{Cluster: "arn:aws:ecs:us-west-2:123456789012:cluster/web-dev", Service: "web"},
		{Cluster: "worker-dev", Service: "worker"},
	}

	out := toCleanupServices(in)

	assert.Equal(t, []cleanup.Service{
		{Cluster: "web-dev", Name: "web"},
		{Cluster: "worker-dev", Name: "worker"},
	}, out)
}

type mockLogs struct {
	pages  []*cloudwatchlogs.FilterLogEventsOutput
	inputs []*cloudwatchlogs.FilterLogEventsInput
}

func (m *mockLogs) FilterLogEvents(_ context.Context, in *cloudwatchlogs.FilterLogEventsInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error) {
	m.inputs = append(m.inputs, in)
	return m.pages[len(m.inputs)-1], nil
}

func TestFetchLogsFollowsPagination(t *testing.T) {
	m := &mockLogs{
		pages: []*cloudwatchlogs.FilterLogEventsOutput{
			{
				Events: []cwtypes.FilteredLogEvent{
					{Timestamp: aws.Int64(1700000000000), Message: aws.String("starting up\n")},
				},
				NextToken: aws.String("page2"),
			},
			{
				Events: []cwtypes.FilteredLogEvent{
					{Timestamp: aws.Int64(1700000001000), Message: aws.String("ready")},
				},
			},
		},
	}

	var buf bytes.Buffer
	n, err := fetchLogs(context.Background(), m, &buf, "/ecs/web-dev", "", time.Hour)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, buf.String(), "starting up\n")
	assert.Contains(t, buf.String(), "ready\n")

	require.Len(t, m.inputs, 2)
	assert.Equal(t, "/ecs/web-dev", aws.ToString(m.inputs[0].LogGroupName))
	assert.Nil(t, m.inputs[0].FilterPattern)
	assert.Equal(t, "page2", aws.ToString(m.inputs[1].NextToken))
	assert.Greater(t, aws.ToInt64(m.inputs[0].StartTime), int64(0))
}

func TestFetchLogsPassesFilterPattern(t *testing.T) {
	m := &mockLogs{pages: []*cloudwatchlogs.FilterLogEventsOutput{{}}}

	var buf bytes.Buffer
	n, err := fetchLogs(context.Background(), m, &buf, "/ecs/web-dev", "ERROR", time.Hour)

	require.NoError(t, err)
	assert.Equal(t, 0, n)
	require.Len(t, m.inputs, 1)
	assert.Equal(t, "ERROR", aws.ToString(m.inputs[0].FilterPattern))
}

func TestRenderCredentials(t *testing.T) {
	secret := `{"username":"app","password":"s3cr3t"}`

	text, err := renderCredentials(secret, "db.example.com", 5432, "postgres", false)
	require.NoError(t, err)
	assert.Equal(t, "Host:     db.example.com\nPort:     5432\nEngine:   postgres\nUsername: app\nPassword: s3cr3t\n", text)

	out, err := renderCredentials(secret, "db.example.com", 5432, "postgres", true)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"host": "db.example.com",
		"port": 5432,
		"engine": "postgres",
		"username": "app",
		"password": "s3cr3t"
	}`, out)
}

func TestRenderCredentialsRejectsBadPayload(t *testing.T) {
	_, err := renderCredentials("not-json", "db.example.com", 5432, "postgres", false)
	assert.Error(t, err)
}

func TestLoadOutputsFromSidecar(t *testing.T) {
	dir := t.TempDir()
	raw := `{"web":{"sensitive":false,"value":{"url":"http://lb.example.com"}}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, outputsFileName), []byte(raw), 0644))

	outs, err := loadOutputs(context.Background(), dir)

	require.NoError(t, err)
	require.Contains(t, outs, "web")
	assert.JSONEq(t, `{"url":"http://lb.example.com"}`, string(outs["web"].Value))
}
