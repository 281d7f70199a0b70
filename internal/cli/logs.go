package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/smithy-go"
	"github.com/spf13/cobra"

	"github.com/scoreform-io/scoreform/internal/spec"
)

var (
	logsFile   string
	logsSince  time.Duration
	logsFilter string
)

var logsCmd = &cobra.Command{
	Use:   "logs <workload>",
	Short: "Show recent logs for a container workload",
	Long: `Fetches recent CloudWatch log events for a deployed container
workload. Containers log to the group /ecs/<name>-<environment>.`,
	Args: cobra.ExactArgs(1),
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().StringVarP(&logsFile, "file", "f", defaultSpecPath, "Path to the spec file")
	logsCmd.Flags().DurationVar(&logsSince, "since", time.Hour, "How far back to fetch events")
	logsCmd.Flags().StringVar(&logsFilter, "filter", "", "CloudWatch Logs filter pattern")
}

// logsAPI is the slice of CloudWatch Logs the command uses.
type logsAPI interface {
	FilterLogEvents(ctx context.Context, params *cloudwatchlogs.FilterLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error)
}

func runLogs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	name := args[0]

	s, err := spec.Load(logsFile)
	if err != nil {
		return err
	}
	w := s.Workloads.Find(name)
	if w == nil {
		return fmt.Errorf("workload %q not found in %s", name, logsFile)
	}
	if w.Type != spec.TypeContainer {
		return fmt.Errorf("workload %q is a %s workload; logs are only collected for containers", name, w.Type)
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(s.Metadata.Region))
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	group := fmt.Sprintf("/ecs/%s-%s", name, s.Metadata.Environment)
	fmt.Printf("Showing logs for %s (group %s, last %s):\n\n", name, group, logsSince)

	n, err := fetchLogs(ctx, cloudwatchlogs.NewFromConfig(cfg), os.Stdout, group, logsFilter, logsSince)
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) && ae.ErrorCode() == "ResourceNotFoundException" {
			return fmt.Errorf("log group %s not found; has %q been deployed?", group, name)
		}
		return fmt.Errorf("fetch logs: %w", err)
	}
	if n == 0 {
		fmt.Println("No log events in the requested window.")
	}
	return nil
}

// fetchLogs streams matching events to w, following pagination, and
// returns how many events were printed.
func fetchLogs(ctx context.Context, api logsAPI, w io.Writer, group, pattern string, since time.Duration) (int, error) {
	input := &cloudwatchlogs.FilterLogEventsInput{
		LogGroupName: aws.String(group),
		StartTime:    aws.Int64(time.Now().Add(-since).UnixMilli()),
	}
	if pattern != "" {
		input.FilterPattern = aws.String(pattern)
	}

	count := 0
	for {
		out, err := api.FilterLogEvents(ctx, input)
		if err != nil {
			return count, err
		}
		for _, ev := range out.Events {
			ts := time.UnixMilli(aws.ToInt64(ev.Timestamp)).UTC().Format(time.RFC3339)
			fmt.Fprintf(w, "[%s] %s\n", ts, strings.TrimRight(aws.ToString(ev.Message), "\n"))
		}
		count += len(out.Events)
		if out.NextToken == nil {
			return count, nil
		}
		input.NextToken = out.NextToken
	}
}
