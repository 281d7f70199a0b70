package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scoreform-io/scoreform/internal/logging"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "scoreform",
	Short: "Compile SCORE workload specs into deployable Terraform",
	Long: `Scoreform turns a declarative score.yaml into a ready-to-apply
Terraform project and drives the terraform binary through plan, deploy,
and destroy.

It provides a workload-first path to AWS with:
  • One YAML file describing workloads, not resources
  • Deterministic, reviewable Terraform output
  • Database credentials generated into AWS Secrets Manager
  • Teardown that drains ECS services before destroy`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(logLevel)
	},
}

// Execute runs the root command. Ctrl-C cancels the command context so
// in-flight terraform subprocesses and AWS calls stop cleanly.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable ANSI colors in output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, or error")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(destroyCmd)
	rootCmd.AddCommand(outputCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(credentialsCmd)
	rootCmd.AddCommand(versionCmd)
}
