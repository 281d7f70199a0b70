package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new Scoreform project",
	Long:  `Creates a starter score.yaml in the current directory.`,
	RunE:  runInit,
}

const starterSpec = `# Scoreform workload spec
# See: https://github.com/scoreform-io/scoreform

metadata:
  name: my-app
  provider: aws
  region: us-west-2
  environment: dev

workloads:
  web:
    type: container
    image: nginx:latest
    ports:
      - 8080
    env:
      LOG_LEVEL: info

  main-db:
    type: database
    engine: postgres
    version: "16"
`

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(defaultSpecPath); err == nil {
		fmt.Printf("%s already exists, leaving it untouched.\n", defaultSpecPath)
	} else {
		if err := os.WriteFile(defaultSpecPath, []byte(starterSpec), 0644); err != nil {
			return fmt.Errorf("failed to create %s: %w", defaultSpecPath, err)
		}
		fmt.Printf("Created %s\n", defaultSpecPath)
	}

	fmt.Println("\nScoreform initialized successfully!")
	fmt.Println("Next steps:")
	fmt.Println("  1. Edit score.yaml to describe your workloads")
	fmt.Println("  2. Run 'scoreform generate' to render the Terraform tree")
	fmt.Println("  3. Run 'scoreform deploy' to provision it")

	return nil
}
