package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/scoreform-io/scoreform/internal/terraform"
)

var (
	deployFile         string
	deployOut          string
	deployWorkspace    string
	deployAutoApprove  bool
	deploySkipGenerate bool
	deployDestroy      bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Generate, plan, and apply the infrastructure",
	Long: `Runs the full pipeline: compile the spec, write the Terraform tree,
terraform init, validate, plan, and apply. The plan is shown and must
be approved unless --auto-approve is set.

Root module outputs are saved next to the tree as outputs.json for
'scoreform output' and 'scoreform credentials'.`,
	RunE: runDeploy,
}

func init() {
	deployCmd.Flags().StringVarP(&deployFile, "file", "f", defaultSpecPath, "Path to the spec file")
	deployCmd.Flags().StringVarP(&deployOut, "out", "o", defaultOutDir, "Directory holding the Terraform tree")
	deployCmd.Flags().StringVar(&deployWorkspace, "workspace", "", "Terraform workspace to select, created on first use")
	deployCmd.Flags().BoolVar(&deployAutoApprove, "auto-approve", false, "Skip interactive approval of the plan")
	deployCmd.Flags().BoolVar(&deploySkipGenerate, "skip-generate", false, "Deploy the existing tree without regenerating it")
	deployCmd.Flags().BoolVar(&deployDestroy, "destroy", false, "Tear down instead of deploying")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if deployDestroy {
		return teardown(ctx, deployFile, deployOut, deployAutoApprove, deployWorkspace)
	}

	// 1. Compile the spec into a Terraform tree
	s, err := loadSpec(deployFile)
	if err != nil {
		return err
	}
	if !deploySkipGenerate {
		if _, err := generate(s, deployOut); err != nil {
			return err
		}
	}

	r, err := newRunner(deployOut)
	if err != nil {
		return err
	}

	// 2. Initialize and plan
	banner("terraform init")
	if err := r.Init(ctx); err != nil {
		return err
	}
	if deployWorkspace != "" {
		banner("terraform workspace select " + deployWorkspace)
		if err := r.SelectWorkspace(ctx, deployWorkspace); err != nil {
			return err
		}
	}
	banner("terraform validate")
	if err := r.Validate(ctx); err != nil {
		return err
	}
	banner("terraform plan")
	if err := r.Plan(ctx, planFileName); err != nil {
		return err
	}

	// 3. Confirm
	if !deployAutoApprove {
		if !confirm("Do you want to deploy these changes?") {
			fmt.Println("Deploy cancelled.")
			return nil
		}
	}

	// 4. Apply the saved plan
	banner("terraform apply")
	if err := r.Apply(ctx, planFileName); err != nil {
		return err
	}

	// 5. Record outputs for later commands
	fmt.Println("\nDeploy complete!")
	raw, err := r.OutputJSON(ctx)
	if err != nil {
		warnf("could not read outputs: %v", err)
		return nil
	}
	sidecar := filepath.Join(deployOut, outputsFileName)
	if err := os.WriteFile(sidecar, raw, 0644); err != nil {
		warnf("could not write %s: %v", sidecar, err)
	}

	outs, err := terraform.ParseOutputs(raw)
	if err != nil {
		warnf("could not parse outputs: %v", err)
		return nil
	}
	if len(outs) > 0 {
		fmt.Println("\nOutputs:")
		for _, line := range outputLines(outs) {
			fmt.Printf("  %s\n", line)
		}
	}

	return nil
}
