package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	planFile         string
	planOut          string
	planWorkspace    string
	planSkipGenerate bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate and show a terraform execution plan",
	Long: `Regenerates the Terraform tree, then runs terraform init and plan
against it. The plan is saved so a following deploy applies exactly
what was reviewed.`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planFile, "file", "f", defaultSpecPath, "Path to the spec file")
	planCmd.Flags().StringVarP(&planOut, "out", "o", defaultOutDir, "Directory holding the Terraform tree")
	planCmd.Flags().StringVar(&planWorkspace, "workspace", "", "Terraform workspace to select, created on first use")
	planCmd.Flags().BoolVar(&planSkipGenerate, "skip-generate", false, "Plan the existing tree without regenerating it")
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := loadSpec(planFile)
	if err != nil {
		return err
	}
	if !planSkipGenerate {
		if _, err := generate(s, planOut); err != nil {
			return err
		}
	}

	r, err := newRunner(planOut)
	if err != nil {
		return err
	}

	banner("terraform init")
	if err := r.Init(ctx); err != nil {
		return err
	}
	if planWorkspace != "" {
		banner("terraform workspace select " + planWorkspace)
		if err := r.SelectWorkspace(ctx, planWorkspace); err != nil {
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

	fmt.Printf("\nPlan saved to %s.\n", filepath.Join(planOut, planFileName))
	fmt.Println("Run 'scoreform deploy --skip-generate' to apply it.")
	return nil
}
