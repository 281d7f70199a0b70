package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scoreform-io/scoreform/internal/cleanup"
	"github.com/scoreform-io/scoreform/internal/terraform"
)

var (
	destroyFile        string
	destroyOut         string
	destroyWorkspace   string
	destroyAutoApprove bool
)

var destroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Destroy all managed infrastructure",
	Long: `Destroys everything the Terraform tree manages.

ECS refuses to delete clusters while services still run tasks, so
destroy first scales every deployed service to zero, waits for its
tasks to stop, and force-deletes it. Only then does terraform destroy
run.`,
	RunE: runDestroy,
}

func init() {
	destroyCmd.Flags().StringVarP(&destroyFile, "file", "f", defaultSpecPath, "Path to the spec file")
	destroyCmd.Flags().StringVarP(&destroyOut, "out", "o", defaultOutDir, "Directory holding the Terraform tree")
	destroyCmd.Flags().StringVar(&destroyWorkspace, "workspace", "", "Terraform workspace to select")
	destroyCmd.Flags().BoolVar(&destroyAutoApprove, "auto-approve", false, "Skip interactive approval")
}

func runDestroy(cmd *cobra.Command, args []string) error {
	return teardown(cmd.Context(), destroyFile, destroyOut, destroyAutoApprove, destroyWorkspace)
}

// teardown drains ECS services recorded in state, then runs terraform
// destroy. deploy --destroy routes here too.
func teardown(ctx context.Context, specPath, outDir string, autoApprove bool, workspace string) error {
	s, err := loadSpec(specPath)
	if err != nil {
		return err
	}

	r, err := newRunner(outDir)
	if err != nil {
		return err
	}

	banner("terraform init")
	if err := r.Init(ctx); err != nil {
		return err
	}
	if workspace != "" {
		banner("terraform workspace select " + workspace)
		if err := r.SelectWorkspace(ctx, workspace); err != nil {
			return err
		}
	}

	stepf("Reading state")
	st, err := r.StatePull(ctx)
	if err != nil {
		stepFailed()
		return err
	}
	stepOK(fmt.Sprintf("%d resource(s)", len(st.Resources)))

	if len(st.Resources) == 0 {
		fmt.Println("Nothing to destroy.")
		return nil
	}

	services := st.ECSServices()
	dbs := st.DBIdentifiers()

	var clients *cleanup.Clients
	if len(services) > 0 || len(dbs) > 0 {
		clients, err = cleanup.NewClients(ctx, s.Metadata.Region)
		if err != nil {
			return err
		}
	}

	// Stale databases make terraform destroy fail with a confusing
	// error, so surface them before asking for approval.
	if len(dbs) > 0 {
		stale, err := cleanup.StaleDBInstances(ctx, clients.RDS, dbs)
		if err != nil {
			warnf("could not check database instances: %v", err)
		}
		for _, id := range stale {
			warnf("database %s is in state but no longer exists; run 'terraform state rm' if destroy fails on it", id)
		}
	}

	fmt.Printf("\nDestroy will remove %d resource(s)", len(st.Resources))
	if len(services) > 0 {
		fmt.Printf(", draining %d ECS service(s) first", len(services))
	}
	fmt.Println(".")

	if !autoApprove {
		if !confirm("Do you really want to destroy all resources?") {
			fmt.Println("Destroy cancelled.")
			return nil
		}
	}

	if len(services) > 0 {
		fmt.Printf("\nDraining %d ECS service(s)...\n", len(services))
		drainer := cleanup.NewDrainer(clients.ECS, cleanup.DrainOptions{DeleteServices: true})
		if err := drainer.Drain(ctx, toCleanupServices(services)); err != nil {
			return fmt.Errorf("drain services: %w", err)
		}
	}

	banner("terraform destroy")
	if err := r.Destroy(ctx); err != nil {
		var ee *terraform.ExitError
		if errors.As(err, &ee) {
			for _, hint := range terraform.DestroyHints(ee.Stderr) {
				warnf("%s", hint)
			}
		}
		return err
	}

	fmt.Println("\nDestroy complete! All resources have been deleted.")
	return nil
}
