package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scoreform-io/scoreform/internal/compiler"
)

var validateFile string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the workload spec",
	Long: `Validates the spec file: YAML syntax, workload names, required
fields per workload type, and the shared network layout.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateFile, "file", "f", defaultSpecPath, "Path to the spec file")
}

func runValidate(cmd *cobra.Command, args []string) error {
	s, err := loadSpec(validateFile)
	if err != nil {
		return err
	}

	// A compile dry run catches what field validation cannot, like an
	// unusable network CIDR.
	stepf("Checking generated layout")
	if _, err := compiler.Compile(s); err != nil {
		stepFailed()
		return err
	}
	stepOK("")

	for _, note := range compiler.Notices(s) {
		warnf("%s", note)
	}

	fmt.Println("\nSpec is valid!")
	return nil
}
