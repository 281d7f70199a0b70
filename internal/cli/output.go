package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	outputOut  string
	outputJSON bool
)

var outputCmd = &cobra.Command{
	Use:   "output [name]",
	Short: "Show deployment outputs",
	Long: `Reads root module outputs recorded by the last deploy.

If no name is given, all outputs are displayed. If a name is given,
only that output's value is printed, which makes it scriptable:

  curl "http://$(scoreform output web --json | jq -r .url)"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOutput,
}

func init() {
	outputCmd.Flags().StringVarP(&outputOut, "out", "o", defaultOutDir, "Directory holding the Terraform tree")
	outputCmd.Flags().BoolVar(&outputJSON, "json", false, "Output in JSON format")
}

func runOutput(cmd *cobra.Command, args []string) error {
	outs, err := loadOutputs(cmd.Context(), outputOut)
	if err != nil {
		return fmt.Errorf("failed to read outputs: %w", err)
	}

	if len(args) > 0 {
		name := args[0]
		out, ok := outs[name]
		if !ok {
			return fmt.Errorf("output %q not found", name)
		}
		if outputJSON {
			fmt.Println(compactJSON(out.Value))
			return nil
		}
		// Print bare strings unquoted so values paste cleanly.
		var s string
		if err := json.Unmarshal(out.Value, &s); err == nil {
			fmt.Println(s)
		} else {
			fmt.Println(compactJSON(out.Value))
		}
		return nil
	}

	if len(outs) == 0 {
		fmt.Println("No outputs recorded. Deploy first.")
		return nil
	}

	if outputJSON {
		all := make(map[string]json.RawMessage, len(outs))
		for name, out := range outs {
			all[name] = out.Value
		}
		data, _ := json.MarshalIndent(all, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	for _, line := range outputLines(outs) {
		fmt.Println(line)
	}
	return nil
}
