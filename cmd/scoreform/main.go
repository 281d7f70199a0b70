package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/scoreform-io/scoreform/internal/cli"
	"github.com/scoreform-io/scoreform/internal/terraform"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		// A failed terraform step keeps its own exit code so wrapper
		// scripts can tell terraform failures from spec problems.
		var ee *terraform.ExitError
		if errors.As(err, &ee) {
			os.Exit(ee.Code)
		}
		os.Exit(1)
	}
}
