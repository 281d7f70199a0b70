package cli

import (
	"fmt"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
)

var noColor bool

// colorize returns an ANSI code, or an empty string when --no-color is
// set so piped output stays clean.
func colorize(code string) string {
	if noColor {
		return ""
	}
	return code
}

// stepf prints an in-progress step label, leaving the cursor on the
// line so stepOK or stepFailed can finish it.
func stepf(format string, args ...any) {
	fmt.Printf(format+"... ", args...)
}

func stepOK(detail string) {
	if detail != "" {
		fmt.Printf("%sOK%s (%s)\n", colorize(ansiGreen), colorize(ansiReset), detail)
		return
	}
	fmt.Printf("%sOK%s\n", colorize(ansiGreen), colorize(ansiReset))
}

func stepFailed() {
	fmt.Printf("%sFAILED%s\n", colorize(ansiRed), colorize(ansiReset))
}

func warnf(format string, args ...any) {
	fmt.Printf("%s[WARN]%s %s\n", colorize(ansiYellow), colorize(ansiReset), fmt.Sprintf(format, args...))
}

// banner announces a streamed terraform step.
func banner(label string) {
	fmt.Printf("\nRunning %s...\n", label)
}

// confirm prompts the operator and accepts y or yes.
func confirm(prompt string) bool {
	fmt.Printf("\n%s (y/n): ", prompt)
	var response string
	fmt.Scanln(&response)
	return response == "y" || response == "yes"
}
