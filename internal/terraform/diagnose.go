package terraform

import "strings"

// DestroyHints maps a failed destroy's stderr onto remediation advice.
// Matching is on known AWS error signatures; unknown failures get the
// generic retry note since destroy is idempotent.
func DestroyHints(stderr string) []string {
	var hints []string
	if strings.Contains(stderr, "Cluster cannot be deleted while Services are active") ||
		strings.Contains(stderr, "The service cannot be stopped while it is scaled above 0") {
		hints = append(hints,
			`ECS services are still active; run "scoreform destroy" again so they are drained before the cluster is removed`)
	}
	if strings.Contains(stderr, "DBInstanceNotFound") {
		hints = append(hints,
			`the state references a database instance that no longer exists; remove it with "terraform state rm" and retry`)
	}
	if strings.Contains(stderr, "DependencyViolation") {
		hints = append(hints,
			"a VPC dependency such as a NAT gateway or network interface is still releasing; wait a minute and retry")
	}
	if len(hints) == 0 && stderr != "" {
		hints = append(hints,
			"inspect the terraform error above; resources that failed to destroy are still in state, so retrying is safe")
	}
	return hints
}
