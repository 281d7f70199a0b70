package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/spf13/cobra"

	"github.com/scoreform-io/scoreform/internal/spec"
)

var (
	credentialsFile string
	credentialsOut  string
	credentialsJSON bool
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials <workload>",
	Short: "Show managed database credentials",
	Long: `Retrieves the generated credentials for a database workload from
AWS Secrets Manager, combined with the connection details from the
deployment outputs.

Passwords never appear in the spec or the Terraform tree; this command
is the supported way to read them.`,
	Args: cobra.ExactArgs(1),
	RunE: runCredentials,
}

func init() {
	credentialsCmd.Flags().StringVarP(&credentialsFile, "file", "f", defaultSpecPath, "Path to the spec file")
	credentialsCmd.Flags().StringVarP(&credentialsOut, "out", "o", defaultOutDir, "Directory holding the Terraform tree")
	credentialsCmd.Flags().BoolVar(&credentialsJSON, "json", false, "Output in JSON format")
}

// secretsAPI is the slice of Secrets Manager the command uses.
type secretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

func runCredentials(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	name := args[0]

	s, err := spec.Load(credentialsFile)
	if err != nil {
		return err
	}
	w := s.Workloads.Find(name)
	if w == nil {
		return fmt.Errorf("workload %q not found in %s", name, credentialsFile)
	}
	if w.Type != spec.TypeDatabase {
		return fmt.Errorf("workload %q is a %s workload; only databases have managed credentials", name, w.Type)
	}

	outs, err := loadOutputs(ctx, credentialsOut)
	if err != nil {
		return fmt.Errorf("failed to read outputs: %w", err)
	}
	entry, ok := outs[name]
	if !ok {
		return fmt.Errorf("no outputs recorded for %q; deploy first", name)
	}

	var db struct {
		Address    string `json:"address"`
		Port       int    `json:"port"`
		Engine     string `json:"engine"`
		SecretName string `json:"secret_name"`
	}
	if err := json.Unmarshal(entry.Value, &db); err != nil {
		return fmt.Errorf("unexpected output shape for %q: %w", name, err)
	}
	if db.SecretName == "" {
		return fmt.Errorf("no secret recorded for %q; deploy first", name)
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(s.Metadata.Region))
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}
	secret, err := fetchSecret(ctx, secretsmanager.NewFromConfig(cfg), db.SecretName)
	if err != nil {
		return fmt.Errorf("read secret %s: %w", db.SecretName, err)
	}

	text, err := renderCredentials(secret, db.Address, db.Port, db.Engine, credentialsJSON)
	if err != nil {
		return err
	}
	fmt.Print(text)
	return nil
}

func fetchSecret(ctx context.Context, api secretsAPI, name string) (string, error) {
	out, err := api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.SecretString), nil
}

// renderCredentials merges the secret payload with the connection
// details from the outputs into printable form.
func renderCredentials(secretJSON, address string, port int, engine string, asJSON bool) (string, error) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal([]byte(secretJSON), &creds); err != nil {
		return "", fmt.Errorf("secret payload is not the expected JSON: %w", err)
	}

	if asJSON {
		data, err := json.MarshalIndent(map[string]any{
			"host":     address,
			"port":     port,
			"engine":   engine,
			"username": creds.Username,
			"password": creds.Password,
		}, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Host:     %s\n", address)
	fmt.Fprintf(&b, "Port:     %d\n", port)
	fmt.Fprintf(&b, "Engine:   %s\n", engine)
	fmt.Fprintf(&b, "Username: %s\n", creds.Username)
	fmt.Fprintf(&b, "Password: %s\n", creds.Password)
	return b.String(), nil
}
