// Package emit writes a compiled project to disk in the fixed layout
// Terraform expects: root files plus modules/<type>/ directories.
package emit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/scoreform-io/scoreform/internal/compiler"
	"github.com/scoreform-io/scoreform/internal/logging"
)

// Write renders a project under dir. Existing generated files are fully
// overwritten on every run; hand edits to them do not survive. Returns
// the relative paths written, in a fixed order.
func Write(dir string, p *compiler.Project) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var written []string
	rootFiles := []struct {
		name string
		body []byte
	}{
		{"provider.tf", p.Provider},
		{"variables.tf", p.Variables},
		{"main.tf", p.Main},
	}
	for _, f := range rootFiles {
		if err := writeFile(filepath.Join(dir, f.name), f.body); err != nil {
			return nil, err
		}
		written = append(written, f.name)
	}

	for _, m := range p.Modules {
		modDir := filepath.Join(dir, "modules", m.Type)
		if err := os.MkdirAll(modDir, 0755); err != nil {
			return nil, fmt.Errorf("create module directory %s: %w", modDir, err)
		}
		moduleFiles := []struct {
			name string
			body []byte
		}{
			{"variables.tf", m.Variables},
			{"main.tf", m.Main},
			{"outputs.tf", m.Outputs},
		}
		for _, f := range moduleFiles {
			if err := writeFile(filepath.Join(modDir, f.name), f.body); err != nil {
				return nil, err
			}
			written = append(written, filepath.Join("modules", m.Type, f.name))
		}
	}

	logging.Debug("project written", "dir", dir, "files", len(written))
	return written, nil
}

func writeFile(path string, body []byte) error {
	if err := os.WriteFile(path, body, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
