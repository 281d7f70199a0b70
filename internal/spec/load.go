package spec

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Workload and project names become Terraform block labels, so they are
// held to Terraform's identifier rules.
var namePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*$`)

// Load reads, decodes, and validates a SCORE spec file.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("read spec: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes and validates spec bytes. The path only labels errors.
func Parse(data []byte, path string) (*Spec, error) {
	var s Spec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	s.applyDefaults()
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// applyDefaults fills every documented default. Zero values count as
// omitted, matching how the original generator treated empty fields.
func (s *Spec) applyDefaults() {
	m := &s.Metadata
	if m.Name == "" {
		m.Name = DefaultName
	}
	if m.Provider == "" {
		m.Provider = DefaultProvider
	}
	if m.Region == "" {
		m.Region = DefaultRegion
	}
	if m.Environment == "" {
		m.Environment = DefaultEnvironment
	}
	if m.Tags == nil {
		m.Tags = map[string]string{}
	}
	if s.Resources.Networking.CIDR == "" {
		s.Resources.Networking.CIDR = DefaultCIDR
	}

	for _, w := range s.Workloads {
		if w.Type == "" {
			w.Type = "generic"
		}
		switch w.Type {
		case TypeContainer:
			if w.Resources.CPU == 0 {
				w.Resources.CPU = 256
			}
			if w.Resources.Memory == 0 {
				w.Resources.Memory = 512
			}
			if len(w.Ports) == 0 {
				w.Ports = []Port{{Port: 80}}
			}
			if w.Replicas == 0 {
				w.Replicas = 1
			}
			if w.Env == nil {
				w.Env = map[string]string{}
			}
		case TypeFunction:
			if w.Memory == 0 {
				w.Memory = 128
			}
			if w.Env == nil {
				w.Env = map[string]string{}
			}
		case TypeDatabase:
			if w.InstanceClass == "" {
				w.InstanceClass = "db.t3.micro"
			}
			if w.Storage == 0 {
				w.Storage = 20
			}
			if w.BackupRetentionDays == 0 {
				w.BackupRetentionDays = 7
			}
		}
	}
}

// validate reports every missing required field and malformed name in
// one pass. Unknown workload types are legal; they only have to be
// usable as a module directory name.
func (s *Spec) validate() error {
	var problems []string

	if !namePattern.MatchString(s.Metadata.Name) {
		problems = append(problems, fmt.Sprintf("metadata.name %q is not a valid Terraform identifier", s.Metadata.Name))
	}

	for _, w := range s.Workloads {
		if !namePattern.MatchString(w.Name) {
			problems = append(problems, fmt.Sprintf("workload %q: name is not a valid Terraform identifier", w.Name))
		}
		// Module and output labels are generated from these.
		if w.Name == "network" || w.Name == "vpc_id" {
			problems = append(problems, fmt.Sprintf("workload %q: name collides with a generated block", w.Name))
		}
		if !namePattern.MatchString(w.Type) {
			problems = append(problems, fmt.Sprintf("workload %q: type %q is not usable as a module directory", w.Name, w.Type))
		}
		switch w.Type {
		case TypeContainer:
			if w.Image == "" {
				problems = append(problems, fmt.Sprintf("workload %q: container requires image", w.Name))
			}
		case TypeFunction:
			if w.Runtime == "" {
				problems = append(problems, fmt.Sprintf("workload %q: function requires runtime", w.Name))
			}
			if w.Handler == "" {
				problems = append(problems, fmt.Sprintf("workload %q: function requires handler", w.Name))
			}
		case TypeDatabase:
			if w.Engine == "" {
				problems = append(problems, fmt.Sprintf("workload %q: database requires engine", w.Name))
			}
			if w.Version == "" {
				problems = append(problems, fmt.Sprintf("workload %q: database requires version", w.Name))
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
