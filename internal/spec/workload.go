package spec

import "gopkg.in/yaml.v3"

// Workload types with dedicated infrastructure templates. Any other type
// string is legal and falls through to the generic template.
const (
	TypeContainer = "container"
	TypeFunction  = "function"
	TypeDatabase  = "database"
)

// Workload is one named workload definition. Fields are a union across
// the workload types; only the fields for the declared type are bound
// into generated infrastructure.
type Workload struct {
	Name string `yaml:"-"`
	Type string `yaml:"type"`

	// Container fields.
	Image     string            `yaml:"image"`
	Resources Limits            `yaml:"resources"`
	Ports     []Port            `yaml:"ports"`
	Replicas  int               `yaml:"replicas"`
	Env       map[string]string `yaml:"env"`

	// Function fields. Memory is shared in name only; the container
	// memory default lives under Resources.
	Runtime string `yaml:"runtime"`
	Handler string `yaml:"handler"`
	Memory  int    `yaml:"memory"`

	// Database fields.
	Engine              string `yaml:"engine"`
	Version             string `yaml:"version"`
	InstanceClass       string `yaml:"instanceClass"`
	Storage             int    `yaml:"storage"`
	BackupRetentionDays int    `yaml:"backupRetentionDays"`

	// Accepted in the document but not bound into any template. Generate
	// warns about these so authors know the fields carry no weight.
	HealthCheck map[string]any   `yaml:"healthCheck"`
	Scaling     map[string]any   `yaml:"scaling"`
	Volumes     []map[string]any `yaml:"volumes"`
	DependsOn   []string         `yaml:"dependsOn"`
}

// Limits holds container CPU and memory sizing.
type Limits struct {
	CPU    int `yaml:"cpu"`
	Memory int `yaml:"memory"`
}

// Port is one container port declaration. Both the scalar shorthand
// (- 8080) and the mapping form (- port: 8080) are accepted.
type Port struct {
	Port int `yaml:"port"`
}

// UnmarshalYAML lets a bare scalar stand in for the mapping form.
func (p *Port) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&p.Port)
	}
	type plain Port
	return node.Decode((*plain)(p))
}

// FirstPort returns the first declared container port. Defaults ensure
// containers always have at least one.
func (w *Workload) FirstPort() int {
	if len(w.Ports) == 0 {
		return 0
	}
	return w.Ports[0].Port
}

// UnboundFields names the declared fields that no template consumes.
func (w *Workload) UnboundFields() []string {
	var fields []string
	if len(w.HealthCheck) > 0 {
		fields = append(fields, "healthCheck")
	}
	if len(w.Scaling) > 0 {
		fields = append(fields, "scaling")
	}
	if len(w.Volumes) > 0 {
		fields = append(fields, "volumes")
	}
	if len(w.DependsOn) > 0 {
		fields = append(fields, "dependsOn")
	}
	return fields
}
