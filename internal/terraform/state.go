package terraform

import (
	"encoding/json"
	"fmt"
	"strings"
)

// State is the subset of the terraform state format we read for
// pre-destroy inspection. Scoreform never writes state.
type State struct {
	Version          int             `json:"version"`
	TerraformVersion string          `json:"terraform_version"`
	Serial           uint64          `json:"serial"`
	Lineage          string          `json:"lineage"`
	Resources        []StateResource `json:"resources"`
}

// StateResource is one resource entry in the state.
type StateResource struct {
	Module    string          `json:"module"`
	Mode      string          `json:"mode"`
	Type      string          `json:"type"`
	Name      string          `json:"name"`
	Provider  string          `json:"provider"`
	Instances []StateInstance `json:"instances"`
}

// StateInstance holds one instance's flattened attributes.
type StateInstance struct {
	Attributes map[string]any `json:"attributes"`
}

// ECSService identifies one deployed service for draining.
type ECSService struct {
	Cluster string
	Service string
}

// ParseState decodes terraform state pull output.
func ParseState(raw []byte) (*State, error) {
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode terraform state: %w", err)
	}
	return &s, nil
}

// ECSServices lists the managed ECS services recorded in the state, for
// draining before destroy.
func (s *State) ECSServices() []ECSService {
	var services []ECSService
	for _, r := range s.Resources {
		if r.Mode != "managed" || r.Type != "aws_ecs_service" {
			continue
		}
		for _, inst := range r.Instances {
			name, _ := inst.Attributes["name"].(string)
			cluster, _ := inst.Attributes["cluster"].(string)
			if name == "" || cluster == "" {
				continue
			}
			services = append(services, ECSService{Cluster: cluster, Service: name})
		}
	}
	return services
}

// DBIdentifiers lists the managed RDS instance identifiers in the state.
func (s *State) DBIdentifiers() []string {
	var ids []string
	for _, r := range s.Resources {
		if r.Mode != "managed" || r.Type != "aws_db_instance" {
			continue
		}
		for _, inst := range r.Instances {
			if id, _ := inst.Attributes["identifier"].(string); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// ClusterName extracts the short cluster name from an ARN. State files
// record the cluster as an ARN while the ECS API accepts either form.
func ClusterName(cluster string) string {
	if i := strings.LastIndex(cluster, "/"); i >= 0 {
		return cluster[i+1:]
	}
	return cluster
}
