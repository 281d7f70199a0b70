package terraform

import (
	"encoding/json"
	"fmt"
)

// Output is one entry of terraform output -json. Value stays raw JSON
// because output shapes vary per workload type.
type Output struct {
	Sensitive bool            `json:"sensitive"`
	Type      json.RawMessage `json:"type"`
	Value     json.RawMessage `json:"value"`
}

// ParseOutputs decodes terraform output -json (and the outputs.json
// file deploy writes next to the generated tree).
func ParseOutputs(raw []byte) (map[string]Output, error) {
	outs := map[string]Output{}
	if len(raw) == 0 {
		return outs, nil
	}
	if err := json.Unmarshal(raw, &outs); err != nil {
		return nil, fmt.Errorf("decode terraform outputs: %w", err)
	}
	return outs, nil
}
