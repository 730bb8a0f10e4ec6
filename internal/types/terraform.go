package types

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
)

// TerraformVariable declares one entry of a generated variables.tf.
type TerraformVariable struct {
	Name        string
	Type        string
	Description string
	Sensitive   bool
}

// TerraformOutput declares one entry of a generated outputs.tf. Value is a raw
// HCL expression (e.g. "aws_vpc.main.id" or "[aws_subnet.a.id, aws_subnet.b.id]").
type TerraformOutput struct {
	Name        string
	Value       string
	Description string
	Sensitive   bool
}

// AssetProject is a fully rendered Terraform asset directory for one component.
type AssetProject struct {
	ComponentName    string            `json:"component_name"`
	ComponentVersion string            `json:"component_version"`
	MainTf           string            `json:"-"`
	ProvidersTf      string            `json:"-"`
	VariablesTf      string            `json:"-"`
	OutputsTf        string            `json:"-"`
	InputsAutoTfvars string            `json:"-"`
	AdditionalFiles  map[string]string `json:"-"`
}

// WriteToDir writes the project files into dir, creating it if needed, and
// returns the paths written.
func (p *AssetProject) WriteToDir(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory structure: %w", err)
	}

	files := map[string]string{
		"main.tf":            p.MainTf,
		"providers.tf":       p.ProvidersTf,
		"variables.tf":       p.VariablesTf,
		"outputs.tf":         p.OutputsTf,
		"inputs.auto.tfvars": p.InputsAutoTfvars,
	}
	for name, content := range p.AdditionalFiles {
		files[name] = content
	}

	// Stable write order: fixed files first, then additional files by name.
	order := []string{"providers.tf", "variables.tf", "main.tf", "outputs.tf", "inputs.auto.tfvars"}
	order = append(order, slices.Sorted(maps.Keys(p.AdditionalFiles))...)

	var written []string
	for _, name := range order {
		content, ok := files[name]
		if !ok || content == "" {
			continue
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", name, err)
		}
		written = append(written, path)
	}

	return written, nil
}

// TerraformState mirrors the parts of a local terraform.tfstate ncp reads back
// after an apply.
type TerraformState struct {
	Outputs map[string]TerraformOutputValue `json:"outputs"`
}

// TerraformOutputValue is one entry of the state outputs map.
type TerraformOutputValue struct {
	Sensitive bool `json:"sensitive"`
	Type      any  `json:"type"`
	Value     any  `json:"value"`
}

// StringOutput returns a string-typed output by name.
func (s *TerraformState) StringOutput(name string) (string, bool) {
	output, ok := s.Outputs[name]
	if !ok {
		return "", false
	}
	value, ok := output.Value.(string)
	return value, ok
}

// StringListOutput returns a list(string)-typed output by name.
func (s *TerraformState) StringListOutput(name string) ([]string, bool) {
	output, ok := s.Outputs[name]
	if !ok {
		return nil, false
	}
	raw, ok := output.Value.([]any)
	if !ok {
		return nil, false
	}
	values := make([]string, 0, len(raw))
	for _, item := range raw {
		value, ok := item.(string)
		if !ok {
			return nil, false
		}
		values = append(values, value)
	}
	return values, true
}
