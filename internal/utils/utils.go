package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudcomb/ncp/internal/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// sets flag values from corresponding environment variables if flags weren't explicitly provided
func BindEnvToFlags(cmd *cobra.Command) error {
	v := viper.New()

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		flagName := f.Name

		// Convert flag name to environment variable name
		// e.g., "vpc-cidr" -> "VPC_CIDR"
		envVarName := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))

		v.BindEnv(flagName, envVarName)

		// If the flag wasn't explicitly set via command line
		// AND
		// there's a value available from environment,
		// THEN
		// set the flag value from the environment
		if !f.Changed && v.IsSet(flagName) {
			val := v.Get(flagName)
			cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val))
		}
	})

	return nil
}

// ParseTagAssignments turns repeated key=value flag entries into a tag map.
func ParseTagAssignments(entries []string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	tags := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, found := strings.Cut(entry, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid tag %q: expected key=value", entry)
		}
		tags[key] = value
	}
	return tags, nil
}

// ParseTerraformState reads the local terraform.tfstate of an applied asset
// directory and returns its outputs. Used by reporting commands that need the
// provisioned resource ids without shelling out to terraform.
func ParseTerraformState(assetDir string) (*types.TerraformState, error) {
	stateFile, err := os.ReadFile(filepath.Join(assetDir, "terraform.tfstate"))
	if err != nil {
		return nil, err
	}

	var terraformState types.TerraformState
	if err := json.Unmarshal(stateFile, &terraformState); err != nil {
		return nil, fmt.Errorf("failed to unmarshal terraform state: %w", err)
	}

	if len(terraformState.Outputs) == 0 {
		return nil, fmt.Errorf("terraform outputs are missing - has the deployment been applied?")
	}

	return &terraformState, nil
}
