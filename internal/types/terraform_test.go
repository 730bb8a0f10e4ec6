package types

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetProjectWriteToDir(t *testing.T) {
	dir := t.TempDir()

	project := AssetProject{
		ComponentName:    ComponentNetwork,
		ComponentVersion: "1.2.0",
		MainTf:           "resource \"aws_vpc\" \"main\" {}\n",
		ProvidersTf:      "terraform {}\n",
		VariablesTf:      "variable \"vpc_cidr\" {}\n",
		OutputsTf:        "output \"vpc_id\" {}\n",
		InputsAutoTfvars: "vpc_cidr = \"10.0.0.0/16\"\n",
		AdditionalFiles: map[string]string{
			"README.md": "# network\n",
		},
	}

	target := filepath.Join(dir, "production", "network")
	written, err := project.WriteToDir(target)
	require.NoError(t, err)
	assert.Len(t, written, 6)

	content, err := os.ReadFile(filepath.Join(target, "main.tf"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "aws_vpc")

	content, err = os.ReadFile(filepath.Join(target, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "# network")
}

func TestAssetProjectWriteToDirSkipsEmptyFiles(t *testing.T) {
	dir := t.TempDir()

	project := AssetProject{
		ComponentName: ComponentGithubOidc,
		MainTf:        "resource \"aws_iam_role\" \"github\" {}\n",
	}

	written, err := project.WriteToDir(dir)
	require.NoError(t, err)
	assert.Len(t, written, 1)

	_, err = os.Stat(filepath.Join(dir, "outputs.tf"))
	assert.True(t, os.IsNotExist(err))
}

func TestTerraformStateOutputs(t *testing.T) {
	state := TerraformState{
		Outputs: map[string]TerraformOutputValue{
			"vpc_id": {Type: "string", Value: "vpc-0123456789abcdef0"},
			"nat_gateway_ids": {
				Type:  []any{"list", "string"},
				Value: []any{"nat-aaa", "nat-bbb"},
			},
		},
	}

	vpcId, ok := state.StringOutput("vpc_id")
	require.True(t, ok)
	assert.Equal(t, "vpc-0123456789abcdef0", vpcId)

	_, ok = state.StringOutput("missing")
	assert.False(t, ok)

	natIds, ok := state.StringListOutput("nat_gateway_ids")
	require.True(t, ok)
	assert.Equal(t, []string{"nat-aaa", "nat-bbb"}, natIds)

	_, ok = state.StringListOutput("vpc_id")
	assert.False(t, ok)
}
