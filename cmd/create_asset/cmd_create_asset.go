package create_asset

import (
	"github.com/cloudcomb/ncp/cmd/create_asset/github_oidc"
	"github.com/cloudcomb/ncp/cmd/create_asset/network"
	"github.com/spf13/cobra"
)

func NewCreateAssetCmd() *cobra.Command {
	createAssetCmd := &cobra.Command{
		Use:   "create-asset",
		Short: "Generate Terraform asset projects for a single component",
		Long:  "Generate a Terraform asset project for a single component from flags, without an environment manifest. Useful for trying a component out or for scripting outside the render pipeline.",
	}

	// Add subcommands
	createAssetCmd.AddCommand(
		network.NewNetworkCmd(),
		github_oidc.NewGithubOidcCmd(),
	)

	return createAssetCmd
}
