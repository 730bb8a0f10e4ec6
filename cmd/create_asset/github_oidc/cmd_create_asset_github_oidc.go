package github_oidc

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cloudcomb/ncp/internal/services/manifest"
	"github.com/cloudcomb/ncp/internal/services/registry"
	"github.com/cloudcomb/ncp/internal/types"
	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	region       string
	roleName     string
	repositories []string

	branches          []string
	environments      []string
	thumbprint        string
	managedPolicyArns []string
	inlinePolicies    []string
	componentVersion  string
	tags              []string
	outputDir         string
)

func NewGithubOidcCmd() *cobra.Command {
	githubOidcCmd := &cobra.Command{
		Use:           "github-oidc",
		Short:         "Generate a github-oidc component Terraform project",
		Long:          "Generate the Terraform project for a github-oidc component (IAM OIDC provider for GitHub Actions plus a trust role scoped to selected repositories) from flags.",
		SilenceErrors: true,
		PreRunE:       preRunGithubOidc,
		RunE:          runGithubOidc,
	}

	groups := map[*pflag.FlagSet]string{}

	requiredFlags := pflag.NewFlagSet("required", pflag.ExitOnError)
	requiredFlags.SortFlags = false
	requiredFlags.StringVar(&region, "region", "", "The AWS region the component is rendered for.")
	requiredFlags.StringVar(&roleName, "role-name", "", "The name of the IAM role GitHub Actions will assume.")
	requiredFlags.StringSliceVar(&repositories, "repositories", []string{}, "The GitHub repositories (owner/name) trusted to assume the role (comma separated list or repeated flag).")
	githubOidcCmd.Flags().AddFlagSet(requiredFlags)
	groups[requiredFlags] = "Required Flags"

	optionalFlags := pflag.NewFlagSet("optional", pflag.ExitOnError)
	optionalFlags.SortFlags = false
	optionalFlags.StringSliceVar(&branches, "branches", []string{}, "Restrict the trust policy to these branches ('*' disables branch narrowing).")
	optionalFlags.StringSliceVar(&environments, "environments", []string{}, "Restrict the trust policy to these GitHub deployment environments (ignored when branches are set).")
	optionalFlags.StringVar(&thumbprint, "thumbprint", "", "The OIDC provider thumbprint (defaults to the GitHub Actions root CA thumbprint).")
	optionalFlags.StringSliceVar(&managedPolicyArns, "managed-policy-arns", []string{}, "Managed policy ARNs to attach to the role.")
	optionalFlags.StringSliceVar(&inlinePolicies, "inline-policy", []string{}, "Inline policy as <name>=<path-to-json-file> (repeatable).")
	optionalFlags.StringVar(&componentVersion, "component-version", "", "The github-oidc component version to render (defaults to the latest supported version).")
	optionalFlags.StringSliceVar(&tags, "tags", []string{}, "Additional tags for every resource as key=value (comma separated list or repeated flag).")
	optionalFlags.StringVar(&outputDir, "output-dir", "", "The directory to output the github-oidc assets to.")
	githubOidcCmd.Flags().AddFlagSet(optionalFlags)
	groups[optionalFlags] = "Optional Flags"

	githubOidcCmd.SetUsageFunc(func(c *cobra.Command) error {
		fmt.Printf("%s\n\n", c.Short)

		flagOrder := []*pflag.FlagSet{requiredFlags, optionalFlags}
		groupNames := []string{"Required Flags", "Optional Flags"}

		for i, fs := range flagOrder {
			usage := fs.FlagUsages()
			if usage != "" {
				fmt.Printf("%s:\n%s\n", groupNames[i], usage)
			}
		}

		fmt.Println("All flags can be provided via environment variables (uppercase, with underscores).")

		return nil
	})

	githubOidcCmd.MarkFlagRequired("region")
	githubOidcCmd.MarkFlagRequired("role-name")
	githubOidcCmd.MarkFlagRequired("repositories")

	return githubOidcCmd
}

func preRunGithubOidc(cmd *cobra.Command, args []string) error {
	if err := utils.BindEnvToFlags(cmd); err != nil {
		return err
	}

	return nil
}

func runGithubOidc(cmd *cobra.Command, args []string) error {
	opts, err := parseGithubOidcOpts()
	if err != nil {
		return fmt.Errorf("failed to parse github-oidc options: %w", err)
	}

	generator := NewGithubOidcAssetGenerator(*opts)
	if err := generator.Run(); err != nil {
		return fmt.Errorf("failed to run github-oidc generator: %w", err)
	}

	return nil
}

func parseGithubOidcOpts() (*GithubOidcOpts, error) {
	if err := utils.ValidateRegion(region); err != nil {
		return nil, err
	}

	additionalTags, err := utils.ParseTagAssignments(tags)
	if err != nil {
		return nil, err
	}

	policies, err := readInlinePolicies(inlinePolicies)
	if err != nil {
		return nil, err
	}

	spec := types.GithubOidcSpec{
		RoleName:          roleName,
		Repositories:      repositories,
		Branches:          branches,
		Environments:      environments,
		Thumbprint:        thumbprint,
		ManagedPolicyArns: managedPolicyArns,
		InlinePolicies:    policies,
		AdditionalTags:    additionalTags,
	}
	spec.Normalize()

	if errs := manifest.ValidateGithubOidcSpec(&spec); len(errs) > 0 {
		return nil, fmt.Errorf("invalid github-oidc spec: %w", errors.Join(errs...))
	}

	registryService := registry.NewRegistryService()
	version, err := registryService.Resolve(types.ComponentGithubOidc, componentVersion)
	if err != nil {
		return nil, err
	}

	opts := GithubOidcOpts{
		Region:    region,
		Version:   version,
		OutputDir: outputDir,
		Spec:      spec,
	}

	return &opts, nil
}

func readInlinePolicies(entries []string) ([]types.InlinePolicy, error) {
	var policies []types.InlinePolicy
	for _, entry := range entries {
		name, path, found := strings.Cut(entry, "=")
		if !found || name == "" || path == "" {
			return nil, fmt.Errorf("invalid inline policy %q: expected <name>=<path-to-json-file>", entry)
		}

		document, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read inline policy %s: %w", name, err)
		}

		policies = append(policies, types.InlinePolicy{
			Name:   name,
			Policy: string(document),
		})
	}
	return policies, nil
}
