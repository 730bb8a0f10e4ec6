package publish

import (
	"context"
	"fmt"

	"github.com/cloudcomb/ncp/internal/client"
	s3service "github.com/cloudcomb/ncp/internal/services/s3"
	"github.com/cloudcomb/ncp/internal/types"
	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	assetDir  string
	bucket    string
	component string
)

func NewPublishCmd() *cobra.Command {
	publishCmd := &cobra.Command{
		Use:           "publish",
		Short:         "Publish rendered component artifacts to S3",
		Long:          "Archive the rendered Terraform assets of a deployment and upload them to an S3 artifact bucket under a version-pinned key, for consumption by other environments and CI.",
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PreRunE:       preRunPublish,
		RunE:          runPublish,
	}

	groups := map[*pflag.FlagSet]string{}

	requiredFlags := pflag.NewFlagSet("required", pflag.ExitOnError)
	requiredFlags.SortFlags = false
	requiredFlags.StringVar(&assetDir, "asset-dir", "", "The asset directory of the rendered deployment.")
	requiredFlags.StringVar(&bucket, "bucket", "", "The artifact bucket, as a bucket name or an s3:// URI (a URI key prefix is preserved).")
	publishCmd.Flags().AddFlagSet(requiredFlags)
	groups[requiredFlags] = "Required Flags"

	optionalFlags := pflag.NewFlagSet("optional", pflag.ExitOnError)
	optionalFlags.SortFlags = false
	optionalFlags.StringVar(&component, "component", "", "Publish only this component (defaults to every rendered component).")
	publishCmd.Flags().AddFlagSet(optionalFlags)
	groups[optionalFlags] = "Optional Flags"

	publishCmd.SetUsageFunc(func(c *cobra.Command) error {
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

	publishCmd.MarkFlagRequired("asset-dir")
	publishCmd.MarkFlagRequired("bucket")

	return publishCmd
}

func preRunPublish(cmd *cobra.Command, args []string) error {
	if err := utils.BindEnvToFlags(cmd); err != nil {
		return err
	}

	return nil
}

func runPublish(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	opts, err := parsePublishOpts()
	if err != nil {
		return fmt.Errorf("failed to parse publish options: %w", err)
	}

	s3Client, err := client.NewS3Client(ctx, opts.Deployment.Region)
	if err != nil {
		return fmt.Errorf("failed to create s3 client: %w", err)
	}

	publisher := NewPublisher(s3service.NewS3Service(s3Client), *opts)
	if err := publisher.Run(); err != nil {
		return fmt.Errorf("failed to publish artifacts: %w", err)
	}

	return nil
}

func parsePublishOpts() (*PublisherOpts, error) {
	deployment, err := types.LoadDeployment(assetDir)
	if err != nil {
		return nil, fmt.Errorf("no rendered deployment in %s - run `ncp render` first: %w", assetDir, err)
	}

	bucketName, prefix, err := s3service.ParseBucketRef(bucket)
	if err != nil {
		return nil, err
	}

	components := deployment.Components()
	if component != "" {
		if _, ok := deployment.ComponentVersions[component]; !ok {
			return nil, fmt.Errorf("component %q is not part of this deployment (rendered: %v)", component, components)
		}
		components = []string{component}
	}
	if len(components) == 0 {
		return nil, fmt.Errorf("deployment in %s has no rendered components", assetDir)
	}

	opts := PublisherOpts{
		AssetDir:   assetDir,
		Bucket:     bucketName,
		Prefix:     prefix,
		Components: components,
		Deployment: deployment,
	}

	return &opts, nil
}
