// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package cmd

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"oras.land/oras-go/v2/registry"
	"oras.land/oras-go/v2/registry/remote"

	"github.com/ennio-run/ennio/fetch"
)

// NewPublishCmd creates the publish command
func NewPublishCmd() *cobra.Command {
	var (
		plainHTTP       bool
		insecureSkipTLS bool
		files           []string
	)

	publish := &cobra.Command{
		Use:   "publish <oci-reference>",
		Short: "Pack workflow files into an OCI artifact and publish",
		Example: `
ennio publish ghcr.io/ennio-run/workflows:v1 -f ennio.yaml -f release.yaml

ennio -f "oci:ghcr.io/ennio-run/workflows:v1#file:release.yaml" --list
`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)

			ref, err := registry.ParseReference(args[0])
			if err != nil {
				return fmt.Errorf("unable to parse reference: %w", err)
			}
			if err := ref.ValidateReferenceAsTag(); err != nil {
				return fmt.Errorf("reference is not a tag: %w", err)
			}

			dst, err := remote.NewRepository(ref.String())
			if err != nil {
				return err
			}
			dst.PlainHTTP = plainHTTP

			client, err := fetch.NewOCIClient(nil, insecureSkipTLS)
			if err != nil {
				return err
			}
			dst.Client = client

			desc, err := fetch.Publish(ctx, dst, files...)
			if err != nil {
				return err
			}

			logger.Info("published", "reference", ref, "digest", desc.Digest, "files", len(files))
			fmt.Fprintf(cmd.OutOrStdout(), "%s@%s\n", ref, desc.Digest)
			return nil
		},
	}

	publish.Flags().BoolVar(&plainHTTP, "plain-http", false, "Allow insecure connections to registry without SSL check")
	publish.Flags().BoolVar(&insecureSkipTLS, "insecure-skip-tls-verify", false, "Allow connections to SSL registry without certs")
	publish.Flags().StringSliceVarP(&files, "file", "f", []string{fetch.DefaultFileName}, "Workflow file(s) to publish")
	_ = publish.MarkFlagFilename("file", "yaml", "yml")

	return publish
}
