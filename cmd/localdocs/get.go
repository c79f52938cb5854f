package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/localdocs/internal/config"
	"github.com/kailas-cloud/localdocs/pkg/localdocs"
)

func NewGetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch one passage by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			withEmbedding, _ := cmd.Flags().GetBool("include-embedding")

			return a.withClient(cmd, func(ctx context.Context, s searcher, _ config.Config) error {
				doc, found, err := s.Document(ctx, id)
				if err != nil {
					return fmt.Errorf("get document: %w", err)
				}
				if !found {
					return fmt.Errorf("document with ID %q: %w", id, localdocs.ErrNotFound)
				}

				view := newDocumentView(&doc, withEmbedding)
				if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
					return writeJSON(cmd.OutOrStdout(), view)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), formatDocument(&view))
				return err //nolint:wrapcheck // terminal output
			})
		},
	}
	cmd.Flags().Bool("include-embedding", false, "Include the stored vector (JSON output)")
	return cmd
}

func NewInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show collection statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd, func(ctx context.Context, s searcher, _ config.Config) error {
				info := s.CollectionInfo(ctx)
				if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
					return writeJSON(cmd.OutOrStdout(), info)
				}
				out, err := formatCollection(info)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
				return err //nolint:wrapcheck // terminal output
			})
		},
	}
}
