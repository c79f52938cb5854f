package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/localdocs/internal/config"
	"github.com/kailas-cloud/localdocs/internal/domain/search/mode"
	"github.com/kailas-cloud/localdocs/pkg/localdocs"
)

func NewSemanticCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "semantic <query>",
		Short: "Rank passages by vector similarity",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			opts, err := searchOptions(cmd)
			if err != nil {
				return err
			}
			return a.withClient(cmd, func(ctx context.Context, s searcher, _ config.Config) error {
				results, err := s.Semantic(ctx, query, opts...)
				if err != nil {
					return fmt.Errorf("semantic search: %w", err)
				}
				p := newSearchPayload(query, string(mode.Semantic), results)
				return printSearch(cmd, &p)
			})
		},
	}
	addSearchFlags(cmd)
	return cmd
}

func NewHybridCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hybrid <query>",
		Short: "Combine similarity with keyword overlap, then diversify",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			opts, err := searchOptions(cmd)
			if err != nil {
				return err
			}
			weight, err := floatFlag(cmd, "semantic-weight")
			if err != nil {
				return err
			}
			return a.withClient(cmd, func(ctx context.Context, s searcher, cfg config.Config) error {
				results, err := s.Hybrid(ctx, query, opts...)
				if err != nil {
					return fmt.Errorf("hybrid search: %w", err)
				}
				p := newSearchPayload(query, string(mode.Hybrid), results)
				if weight == nil {
					weight = &cfg.Search.HybridWeight
				}
				p.SemanticWeight = weight
				return printSearch(cmd, &p)
			})
		},
	}
	addSearchFlags(cmd)
	cmd.Flags().Float64("semantic-weight", 0, "Weight of similarity against keyword overlap (0-1)")
	cmd.Flags().Float64("mmr-lambda", 0, "Relevance/diversity tradeoff (0-1)")
	cmd.Flags().Float64("keyword-boost", 0, "Multiplier for strong keyword matches (>= 1)")
	return cmd
}

func NewFilterCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter <query>",
		Short: "Rank passages matching exact metadata filters",
		Example: `  localdocs filter "connection pool" --filter '{"filename":"db.md"}'
  localdocs filter setup --filter '{"location":0}' --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			raw, _ := cmd.Flags().GetString("filter")
			filters, err := parseMetadataFilter(raw)
			if err != nil {
				return err
			}
			opts, err := searchOptions(cmd)
			if err != nil {
				return err
			}
			return a.withClient(cmd, func(ctx context.Context, s searcher, _ config.Config) error {
				results, err := s.Filtered(ctx, query, filters, opts...)
				if err != nil {
					return fmt.Errorf("filtered search: %w", err)
				}
				p := newSearchPayload(query, string(mode.Filtered), results)
				p.MetadataFilter = filters
				return printSearch(cmd, &p)
			})
		},
	}
	addSearchFlags(cmd)
	cmd.Flags().String("filter", "", `Metadata filter as a JSON object, e.g. {"filename":"a.md"}`)
	return cmd
}

func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("limit", "n", 0, "Maximum results (1-50, default from config)")
	cmd.Flags().Float64("min-score", 0, "Minimum similarity score (0-1, default from config)")
}

// searchOptions turns the per-call flags that were set into search options.
func searchOptions(cmd *cobra.Command) ([]localdocs.SearchOption, error) {
	var opts []localdocs.SearchOption

	limit, err := intFlag(cmd, "limit")
	if err != nil {
		return nil, err
	}
	if limit != nil {
		opts = append(opts, localdocs.Limit(*limit))
	}

	floats := []struct {
		name string
		opt  func(float64) localdocs.SearchOption
	}{
		{"min-score", localdocs.MinScore},
		{"semantic-weight", localdocs.SemanticWeight},
		{"mmr-lambda", localdocs.MMRLambda},
		{"keyword-boost", localdocs.KeywordBoost},
	}
	for _, f := range floats {
		v, err := floatFlag(cmd, f.name)
		if err != nil {
			return nil, err
		}
		if v != nil {
			opts = append(opts, f.opt(*v))
		}
	}
	return opts, nil
}

func printSearch(cmd *cobra.Command, p *searchPayload) error {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd.OutOrStdout(), p)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), formatSearchResults(p))
	return err //nolint:wrapcheck // terminal output
}
