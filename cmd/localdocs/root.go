package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/localdocs/internal/config"
	"github.com/kailas-cloud/localdocs/internal/domain"
)

func NewRootCmd(version string, a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "localdocs",
		Short:         "Search local documents indexed in Redis or Valkey",
		Long:          `Semantic, hybrid and metadata-filtered retrieval over a local document collection.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)

	if a != nil {
		rootCmd.AddCommand(
			NewServeCmd(),
			NewSemanticCmd(a),
			NewHybridCmd(a),
			NewFilterCmd(a),
			NewGetCmd(a),
			NewInfoCmd(a),
		)
	}

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("config", "", "Config file (default: config/$ENV.yaml)")
	f.StringSlice("store", nil, "Store addresses (host:port)")
	f.String("collection", "", "Collection name")
	f.String("embedding-url", "", "OpenAI-compatible embedding endpoint")
	f.String("embedding-model", "", "Embedding model")
	f.Int("embedding-dim", 0, "Embedding dimension")
	f.Int("search-ef", 0, "HNSW EF_RUNTIME")
	f.Int("cache-capacity", 0, "Query embedding cache capacity")
	f.String("cache-policy", "", "Query embedding cache policy (fill|lru)")
	f.Bool("json", false, "Output in JSON format")
}

// loadConfig reads the file and environment, then applies the flags that were set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(config.GetEnv())
	}
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}

	o, err := overridesFromFlags(cmd)
	if err != nil {
		return config.Config{}, err
	}
	cfg.ApplyOverrides(o)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func overridesFromFlags(cmd *cobra.Command) (config.Overrides, error) {
	var o config.Overrides
	f := cmd.Flags()

	if f.Changed("store") {
		addrs, err := f.GetStringSlice("store")
		if err != nil {
			return o, fmt.Errorf("--store: %w", err)
		}
		for _, a := range addrs {
			o.StoreAddrs = append(o.StoreAddrs, config.ParseAddrs(a)...)
		}
	}

	var err error
	if o.Collection, err = stringFlag(cmd, "collection"); err != nil {
		return o, err
	}
	if o.EmbeddingURL, err = stringFlag(cmd, "embedding-url"); err != nil {
		return o, err
	}
	if o.EmbeddingModel, err = stringFlag(cmd, "embedding-model"); err != nil {
		return o, err
	}
	if o.EmbeddingDim, err = intFlag(cmd, "embedding-dim"); err != nil {
		return o, err
	}
	if o.SearchEF, err = intFlag(cmd, "search-ef"); err != nil {
		return o, err
	}
	if o.CacheCapacity, err = intFlag(cmd, "cache-capacity"); err != nil {
		return o, err
	}
	policy, err := stringFlag(cmd, "cache-policy")
	if err != nil {
		return o, err
	}
	if policy != nil {
		p := domain.CachePolicy(*policy)
		o.CachePolicy = &p
	}
	return o, nil
}

// stringFlag returns the flag value when it was set explicitly, nil otherwise.
func stringFlag(cmd *cobra.Command, name string) (*string, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &v, nil
}

func intFlag(cmd *cobra.Command, name string) (*int, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &v, nil
}

func floatFlag(cmd *cobra.Command, name string) (*float64, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	v, err := cmd.Flags().GetFloat64(name)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &v, nil
}
