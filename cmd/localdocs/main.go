package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/kailas-cloud/localdocs/internal/version"
)

func main() {
	ctx := context.Background()

	rootCmd := NewRootCmd(version.String(), newApp())
	if err := fang.Execute(ctx, rootCmd); err != nil {
		os.Exit(1)
	}
}
