// Command floorctl browses the Huluxia floor API from the terminal.
package main

import (
	"fmt"
	"os"

	"floorview/internal/cli"
	"floorview/internal/config"
	"floorview/internal/observability"
	"floorview/internal/service"
	"floorview/internal/upstream"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr so they never mix with printed tables or dumps.
	logger := observability.NewLogger(observability.LogConfig{Env: cfg.Env, Level: cfg.LogLevel, Writer: os.Stderr})

	client, err := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout(), upstream.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create upstream client: %v\n", err)
		os.Exit(1)
	}

	root := cli.NewRootCmd(cli.Deps{
		Forum:    service.NewForumService(client, logger),
		Location: cfg.Location(),
		DumpDir:  cfg.DumpDir,
	})
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
