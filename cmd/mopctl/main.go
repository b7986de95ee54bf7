package main

import (
	"log/slog"
	"os"

	"github.com/averbeke/mopctl/internal/cli"
)

func main() {
	// Configure structured logging to stderr; the CLI layer tightens
	// the level once the config is loaded.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	cli.Execute()
}
