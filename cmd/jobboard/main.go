package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spec-kit/job-board/internal/cli"
	"github.com/spec-kit/job-board/internal/config"
	"github.com/spec-kit/job-board/internal/observability"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewCLILogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	root := cli.NewRootCommand(func() (*cli.Env, error) {
		return cli.NewEnv(cfg, logger)
	})
	code := cli.Execute(ctx, root)

	stop()
	_ = logger.Sync()
	os.Exit(code)
}
