package main

import (
	"context"
	"os"

	"github.com/desertthunder/plbot/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)
	if err := shared.LoadDotEnv(); err != nil {
		logger.Warn("ignoring .env", "err", err)
	}

	runner := NewRunner(RunnerOpts{Logger: logger})
	if err := runner.app().Run(context.Background(), os.Args); err != nil {
		logger.Fatal("application error", "err", err)
	}
}
