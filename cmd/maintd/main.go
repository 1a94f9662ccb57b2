package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/brunte71/mymaintlog/internal/app"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	application, err := app.New(version, buildDate, nil, log)
	if err != nil {
		log.Fatal("failed to init daemon", zap.Error(err))
	}
	if err := application.Run(); err != nil {
		log.Fatal("daemon stopped with error", zap.Error(err))
	}
}
