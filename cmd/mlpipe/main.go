package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mlpipe/cli"

	log "github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		log.WithError(err).Error("mlpipe failed")
		stop()
		os.Exit(1)
	}
}
