package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"reflexa/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		log.Fatal(err.Error())
	}
}
