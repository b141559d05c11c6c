package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"userapi/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err = application.Run(ctx)
	_ = application.Close()
	if err != nil {
		os.Exit(1)
	}
}
