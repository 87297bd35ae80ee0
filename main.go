package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Honglongwu/picobio/cmd"
)

func main() {
	// stop blastn on an interrupt
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Execute(ctx) // initialize cobra commands
}
