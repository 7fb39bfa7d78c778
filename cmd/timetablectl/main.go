package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/noah-isme/sma-timetable-api/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &cli.App{}
	err := cli.NewRootCmd(app).ExecuteContext(ctx)
	if app.Logger != nil {
		_ = app.Logger.Sync()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
