package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/malonaz/qachat/cli/command"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	app := &command.App{}
	err := command.NewRootCmd(app).ExecuteContext(ctx)
	stop()
	// Ensure store is closed before exiting
	app.Close()
	if err != nil {
		os.Exit(1)
	}
}
