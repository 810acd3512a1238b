package main

import (
	"context"
	"os"

	mcpadapter "github.com/foodlens/meal-vision/internal/adapters/mcp"
	"github.com/foodlens/meal-vision/internal/bootstrap"
)

func main() {
	ctx := context.Background()

	app, err := bootstrap.New(ctx, "meal-vision-mcp")
	if err != nil {
		os.Stderr.WriteString("bootstrap failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer app.Close()

	server := mcpadapter.NewServer(app.Analyzer, app.Storage, app.Repo)
	if err := server.ServeStdio(); err != nil {
		app.Logger.Error("mcp_server_failed", "error", err)
		os.Exit(1)
	}
}
