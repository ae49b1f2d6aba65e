package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/campusconnect/loginflow/internal/app"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (empty uses embedded defaults)")
	dev := flag.Bool("dev", false, "run the in-process development identity server")
	flag.Parse()

	application := app.New(app.Options{
		ConfigPath: *configPath,
		DevServer:  *dev,
	})

	err := application.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	application.Stop(ctx)

	if err != nil {
		slog.Error("session ended with error", "error", err)
		os.Exit(1)
	}
}
