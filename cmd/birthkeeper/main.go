package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/zhongxul/birthkeeper/internal/buildinfo"
	"github.com/zhongxul/birthkeeper/internal/cli"
	"github.com/zhongxul/birthkeeper/internal/config"
	"github.com/zhongxul/birthkeeper/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
