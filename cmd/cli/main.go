package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/loankeeper/internal/buildinfo"
	"github.com/dmitrijs2005/loankeeper/internal/cli"
	"github.com/dmitrijs2005/loankeeper/internal/config"
	"github.com/dmitrijs2005/loankeeper/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(os.Stderr)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
