package main

import (
	"context"
	"log"

	"github.com/notelinkapp/notelink/internal/client/cli"
	"github.com/notelinkapp/notelink/internal/client/config"
)

func main() {

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(context.Background())

}
