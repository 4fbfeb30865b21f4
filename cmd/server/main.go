package main

import (
	"context"
	"log"

	"github.com/boycottpro/users/internal/server"
	"github.com/boycottpro/users/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("config error: %v", err)
		return
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.RunHTTP(ctx); err != nil {
		log.Printf("%v", err)
	}
}
