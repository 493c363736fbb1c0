package main

import (
	"context"
	"log"

	"trendspotter/internal"
	"trendspotter/internal/config"
	"trendspotter/internal/container"
	"trendspotter/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(cfg.Server.GinMode)

	c, err := container.New(cfg, internal.DefaultLogger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer c.Shutdown(context.Background())
	if err := c.StartJanitor(cfg.Server.SweepSchedule); err != nil {
		log.Fatalf("Failed to start session janitor: %v", err)
	}

	server, err := ui.NewServer(c)
	if err != nil {
		log.Fatal("Failed to create UI server:", err)
	}
	log.Fatal(server.Start(":" + cfg.Server.Port))
}
