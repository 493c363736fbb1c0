package main

import (
	"context"
	"log"
	"net/http"

	"trendspotter/internal"
	"trendspotter/internal/api"
	"trendspotter/internal/config"
	"trendspotter/internal/container"

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

	c, err := container.New(cfg, internal.DefaultLogger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer c.Shutdown(context.Background())

	port := ":" + cfg.Server.APIPort
	c.Logger.Info("[API] starting report API on %s", port)
	if err := http.ListenAndServe(port, api.NewRouter(c)); err != nil {
		log.Fatal("Server failed:", err)
	}
}
