package main

import (
	"log"

	"github.com/joho/godotenv"

	"statlab/internal/config"
	"statlab/ui"
)

func main() {
	// Missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	app, err := ui.NewServer(cfg)
	if err != nil {
		log.Fatal("Failed to create UI server:", err)
	}

	log.Println("Starting statlab UI on http://localhost:" + cfg.Server.Port)
	log.Fatal(app.Start())
}
