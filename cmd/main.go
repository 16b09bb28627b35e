package main

import (
	"log"
	"time"

	"gridbot/internal/config"
	"gridbot/internal/database"
	"gridbot/internal/exchange"
	"gridbot/internal/gridbot"
)

func main() {
	log.Println("Starting grid bot...")

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Config loaded successfully")

	client := exchange.New(exchange.Credentials{
		PublicKey: cfg.Exchange.PublicKey,
		SecretKey: cfg.Exchange.SecretKey,
	})

	var opts []gridbot.Option
	if cfg.DatabaseURL != "" {
		db, err := database.NewConnection(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Println("Database connection established")
		opts = append(opts, gridbot.WithFillRecorder(db))
	}

	bot := gridbot.New(cfg.Grid, client, opts...)
	if err := bot.Initialize(); err != nil {
		log.Fatalf("Failed to initialize grid: %v", err)
	}
	log.Printf("Grid placed, tracking %d orders", len(bot.TrackedOrders()))

	log.Println("Entering main loop...")
	for {
		time.Sleep(cfg.ParsedInterval)

		if err := bot.Process(); err != nil {
			log.Printf("Poll cycle failed: %v", err)
			continue
		}

		remaining := len(bot.TrackedOrders())
		log.Printf("Tracking %d orders", remaining)
		if remaining == 0 {
			log.Println("All orders retired, exiting")
			return
		}
	}
}
