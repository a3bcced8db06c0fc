package main

import (
	"log"

	"github.com/relabs-tech/cansat_ground/internal/app"
	"github.com/relabs-tech/cansat_ground/internal/config"
)

func main() {
	log.Println("starting cansat ground console (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal("cansat_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunConsoleMQTT(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
