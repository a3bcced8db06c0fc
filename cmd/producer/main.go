// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"log"

	"github.com/relabs-tech/cansat_ground/internal/app"
	"github.com/relabs-tech/cansat_ground/internal/config"
)

func main() {
	log.Println("starting cansat ground telemetry producer")

	// Load configuration
	if err := config.InitGlobal("cansat_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunProducer(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
