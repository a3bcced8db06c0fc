// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/cansat_ground/internal/config"
	"github.com/relabs-tech/cansat_ground/internal/mission"
	"github.com/relabs-tech/cansat_ground/internal/telemetry"
)

// RunProducer stands in for the payload radio link: it runs the telemetry
// simulator on a wall-clock ticker and publishes every sample, mission event
// and status update to MQTT. Remote commands arrive on the command topic.
func RunProducer() error {
	log.Println("starting cansat ground telemetry producer")

	cfg := config.Get()

	sim := telemetry.NewSimulator(rand.New(rand.NewSource(time.Now().UnixNano())))
	if cfg.SimVelocityAxisStep > 0 {
		sim.SetVelocityAxisStep(cfg.SimVelocityAxisStep)
	}
	msn := mission.New(sim, cfg.SimStepSeconds, nil)

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("producer: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Remote commands from the dashboards: start/stop/toggle plus free-text
	// commands that are only echoed to the mission log.
	token := client.Subscribe(cfg.TopicCommand, 0, func(_ mqtt.Client, msg mqtt.Message) {
		cmd := string(msg.Payload())
		log.Printf("producer: command received: %q", cmd)
		msn.SendCommand(cmd)
		publishEvents(client, cfg, msn)
		publishStatus(client, cfg, msn)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("producer: subscribed to %s", cfg.TopicCommand)

	msn.Start()
	publishEvents(client, cfg, msn)
	publishStatus(client, cfg, msn)

	ticker := time.NewTicker(time.Duration(cfg.SimTickInterval) * time.Millisecond)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	log.Println("producer: starting mission loop")

	for {
		select {
		case <-sigCh:
			log.Println("producer: shutting down")
			return nil

		case <-ticker.C:
			sample, ok := msn.Tick()
			if !ok {
				continue
			}

			payload, err := json.Marshal(sample)
			if err != nil {
				log.Printf("producer: sample marshal error: %v", err)
				continue
			}
			if token := client.Publish(cfg.TopicTelemetry, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("producer: telemetry publish error: %v", token.Error())
				continue
			}

			publishEvents(client, cfg, msn)
			publishStatus(client, cfg, msn)
		}
	}
}

// publishEvents drains the mission log and publishes each line.
func publishEvents(client mqtt.Client, cfg *config.Config, msn *mission.Mission) {
	for _, ev := range msn.DrainEvents() {
		payload, err := json.Marshal(ev)
		if err != nil {
			log.Printf("producer: event marshal error: %v", err)
			continue
		}
		if token := client.Publish(cfg.TopicEvents, 0, false, payload); token.Wait() && token.Error() != nil {
			log.Printf("producer: event publish error: %v", token.Error())
		}
	}
}

// publishStatus publishes the retained mission header state.
func publishStatus(client mqtt.Client, cfg *config.Config, msn *mission.Mission) {
	payload, err := json.Marshal(msn.Status())
	if err != nil {
		log.Printf("producer: status marshal error: %v", err)
		return
	}
	if token := client.Publish(cfg.TopicStatus, 0, true, payload); token.Wait() && token.Error() != nil {
		log.Printf("producer: status publish error: %v", token.Error())
	}
}
