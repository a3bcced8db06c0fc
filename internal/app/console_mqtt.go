package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/cansat_ground/internal/config"
	"github.com/relabs-tech/cansat_ground/internal/mission"
	"github.com/relabs-tech/cansat_ground/internal/telemetry"
)

// RunConsoleMQTT prints the live mission feed from the bus: one line per
// telemetry sample plus every mission log event.
func RunConsoleMQTT() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Subscribe to telemetry
	tlmToken := client.Subscribe(cfg.TopicTelemetry, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s telemetry.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("console: telemetry unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[TLM ] T+%7.1fs  P=%6.2fkPa  T=%5.2fC  ALT=%8.1fm  RATE=%+5.1fm/s  VEL=%5.1fm/s  G=%4.2f  LAT=%3.0fms\n",
			s.Elapsed, s.Pressure, s.Temperature, s.Altitude, s.AltitudeRate, s.Velocity, s.GForce, s.Latency,
		)
	})
	tlmToken.Wait()
	if tlmToken.Error() != nil {
		return tlmToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicTelemetry)

	// Subscribe to mission events
	evtToken := client.Subscribe(cfg.TopicEvents, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var ev mission.Event
		if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
			log.Printf("console: event unmarshal error: %v", err)
			return
		}

		fmt.Printf("[EVT ] %s\n", ev)
	})
	evtToken.Wait()
	if evtToken.Error() != nil {
		return evtToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicEvents)

	// Subscribe to mission status
	stToken := client.Subscribe(cfg.TopicStatus, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var st mission.Status
		if err := json.Unmarshal(msg.Payload(), &st); err != nil {
			log.Printf("console: status unmarshal error: %v", err)
			return
		}

		state := "STOPPED"
		if st.Running {
			state = "RUNNING"
		}
		fmt.Printf("[STAT] %s  %s\n", state, st.Elapsed)
	})
	stToken.Wait()
	if stToken.Error() != nil {
		return stToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicStatus)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
