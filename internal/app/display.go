// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/cansat_ground/internal/config"
	"github.com/relabs-tech/cansat_ground/internal/mission"
	"github.com/relabs-tech/cansat_ground/internal/telemetry"
)

// DisplayData holds the latest bus data for the OLED panels
type DisplayData struct {
	mu sync.RWMutex

	sample     telemetry.Sample
	haveSample bool

	status     mission.Status
	haveStatus bool
}

// RunDisplay renders live telemetry on two SSD1306 panels at the ground
// station, one content page per display.
func RunDisplay() error {
	cfg := config.Get()

	if err := validateContent(cfg.DisplayLeftContent); err != nil {
		return fmt.Errorf("left display: %w", err)
	}
	if err := validateContent(cfg.DisplayRightContent); err != nil {
		return fmt.Errorf("right display: %w", err)
	}

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	leftDisplay, err := ssd1306.NewI2C(bus, cfg.DisplayLeftI2CAddr, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize left display: %w", err)
	}
	log.Printf("display: left display initialized at 0x%02X", cfg.DisplayLeftI2CAddr)

	rightDisplay, err := ssd1306.NewI2C(bus, cfg.DisplayRightI2CAddr, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize right display: %w", err)
	}
	log.Printf("display: right display initialized at 0x%02X", cfg.DisplayRightI2CAddr)

	// Show splash screens
	if err := showSplash(leftDisplay); err != nil {
		log.Printf("display: error showing left splash: %v", err)
	}
	if err := showSplash(rightDisplay); err != nil {
		log.Printf("display: error showing right splash: %v", err)
	}

	// Data storage
	data := &DisplayData{}

	// Connect to MQTT
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDDisplay)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	if err := subscribeTelemetry(client, data, cfg); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	// Display update loop
	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		data.mu.RLock()
		snapshot := DisplayData{
			sample:     data.sample,
			haveSample: data.haveSample,
			status:     data.status,
			haveStatus: data.haveStatus,
		}
		data.mu.RUnlock()

		if err := updateDisplay(leftDisplay, cfg.DisplayLeftContent, &snapshot); err != nil {
			log.Printf("display: error updating left display: %v", err)
		}
		if err := updateDisplay(rightDisplay, cfg.DisplayRightContent, &snapshot); err != nil {
			log.Printf("display: error updating right display: %v", err)
		}
	}

	return nil
}

func validateContent(content string) error {
	switch content {
	case "sensors", "flight", "signal":
		return nil
	default:
		return fmt.Errorf("unknown display content type: %s", content)
	}
}

func subscribeTelemetry(client mqtt.Client, data *DisplayData, cfg *config.Config) error {
	token := client.Subscribe(cfg.TopicTelemetry, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s telemetry.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("display: telemetry unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.sample = s
		data.haveSample = true
		data.mu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: subscribed to %s", cfg.TopicTelemetry)

	token = client.Subscribe(cfg.TopicStatus, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var st mission.Status
		if err := json.Unmarshal(msg.Payload(), &st); err != nil {
			log.Printf("display: status unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.status = st
		data.haveStatus = true
		data.mu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: subscribed to %s", cfg.TopicStatus)

	return nil
}

func updateDisplay(dev *ssd1306.Dev, content string, data *DisplayData) error {
	switch content {
	case "sensors":
		return updateSensorsDisplay(dev, data)
	case "flight":
		return updateFlightDisplay(dev, data)
	case "signal":
		return updateSignalDisplay(dev, data)
	default:
		return fmt.Errorf("unknown display content type: %s", content)
	}
}

func newDrawer() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	// Blank image
	for i := 0; i < 1024; i++ {
		img.Pix[i] = 0
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func updateSensorsDisplay(dev *ssd1306.Dev, data *DisplayData) error {
	img, drawer := newDrawer()

	if !data.haveSample {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("Sensors"))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte("Waiting..."))
	} else {
		drawer.Dot = fixed.P(0, 13)
		drawer.DrawBytes([]byte(fmt.Sprintf("P: %6.2f kPa", data.sample.Pressure)))

		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte(fmt.Sprintf("T: %6.2f C", data.sample.Temperature)))

		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte(fmt.Sprintf("ALT: %7.1f m", data.sample.Altitude)))

		drawer.Dot = fixed.P(0, 52)
		drawer.DrawBytes([]byte(fmt.Sprintf("RATE: %+5.1f m/s", data.sample.AltitudeRate)))
	}

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

func updateFlightDisplay(dev *ssd1306.Dev, data *DisplayData) error {
	img, drawer := newDrawer()

	if !data.haveSample {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("Flight"))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte("Waiting..."))
	} else {
		if data.haveStatus {
			drawer.Dot = fixed.P(0, 13)
			drawer.DrawBytes([]byte(data.status.Elapsed))
		}

		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte(fmt.Sprintf("VEL: %5.1f m/s", data.sample.Velocity)))

		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte(fmt.Sprintf("G:   %5.2f", data.sample.GForce)))

		drawer.Dot = fixed.P(0, 52)
		drawer.DrawBytes([]byte(fmt.Sprintf("ALT: %7.1f m", data.sample.Altitude)))
	}

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

func updateSignalDisplay(dev *ssd1306.Dev, data *DisplayData) error {
	img, drawer := newDrawer()

	if !data.haveSample {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("Signal"))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte("Waiting..."))
	} else {
		drawer.Dot = fixed.P(0, 13)
		drawer.DrawBytes([]byte(fmt.Sprintf("LAT: %3.0f ms", data.sample.Latency)))

		link := "LINK: GOOD"
		if data.sample.Latency > 60 {
			link = "LINK: WEAK"
		}
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte(link))

		state := "MISSION: --"
		if data.haveStatus {
			if data.status.Running {
				state = "MISSION: RUN"
			} else {
				state = "MISSION: STOP"
			}
		}
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte(state))
	}

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

func showSplash(dev *ssd1306.Dev) error {
	img, drawer := newDrawer()

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawBytes([]byte("CanSat Ground"))

	drawer.Dot = fixed.P(5, 43)
	drawer.DrawBytes([]byte("Waiting for"))

	drawer.Dot = fixed.P(25, 56)
	drawer.DrawBytes([]byte("link"))

	return dev.Draw(dev.Bounds(), img, image.Point{})
}
