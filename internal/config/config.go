package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicTelemetry string
	TopicEvents    string
	TopicCommand   string
	TopicStatus    string

	// Simulation
	SimStepSeconds      float64 // simulated seconds per tick
	SimTickInterval     int     // wall-clock milliseconds between ticks
	SimVelocityAxisStep float64 // 0 keeps the velocity chart's time axis fixed

	// Web Server
	WebServerPort int

	// Display
	DisplayLeftI2CAddr    uint16
	DisplayRightI2CAddr   uint16
	DisplayUpdateInterval int    // milliseconds
	DisplayLeftContent    string // what to show: "sensors", "flight", "signal"
	DisplayRightContent   string // what to show: "sensors", "flight", "signal"
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: unexported so other packages cannot access it directly.
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: RWMutex protects concurrent access. Write lock for initialization,
//     read lock for Get() allows multiple concurrent readers.
//
// External code must use InitGlobal() to set and Get() to read.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := &Config{}
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_TELEMETRY":
		c.TopicTelemetry = value
	case "TOPIC_EVENTS":
		c.TopicEvents = value
	case "TOPIC_COMMAND":
		c.TopicCommand = value
	case "TOPIC_STATUS":
		c.TopicStatus = value

	// Simulation
	case "SIM_STEP_SECONDS":
		step, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid SIM_STEP_SECONDS %q: %w", value, err)
		}
		if step <= 0 {
			return fmt.Errorf("SIM_STEP_SECONDS must be positive, got %g", step)
		}
		c.SimStepSeconds = step
	case "SIM_TICK_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SIM_TICK_INTERVAL %q: %w", value, err)
		}
		if interval <= 0 {
			return fmt.Errorf("SIM_TICK_INTERVAL must be positive, got %d", interval)
		}
		c.SimTickInterval = interval
	case "SIM_VELOCITY_AXIS_STEP":
		step, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid SIM_VELOCITY_AXIS_STEP %q: %w", value, err)
		}
		if step < 0 {
			return fmt.Errorf("SIM_VELOCITY_AXIS_STEP must be >= 0, got %g", step)
		}
		c.SimVelocityAxisStep = step

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_LEFT_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_LEFT_I2C_ADDR %q: %w", value, err)
		}
		c.DisplayLeftI2CAddr = uint16(addr)
	case "DISPLAY_RIGHT_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_RIGHT_I2C_ADDR %q: %w", value, err)
		}
		c.DisplayRightI2CAddr = uint16(addr)
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval
	case "DISPLAY_LEFT_CONTENT":
		c.DisplayLeftContent = value
	case "DISPLAY_RIGHT_CONTENT":
		c.DisplayRightContent = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicTelemetry == "" {
		return fmt.Errorf("TOPIC_TELEMETRY is required")
	}
	if c.TopicEvents == "" {
		return fmt.Errorf("TOPIC_EVENTS is required")
	}
	if c.TopicCommand == "" {
		return fmt.Errorf("TOPIC_COMMAND is required")
	}
	if c.TopicStatus == "" {
		return fmt.Errorf("TOPIC_STATUS is required")
	}
	if c.SimStepSeconds == 0 {
		return fmt.Errorf("SIM_STEP_SECONDS is required")
	}
	if c.SimTickInterval == 0 {
		return fmt.Errorf("SIM_TICK_INTERVAL is required")
	}
	if c.WebServerPort == 0 {
		return fmt.Errorf("WEB_SERVER_PORT is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
