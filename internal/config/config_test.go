package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `# ground station config
MQTT_BROKER=tcp://localhost:1883
MQTT_CLIENT_ID_PRODUCER=cansat-producer
MQTT_CLIENT_ID_CONSOLE=cansat-console
MQTT_CLIENT_ID_WEB=cansat-web
MQTT_CLIENT_ID_DISPLAY=cansat-display

TOPIC_TELEMETRY=cansat/telemetry
TOPIC_EVENTS=cansat/events
TOPIC_COMMAND=cansat/command
TOPIC_STATUS=cansat/status

SIM_STEP_SECONDS=0.5
SIM_TICK_INTERVAL=500

WEB_SERVER_PORT=8080

DISPLAY_LEFT_I2C_ADDR=0x3C
DISPLAY_RIGHT_I2C_ADDR=0x3D
DISPLAY_UPDATE_INTERVAL=250
DISPLAY_LEFT_CONTENT=sensors
DISPLAY_RIGHT_CONTENT=flight
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cansat_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "cansat/telemetry", cfg.TopicTelemetry)
	assert.Equal(t, "cansat/command", cfg.TopicCommand)
	assert.Equal(t, 0.5, cfg.SimStepSeconds)
	assert.Equal(t, 500, cfg.SimTickInterval)
	assert.Equal(t, 0.0, cfg.SimVelocityAxisStep)
	assert.Equal(t, 8080, cfg.WebServerPort)
	assert.Equal(t, uint16(0x3C), cfg.DisplayLeftI2CAddr)
	assert.Equal(t, "flight", cfg.DisplayRightContent)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestLoadUnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+"BOGUS_KEY=1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}

func TestLoadMalformedLine(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+"not a key value pair\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config line")
}

func TestLoadRequiresBroker(t *testing.T) {
	conf := `TOPIC_TELEMETRY=t
TOPIC_EVENTS=e
TOPIC_COMMAND=c
TOPIC_STATUS=s
SIM_STEP_SECONDS=0.5
SIM_TICK_INTERVAL=500
WEB_SERVER_PORT=8080
`
	_, err := Load(writeConfig(t, conf))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MQTT_BROKER is required")
}

func TestLoadRejectsNonPositiveStep(t *testing.T) {
	for _, bad := range []string{"0", "-0.5", "abc"} {
		_, err := Load(writeConfig(t, validConfig+"SIM_STEP_SECONDS="+bad+"\n"))
		assert.Error(t, err, "SIM_STEP_SECONDS=%s should be rejected", bad)
	}
}

func TestLoadVelocityAxisStep(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig+"SIM_VELOCITY_AXIS_STEP=0.055\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.055, cfg.SimVelocityAxisStep)

	_, err = Load(writeConfig(t, validConfig+"SIM_VELOCITY_AXIS_STEP=-1\n"))
	assert.Error(t, err)
}
