package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("HTTP_PORT")
	os.Unsetenv("MQTT_TOPIC")
	os.Unsetenv("MQTT_QOS")

	cfg := Load()

	if cfg.HTTPPort != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.MQTTTopic != "fleet/positions" {
		t.Errorf("expected default topic fleet/positions, got %s", cfg.MQTTTopic)
	}
	if cfg.MQTTQoS != 1 {
		t.Errorf("expected default QoS 1, got %d", cfg.MQTTQoS)
	}
}

func TestLoad_Overrides(t *testing.T) {
	os.Setenv("HTTP_PORT", "9090")
	os.Setenv("MQTT_QOS", "2")
	defer os.Unsetenv("HTTP_PORT")
	defer os.Unsetenv("MQTT_QOS")

	cfg := Load()

	if cfg.HTTPPort != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.HTTPPort)
	}
	if cfg.MQTTQoS != 2 {
		t.Errorf("expected QoS 2, got %d", cfg.MQTTQoS)
	}
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	os.Setenv("MQTT_QOS", "not-a-number")
	defer os.Unsetenv("MQTT_QOS")

	cfg := Load()
	if cfg.MQTTQoS != 1 {
		t.Errorf("expected fallback QoS 1, got %d", cfg.MQTTQoS)
	}
}
