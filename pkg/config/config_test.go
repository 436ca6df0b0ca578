package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("AGGREGATION_DAILY_TIME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Kafka.TopicSamples != "aquasure.samples.recorded" {
		t.Errorf("Expected default samples topic, got %s", cfg.Kafka.TopicSamples)
	}
	if len(cfg.Kafka.Brokers) != 1 || cfg.Kafka.Brokers[0] != "localhost:9092" {
		t.Errorf("Expected default broker list, got %v", cfg.Kafka.Brokers)
	}
	if cfg.HTTPServer.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.HTTPServer.Port)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("KAFKA_FLUSH_INTERVAL", "2s")
	t.Setenv("AGGREGATION_DAILY_TIME", "01:30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("Expected two trimmed brokers, got %v", cfg.Kafka.Brokers)
	}
	if cfg.HTTPServer.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.HTTPServer.Port)
	}
	if cfg.Kafka.FlushInterval != 2*time.Second {
		t.Errorf("Expected flush interval 2s, got %v", cfg.Kafka.FlushInterval)
	}
}

func TestLoad_InvalidDailyTime(t *testing.T) {
	t.Setenv("AGGREGATION_DAILY_TIME", "25:00")

	if _, err := Load(); err == nil {
		t.Error("Expected error for out-of-range daily time")
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		hour    int
		minute  int
		wantErr bool
	}{
		{"00:05", 0, 5, false},
		{"23:59", 23, 59, false},
		{"24:00", 0, 0, true},
		{"noon", 0, 0, true},
	}

	for _, tt := range tests {
		h, m, err := ParseTimeOfDay(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTimeOfDay(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && (h != tt.hour || m != tt.minute) {
			t.Errorf("ParseTimeOfDay(%q) = %d:%d, expected %d:%d", tt.in, h, m, tt.hour, tt.minute)
		}
	}
}
