package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/futuristic_city_traffic.csv", cfg.InputPath)
	assert.Equal(t, "data/traffic_data_cleaned.csv", cfg.OutputPath)
	assert.Equal(t, "Flying Car", cfg.ExcludedVehicleType)
	assert.True(t, cfg.IncludeTimeOfDay)
	assert.Equal(t, uint64(42), cfg.SyntheticSeed)
	assert.Empty(t, cfg.ReferenceFile)
	assert.Empty(t, cfg.WorkbookPath)
	assert.Empty(t, cfg.ChartDir)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "cleaned-traffic-records", cfg.KafkaTopic)
	assert.Equal(t, 500, cfg.KafkaBatchSize)
	assert.Equal(t, 3, cfg.SinkRetries)
	assert.False(t, cfg.Serve)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("INPUT_PATH", "/tmp/in.csv")
	t.Setenv("OUTPUT_PATH", "/tmp/out.csv")
	t.Setenv("EXCLUDED_VEHICLE_TYPE", "Drone")
	t.Setenv("INCLUDE_TIME_OF_DAY", "false")
	t.Setenv("SYNTHETIC_SEED", "7")
	t.Setenv("REFERENCE_FILE", "ref.yaml")
	t.Setenv("WORKBOOK_PATH", "report.xlsx")
	t.Setenv("CHART_DIR", "charts")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-topic")
	t.Setenv("KAFKA_BATCH_SIZE", "100")
	t.Setenv("SINK_RETRIES", "5")
	t.Setenv("SERVE", "true")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/in.csv", cfg.InputPath)
	assert.Equal(t, "/tmp/out.csv", cfg.OutputPath)
	assert.Equal(t, "Drone", cfg.ExcludedVehicleType)
	assert.False(t, cfg.IncludeTimeOfDay)
	assert.Equal(t, uint64(7), cfg.SyntheticSeed)
	assert.Equal(t, "ref.yaml", cfg.ReferenceFile)
	assert.Equal(t, "report.xlsx", cfg.WorkbookPath)
	assert.Equal(t, "charts", cfg.ChartDir)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "custom-topic", cfg.KafkaTopic)
	assert.Equal(t, 100, cfg.KafkaBatchSize)
	assert.Equal(t, 5, cfg.SinkRetries)
	assert.True(t, cfg.Serve)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unparsable shutdown timeout", "SHUTDOWN_TIMEOUT", "not-a-duration"},
		{"negative shutdown timeout", "SHUTDOWN_TIMEOUT", "-1s"},
		{"zero batch size", "KAFKA_BATCH_SIZE", "0"},
		{"huge batch size", "KAFKA_BATCH_SIZE", "20000"},
		{"non-numeric batch size", "KAFKA_BATCH_SIZE", "lots"},
		{"zero retries", "SINK_RETRIES", "0"},
		{"too many retries", "SINK_RETRIES", "11"},
		{"negative seed", "SYNTHETIC_SEED", "-1"},
		{"unknown log level", "LOG_LEVEL", "verbose"},
		{"unknown log format", "LOG_FORMAT", "xml"},
		{"non-bool time of day", "INCLUDE_TIME_OF_DAY", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_EmptyBrokersDisableKafka(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " , ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled())
}
