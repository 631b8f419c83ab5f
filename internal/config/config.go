package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	InputPath           string `envconfig:"INPUT_PATH" default:"data/futuristic_city_traffic.csv" validate:"required"`
	OutputPath          string `envconfig:"OUTPUT_PATH" default:"data/traffic_data_cleaned.csv" validate:"required"`
	ExcludedVehicleType string `envconfig:"EXCLUDED_VEHICLE_TYPE" default:"Flying Car"`
	IncludeTimeOfDay    bool   `envconfig:"INCLUDE_TIME_OF_DAY" default:"true"`

	SyntheticSeed uint64 `envconfig:"SYNTHETIC_SEED" default:"42"`
	ReferenceFile string `envconfig:"REFERENCE_FILE"`

	// Optional report outputs, disabled when empty.
	WorkbookPath string `envconfig:"WORKBOOK_PATH"`
	ChartDir     string `envconfig:"CHART_DIR"`

	KafkaBrokers   []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic     string   `envconfig:"KAFKA_TOPIC" default:"cleaned-traffic-records" validate:"required"`
	KafkaBatchSize int      `envconfig:"KAFKA_BATCH_SIZE" default:"500" validate:"min=1,max=10000"`

	SinkRetries int `envconfig:"SINK_RETRIES" default:"3" validate:"min=1,max=10"`

	Serve           bool          `envconfig:"SERVE" default:"false"`
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080" validate:"required"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`
}

// KafkaEnabled reports whether cleaned records are published to Kafka.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg.KafkaBrokers = trimBrokers(cfg.KafkaBrokers)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate checks the loaded values. Field names in errors are the
// environment variable names so operators can act on them directly.
func validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("envconfig")
	})

	err := v.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New("invalid config: " + strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	case "min", "max":
		return fmt.Sprintf("%s must be within range, got %v (%s=%s)", fe.Field(), fe.Value(), fe.Tag(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be positive, got %v", fe.Field(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag())
	}
}

func trimBrokers(brokers []string) []string {
	var out []string
	for _, b := range brokers {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
