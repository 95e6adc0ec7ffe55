// Package config loads the TOML configuration with environment variable
// overrides (prefix JBC, dots replaced by underscores).
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Mthadube/jbcapital-sub001/pkg/logger"
)

// Config is the full configuration tree for the domain engine binary.
type Config struct {
	ServiceName string         `mapstructure:"service_name"`
	Environment string         `mapstructure:"environment"`
	HTTP        HTTPConfig     `mapstructure:"http"`
	Gateway     GatewayConfig  `mapstructure:"gateway"`
	SMS         SMSConfig      `mapstructure:"sms"`
	Workflow    WorkflowConfig `mapstructure:"workflow"`
	Dispatch    DispatchConfig `mapstructure:"dispatch"`
	Logger      logger.Config  `mapstructure:"logger"`
	Metrics     MetricsConfig  `mapstructure:"metrics"`
}

// HTTPConfig configures the admin facade listener.
type HTTPConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// GatewayConfig points the engine at the backend REST API. TimeoutSeconds
// of zero disables the client timeout, matching the engine's no-timeout
// synchronization model.
type GatewayConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// SMSConfig configures the outbound SMS provider.
type SMSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BaseURL  string `mapstructure:"base_url"`
	APIToken string `mapstructure:"api_token"`
	Sender   string `mapstructure:"sender"`
}

// WorkflowConfig carries workflow business rules.
type WorkflowConfig struct {
	// MaxTermMonths caps the term used when an approved application is
	// converted into a loan. Zero means no cap.
	MaxTermMonths int `mapstructure:"max_term_months"`
}

// DispatchConfig configures the side-effect task queue.
type DispatchConfig struct {
	QueueSize int         `mapstructure:"queue_size"`
	Kafka     KafkaConfig `mapstructure:"kafka"`
}

// KafkaConfig enables publishing side-effect tasks to a broker instead of
// the in-process queue.
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads the TOML file at path, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	v.SetEnvPrefix("JBC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks the fields without which the engine cannot run.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if c.Gateway.BaseURL == "" {
		return fmt.Errorf("gateway.base_url is required")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTP.Port)
	}
	if c.Workflow.MaxTermMonths < 0 {
		return fmt.Errorf("workflow.max_term_months must not be negative")
	}
	if c.SMS.Enabled && c.SMS.BaseURL == "" {
		return fmt.Errorf("sms.base_url is required when sms is enabled")
	}
	if c.Dispatch.Kafka.Enabled && len(c.Dispatch.Kafka.Brokers) == 0 {
		return fmt.Errorf("dispatch.kafka.brokers is required when kafka is enabled")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "jbcapital-domain-engine")
	v.SetDefault("environment", "dev")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 30)
	v.SetDefault("http.write_timeout", 30)

	v.SetDefault("gateway.timeout_seconds", 0)

	v.SetDefault("sms.enabled", false)
	v.SetDefault("sms.sender", "JBCapital")

	v.SetDefault("workflow.max_term_months", 4)

	v.SetDefault("dispatch.queue_size", 256)
	v.SetDefault("dispatch.kafka.enabled", false)
	v.SetDefault("dispatch.kafka.topic", "jbcapital.side-effects")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.file_path", "logs/app.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 10)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.with_caller", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
