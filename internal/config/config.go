package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env          string             `mapstructure:"env"`
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Handoff      HandoffConfig      `mapstructure:"handoff"`
	Payments     PaymentsConfig     `mapstructure:"payments"`
	Verification VerificationConfig `mapstructure:"verification"`
	Messaging    MessagingConfig    `mapstructure:"messaging"`
	Telemetry    TelemetryConfig    `mapstructure:"telemetry"`
	Tracks       []TrackConfig      `mapstructure:"tracks"`
}

type ServerConfig struct {
	Port         string   `mapstructure:"port"`
	PublicURL    string   `mapstructure:"public_url"`
	ReadTimeout  int      `mapstructure:"read_timeout_seconds"`
	WriteTimeout int      `mapstructure:"write_timeout_seconds"`
	IdleTimeout  int      `mapstructure:"idle_timeout_seconds"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            string `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time_seconds"`
}

// RedisConfig selects the handoff store. An empty Addr keeps handoffs in memory.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type HandoffConfig struct {
	Secret     string `mapstructure:"secret"`
	TTLMinutes int    `mapstructure:"ttl_minutes"`
}

func (h HandoffConfig) TTL() time.Duration {
	return time.Duration(h.TTLMinutes) * time.Minute
}

type PaymentsConfig struct {
	Provider  string `mapstructure:"provider"`
	KeySecret string `mapstructure:"key_secret"`
}

// VerificationConfig points at the Verification Endpoint. An empty URL
// means the endpoint is served in-process.
type VerificationConfig struct {
	URL            string `mapstructure:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

func (v VerificationConfig) Timeout() time.Duration {
	return time.Duration(v.TimeoutSeconds) * time.Second
}

type MessagingConfig struct {
	Driver        string   `mapstructure:"driver"`
	NATSURL       string   `mapstructure:"nats_url"`
	SubjectPrefix string   `mapstructure:"subject_prefix"`
	KafkaBrokers  []string `mapstructure:"kafka_brokers"`
	KafkaTopic    string   `mapstructure:"kafka_topic"`
}

type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type TrackConfig struct {
	Name              string `mapstructure:"name"`
	MaxTeamSize       int    `mapstructure:"max_team_size"`
	FeePerMemberPaise int64  `mapstructure:"fee_per_member_paise"`
	PaymentLink       string `mapstructure:"payment_link"`
}

func Load() (*Config, error) {
	// Get environment from ENV, default to "local"
	env := os.Getenv("ENV")
	if env == "" {
		env = "local"
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	v.SetConfigType("yaml")
	v.AddConfigPath("/configs")   // Kubernetes mount
	v.AddConfigPath("./configs")  // repo root
	v.AddConfigPath("../configs") // IDE from cmd/

	// Config file is optional - continue with ENV variables
	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("No config file found (will use ENV variables): %v\n", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("database.user", "DB_USER")
	_ = v.BindEnv("database.password", "DB_PASSWORD")
	_ = v.BindEnv("payments.key_secret", "RAZORPAY_KEY_SECRET")
	_ = v.BindEnv("handoff.secret", "HANDOFF_SECRET")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if config.Env == "" {
		config.Env = env
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.public_url", "http://localhost:8080")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 30)
	v.SetDefault("server.idle_timeout_seconds", 60)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "zignasa")
	v.SetDefault("handoff.ttl_minutes", 30)
	v.SetDefault("payments.provider", "links")
	v.SetDefault("verification.timeout_seconds", 10)
	v.SetDefault("messaging.subject_prefix", "zignasa")
	v.SetDefault("messaging.kafka_topic", "zignasa.registrations")
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Handoff.Secret) == "" {
		return fmt.Errorf("handoff.secret (HANDOFF_SECRET) is empty")
	}
	if strings.TrimSpace(c.Payments.KeySecret) == "" {
		return fmt.Errorf("payments.key_secret (RAZORPAY_KEY_SECRET) is empty")
	}
	if c.Handoff.TTLMinutes <= 0 {
		return fmt.Errorf("handoff.ttl_minutes must be positive")
	}
	if c.Verification.TimeoutSeconds <= 0 {
		return fmt.Errorf("verification.timeout_seconds must be positive")
	}
	switch c.Messaging.Driver {
	case "", "nats", "kafka":
	default:
		return fmt.Errorf("unknown messaging driver: %s", c.Messaging.Driver)
	}
	c.Server.PublicURL = strings.TrimRight(c.Server.PublicURL, "/")
	return nil
}
