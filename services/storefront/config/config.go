package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config reúne as configurações do serviço
type Config struct {
	Port    string `mapstructure:"port"`
	AppEnv  string `mapstructure:"app_env"`
	Service string `mapstructure:"service_name"`

	Database DatabaseConfig `mapstructure:",squash"`
	Stripe   StripeConfig   `mapstructure:",squash"`
	Kafka    KafkaConfig    `mapstructure:",squash"`
	Redis    RedisConfig    `mapstructure:",squash"`

	JWTSecret        string `mapstructure:"jwt_secret"`
	OTLPEndpoint     string `mapstructure:"otel_exporter_otlp_endpoint"`
	TelemetryEnabled bool   `mapstructure:"telemetry_enabled"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"database_host"`
	Port     string `mapstructure:"database_port"`
	User     string `mapstructure:"database_user"`
	Password string `mapstructure:"database_password"`
	Name     string `mapstructure:"database_name"`
	MaxConns int32  `mapstructure:"database_max_conns"`
}

// StripeConfig configura o processador de pagamentos. WebhookSecret vazio é
// aceito na inicialização; o webhook responde 500 enquanto ele não existir.
type StripeConfig struct {
	SecretKey        string        `mapstructure:"stripe_secret_key"`
	WebhookSecret    string        `mapstructure:"stripe_webhook_secret"`
	APIURL           string        `mapstructure:"stripe_api_url"`
	Currency         string        `mapstructure:"payment_currency"`
	WebhookTolerance time.Duration `mapstructure:"webhook_tolerance"`
	Timeout          time.Duration `mapstructure:"stripe_timeout"`
}

type KafkaConfig struct {
	Brokers string `mapstructure:"kafka_brokers"`
	Topic   string `mapstructure:"kafka_topic"`
}

// BrokerList devolve os brokers separados por vírgula; vazio desativa a publicação
func (k KafkaConfig) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

type RedisConfig struct {
	Addr       string        `mapstructure:"redis_addr"`
	Password   string        `mapstructure:"redis_password"`
	ProductTTL time.Duration `mapstructure:"product_cache_ttl"`
}

var defaults = map[string]any{
	"port":                        "8080",
	"app_env":                     "production",
	"service_name":                "storefront",
	"database_host":               "localhost",
	"database_port":               "5432",
	"database_user":               "root",
	"database_password":           "pass",
	"database_name":               "storefront_db",
	"database_max_conns":          10,
	"jwt_secret":                  "",
	"stripe_secret_key":           "",
	"stripe_webhook_secret":       "",
	"stripe_api_url":              "https://api.stripe.com",
	"payment_currency":            "brl",
	"webhook_tolerance":           "300s",
	"stripe_timeout":              "10s",
	"kafka_brokers":               "",
	"kafka_topic":                 "storefront.orders",
	"redis_addr":                  "",
	"redis_password":              "",
	"product_cache_ttl":           "5m",
	"otel_exporter_otlp_endpoint": "localhost:4318",
	"telemetry_enabled":           true,
}

// Load lê a configuração das variáveis de ambiente e, se informado, de um
// arquivo. Variáveis de ambiente têm precedência sobre o arquivo.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	return &cfg, nil
}

// DSN monta a URL de conexão do PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// IsDevelopment indica se o serviço roda em ambiente de desenvolvimento
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
