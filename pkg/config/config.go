package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/sakashimaa/webshop/pkg/utils"
)

type Config struct {
	Env      string  `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTP    `yaml:"http"`
	Postgres PG      `yaml:"postgres"`
	Redis    Redis   `yaml:"redis"`
	Kafka    Kafka   `yaml:"kafka"`
	Auth     Auth    `yaml:"auth"`
	Session  Session `yaml:"session"`
	Limiter  Limiter `yaml:"limiter"`
	Metrics  Metrics `yaml:"metrics"`
	Logger   Logger  `yaml:"logger"`
	Tracing  Tracing `yaml:"tracing"`
	Outbox   Outbox  `yaml:"outbox"`
	Catalog  Catalog `yaml:"catalog"`
}

type HTTP struct {
	Port    string        `yaml:"port" env:"HTTP_PORT" env-default:":3000"`
	Timeout time.Duration `yaml:"timeout" env-default:"4s"`
	Prefix  string        `yaml:"prefix" env:"HTTP_PREFIX"`
}

type PG struct {
	URL            string `yaml:"url" env:"DB_URL"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	MigrateOnStart bool   `yaml:"migrate_on_start" env:"MIGRATE_ON_START" env-default:"true"`
	MaxConns       int32  `yaml:"max_conns" env-default:"10"`
	MinConns       int32  `yaml:"min_conns" env-default:"2"`
}

type Redis struct {
	Addr string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
}

type Kafka struct {
	Brokers       []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:"," env-default:"localhost:9092"`
	ConsumerGroup string   `yaml:"consumer_group" env:"KAFKA_CONSUMER_GROUP" env-default:"webshop-catalog-cache"`
	Enabled       bool     `yaml:"enabled" env:"KAFKA_ENABLED" env-default:"true"`
}

type Auth struct {
	Secret     string        `yaml:"secret" env:"ACCESS_SECRET"`
	AccessTTL  time.Duration `yaml:"access_ttl" env-default:"24h"`
	CookieName string        `yaml:"cookie_name" env-default:"access_token"`
}

type Session struct {
	TTL        time.Duration `yaml:"ttl" env-default:"336h"`
	CookieName string        `yaml:"cookie_name" env-default:"sessionid"`
}

type Limiter struct {
	Max        int           `yaml:"max" env-default:"20"`
	Expiration time.Duration `yaml:"expiration" env-default:"5s"`
}

type Metrics struct {
	Port string `yaml:"port" env:"METRICS_PORT" env-default:":9091"`
}

type Logger struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type Tracing struct {
	Enabled     bool    `yaml:"enabled" env:"TRACING_ENABLED" env-default:"true"`
	Endpoint    string  `yaml:"endpoint" env:"JAEGER_ENDPOINT" env-default:"localhost:4318"`
	SampleRatio float64 `yaml:"sample_ratio" env:"TRACING_SAMPLE_RATIO" env-default:"1"`
}

type Outbox struct {
	BatchSize int           `yaml:"batch_size" env-default:"50"`
	Interval  time.Duration `yaml:"interval" env-default:"500ms"`
}

type Catalog struct {
	CacheTTL time.Duration `yaml:"cache_ttl" env-default:"10m"`
}

func MustLoad() *Config {
	configPath := utils.ParseWithFallback("CONFIG_PATH", "./config/local.yaml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exists: %v\n", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("error reading config: %v", err)
	}

	if cfg.Auth.Secret == "" {
		log.Fatalf("auth secret is not set (ACCESS_SECRET)")
	}

	return &cfg
}
