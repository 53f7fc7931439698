package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Server     Server     `yaml:"server"`
	Logger     Logger     `yaml:"logger"`
	PostgresDB PostgresDB `yaml:"db"`
	Auth       Auth       `yaml:"auth"`
	Redis      Redis      `yaml:"rdb"`
	Catalog    Catalog    `yaml:"catalog"`
	Stats      Stats      `yaml:"stats"`
	RateLimit  RateLimit  `yaml:"rateLimit"`
	CORS       CORS       `yaml:"cors"`
	Events     Events     `yaml:"events"`
	Bootstrap  Bootstrap  `yaml:"bootstrap"`
}

type Server struct {
	Addr         string        `env-default:":8080" yaml:"addr"`
	ReadTimeout  time.Duration `env-default:"5s"    yaml:"readTimeout"`
	IdleTimeout  time.Duration `env-default:"30s"   yaml:"idleTimeout"`
	WriteTimeout time.Duration `env-default:"10s"   yaml:"writeTimeout"`
}

type Logger struct {
	Level     string   `env:"LOG_LEVEL" env-default:"info" yaml:"level"`
	Output    []string `yaml:"output"`
	ErrOutput []string `yaml:"errOutput"`
}

type PostgresDB struct {
	Addr     string `env:"POSTGRES_ADDR"     env-default:"localhost:5432" yaml:"addr"`
	Username string `env:"POSTGRES_USER"     env-required:"true"          yaml:"username"`
	Password string `env:"POSTGRES_PASSWORD" yaml:"password"`
	DB       string `env:"POSTGRES_DB"       env-required:"true"          yaml:"db"`
	SSLmode  string `env-default:"disable"   yaml:"sslmode"`
	MaxConns string `env-default:"10"        yaml:"maxConns"`
	Reload   bool   `yaml:"reload"`
	// Version 0 migrates to the latest version.
	Version int `yaml:"version"`
}

// ConnString is the pgx pool DSN.
func (p PostgresDB) ConnString() string {
	return p.DSN() + "&pool_max_conns=" + p.MaxConns
}

// DSN has no pool settings, database/sql drivers reject them.
func (p PostgresDB) DSN() string {
	return "postgres://" + p.Username + ":" + p.Password + "@" +
		p.Addr + "/" + p.DB + "?" + "sslmode=" + p.SSLmode
}

type Auth struct {
	TTL    time.Duration `env-default:"1h" yaml:"ttl"`
	Secret string        `env:"SECRET"     env-required:"true" yaml:"secret"`
}

type Redis struct {
	Addr     string `env:"REDIS_ADDR"     env-default:"localhost:6379" yaml:"addr"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int    `yaml:"db"`
}

type Catalog struct {
	TTL time.Duration `env-default:"24h" yaml:"ttl"`
}

type Stats struct {
	TTL time.Duration `env-default:"5m" yaml:"ttl"`
}

type RateLimit struct {
	Disabled bool             `env:"RATELIMIT_DISABLED" yaml:"disabled"`
	Classes  map[string]Limit `yaml:"classes"`
}

type Limit struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

type CORS struct {
	AllowedOrigins []string `env:"CORS_ORIGINS" env-default:"*" yaml:"allowedOrigins"`
}

type Events struct {
	URL         string        `env:"AMQP_URL"        yaml:"url"`
	Queue       string        `env-default:"menus.changed" yaml:"queue"`
	DialTimeout time.Duration `env-default:"2s"            yaml:"dialTimeout"`
}

type Bootstrap struct {
	Disabled bool   `yaml:"disabled"`
	Username string `env:"ADMIN_USERNAME" env-default:"admin"    yaml:"username"`
	Password string `env:"ADMIN_PASSWORD" env-default:"admin123" yaml:"password"`
}

func New(configPath string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return Config{}, fmt.Errorf("read config error: %w", err)
	}

	return cfg, nil
}
