package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	PublicURL  string `yaml:"public-url" env:"PUBLIC_URL" env-default:"http://localhost:8080"`

	Redis Redis `yaml:"redis"`
	Rooms Rooms `yaml:"rooms"`

	AllowedOrigins []string `yaml:"allowed-origins" env:"ALLOWED_ORIGINS"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Rooms struct {
	TTL           time.Duration `yaml:"ttl" env:"ROOM_TTL" env-default:"1h"`
	SweepInterval time.Duration `yaml:"sweep-interval" env:"ROOM_SWEEP_INTERVAL" env-default:"5m"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
