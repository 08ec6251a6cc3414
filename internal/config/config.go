package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string     `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string     `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string     `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Redis      Redis      `yaml:"redis"`
	Game       Game       `yaml:"game"`
	Training   Training   `yaml:"training"`
	Evaluation Evaluation `yaml:"evaluation"`
	Reports    Reports    `yaml:"reports"`
}

// Redis stores reports. When Disabled the service runs without report storage.
type Redis struct {
	Disabled bool   `yaml:"disabled" env:"REDIS_DISABLED"`
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// Game is the setup a new session starts with.
type Game struct {
	Mode      string `yaml:"mode" env:"GAME_MODE" env-default:"standard"`
	BoardSize int    `yaml:"board-size" env:"GAME_BOARD_SIZE" env-default:"3"`
}

type Training struct {
	Episodes         int     `yaml:"episodes" env:"TRAINING_EPISODES" env-default:"20000"`
	ProgressInterval int     `yaml:"progress-interval" env:"TRAINING_PROGRESS_INTERVAL" env-default:"500"`
	LearningRate     float64 `yaml:"learning-rate" env:"TRAINING_LEARNING_RATE" env-default:"0.5"`
	Discount         float64 `yaml:"discount" env:"TRAINING_DISCOUNT" env-default:"0.95"`
	StepCost         float64 `yaml:"step-cost" env:"TRAINING_STEP_COST"`
	Symmetry         bool    `yaml:"symmetry" env:"TRAINING_SYMMETRY"`
}

type Evaluation struct {
	Episodes int `yaml:"episodes" env:"EVALUATION_EPISODES" env-default:"1000"`
}

type Reports struct {
	TTL time.Duration `yaml:"ttl" env:"REPORTS_TTL" env-default:"168h"`
	// Recent caps the list behind GET /reports.
	Recent int64 `yaml:"recent" env:"REPORTS_RECENT" env-default:"50"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads path and applies environment overrides.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
