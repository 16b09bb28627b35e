package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

type Config struct {
	DatabaseURL     string `yaml:"database_url"`
	Pair            string `yaml:"pair"`
	UpperLimit      string `yaml:"upper_limit"`
	LowerLimit      string `yaml:"lower_limit"`
	OrderAmount     string `yaml:"order_amount"`
	NumberOfGrids   int64  `yaml:"number_of_grids"`
	PollingInterval string `yaml:"polling_interval"`

	Exchange       ExchangeConfig `yaml:"-"`
	Grid           GridConfig     `yaml:"-"`
	ParsedInterval time.Duration  `yaml:"-"`
}

// ExchangeConfig carries the API key pair. Keys come from the environment,
// never from the YAML file.
type ExchangeConfig struct {
	PublicKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
}

// GridConfig is the parsed, typed grid configuration consumed by the
// engine. Immutable for the lifetime of one run.
type GridConfig struct {
	Pair          string
	UpperLimit    decimal.Decimal
	LowerLimit    decimal.Decimal
	OrderAmount   decimal.Decimal
	NumberOfGrids int64
}

func Load(filename string) (*Config, error) {
	// Load .env from the config file's directory, if present.
	envPath := filepath.Join(filepath.Dir(filename), ".env")
	if err := godotenv.Load(envPath); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %v", err)
	}
	defer file.Close()

	var config Config
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %v", err)
	}

	config.Exchange.PublicKey = os.Getenv("EXCHANGE_PUBLIC_KEY")
	config.Exchange.SecretKey = os.Getenv("EXCHANGE_SECRET_KEY")
	if config.Exchange.PublicKey == "" || config.Exchange.SecretKey == "" {
		fmt.Println("Warning: exchange public or secret key is empty")
	}

	grid, err := parseGrid(&config)
	if err != nil {
		return nil, err
	}
	config.Grid = grid

	duration, err := time.ParseDuration(config.PollingInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to parse polling interval: %v", err)
	}
	config.ParsedInterval = duration

	return &config, nil
}

func parseGrid(config *Config) (GridConfig, error) {
	upper, err := decimal.NewFromString(config.UpperLimit)
	if err != nil {
		return GridConfig{}, fmt.Errorf("failed to parse upper limit: %v", err)
	}
	lower, err := decimal.NewFromString(config.LowerLimit)
	if err != nil {
		return GridConfig{}, fmt.Errorf("failed to parse lower limit: %v", err)
	}
	amount, err := decimal.NewFromString(config.OrderAmount)
	if err != nil {
		return GridConfig{}, fmt.Errorf("failed to parse order amount: %v", err)
	}

	return GridConfig{
		Pair:          config.Pair,
		UpperLimit:    upper,
		LowerLimit:    lower,
		OrderAmount:   amount,
		NumberOfGrids: config.NumberOfGrids,
	}, nil
}
