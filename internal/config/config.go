// Package config handles application configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config defines the structure for all application configuration.
type Config struct {
	Symbols  []SymbolConf `yaml:"symbols"`
	Signal   SignalConf   `yaml:"signal"`
	Risk     RiskConf     `yaml:"risk"`
	Bot      BotConf      `yaml:"bot"`
	Gateway  GatewayConf  `yaml:"gateway"`
	HTTP     HTTPConf     `yaml:"http"`
	Metrics  MetricsConf  `yaml:"metrics"`
	APIToken string       `yaml:"-"` // Loaded from env
	LogLevel string       `yaml:"-"` // Loaded from env or defaults
}

// SymbolConf describes one tracked market symbol.
type SymbolConf struct {
	Name string `yaml:"name"`
	// Precision is the number of decimal places of the symbol's quoted
	// price. The last digit of the price rendered at this precision is
	// the unit all analytics operate on.
	Precision int32 `yaml:"precision"`
}

// SignalConf holds configuration for the signal engine.
type SignalConf struct {
	CacheTTLMs int `yaml:"cache_ttl_ms"`
}

// RiskConf holds configuration for the capital protector.
type RiskConf struct {
	MaxConsecutiveLosses int     `yaml:"max_consecutive_losses"`
	DailyLossLimit       float64 `yaml:"daily_loss_limit"` // negative number
}

// BotConf holds configuration for bot run loops.
type BotConf struct {
	LoopIntervalSec int `yaml:"loop_interval_sec"`
	OrderTimeoutSec int `yaml:"order_timeout_sec"`
	MaxRetainedLogs int `yaml:"max_retained_logs"`
}

// GatewayConf holds configuration for the upstream broker connection.
type GatewayConf struct {
	AppID     string   `yaml:"app_id"`
	Endpoint  string   `yaml:"endpoint"`
	Simulated FlexBool `yaml:"simulated"`
}

// HTTPConf holds configuration for the API server.
type HTTPConf struct {
	ListenAddr string `yaml:"listen_addr"`
}

// MetricsConf holds configuration for the Prometheus endpoint.
type MetricsConf struct {
	ListenAddr string `yaml:"listen_addr"`
}

// DefaultSymbols is used when the config file does not list any symbols.
var DefaultSymbols = []SymbolConf{
	{Name: "R_10", Precision: 3},
	{Name: "R_25", Precision: 3},
	{Name: "R_50", Precision: 4},
	{Name: "R_75", Precision: 4},
	{Name: "R_100", Precision: 2},
	{Name: "BOOM500", Precision: 2},
	{Name: "CRASH500", Precision: 2},
}

// LoadConfig loads configuration from the specified YAML file path
// and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{
		// Default values
		LogLevel: "info",
		Signal:   SignalConf{CacheTTLMs: 1000},
		Risk:     RiskConf{MaxConsecutiveLosses: 5, DailyLossLimit: -100},
		Bot:      BotConf{LoopIntervalSec: 10, OrderTimeoutSec: 5, MaxRetainedLogs: 100},
		Gateway:  GatewayConf{AppID: "1089", Endpoint: "wss://ws.derivws.com/websockets/v3", Simulated: true},
		HTTP:     HTTPConf{ListenAddr: ":8080"},
		Metrics:  MetricsConf{ListenAddr: ":9090"},
	}

	// Read YAML file
	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(file, cfg)
	if err != nil {
		return nil, err
	}

	if len(cfg.Symbols) == 0 {
		cfg.Symbols = DefaultSymbols
	}

	// Load sensitive data and overrides from environment variables
	if token := os.Getenv("DERIV_API_TOKEN"); token != "" {
		cfg.APIToken = token
	}
	if appID := os.Getenv("DERIV_APP_ID"); appID != "" {
		cfg.Gateway.AppID = appID
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for _, s := range c.Symbols {
		if s.Name == "" {
			return fmt.Errorf("config: symbol with empty name")
		}
		if s.Precision < 0 {
			return fmt.Errorf("config: symbol %s has negative precision %d", s.Name, s.Precision)
		}
	}
	if c.Bot.LoopIntervalSec <= 0 {
		return fmt.Errorf("config: bot loop_interval_sec must be positive, got %d", c.Bot.LoopIntervalSec)
	}
	if c.Bot.OrderTimeoutSec <= 0 {
		return fmt.Errorf("config: bot order_timeout_sec must be positive, got %d", c.Bot.OrderTimeoutSec)
	}
	if c.Risk.DailyLossLimit > 0 {
		return fmt.Errorf("config: risk daily_loss_limit must be zero or negative, got %f", c.Risk.DailyLossLimit)
	}
	return nil
}
