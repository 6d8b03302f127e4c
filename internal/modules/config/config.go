package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
)

// TimeOfDay — локальное время суток "HH:MM".
// Кривая строка в конфиге — фатально на старте, без тихих дефолтов.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// Minutes — минуты от полуночи, для сравнения границ сессии.
func (t TimeOfDay) Minutes() int { return t.Hour*60 + t.Minute }

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

// MinutesOf — время суток момента t в минутах от полуночи.
func MinutesOf(t time.Time) int { return t.Hour()*60 + t.Minute() }

// Config ...
type Config struct {
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	DB      string `yaml:"db_dsn"`
	Service struct {
		Host       string `yaml:"host"`
		PublicPort int    `yaml:"public_port"`
		AdminPort  int    `yaml:"admin_port"`
	} `yaml:"service"`

	Gateway struct {
		BaseURL    string `yaml:"base_url"`
		WSURL      string `yaml:"ws_url"`
		APIKey     string `yaml:"api_key"`
		APISecret  string `yaml:"api_secret"`
		Passphrase string `yaml:"passphrase"`
	} `yaml:"gateway"`

	// Инструмент и таймфрейм
	InstID    string `yaml:"inst_id"`
	Timeframe string `yaml:"timeframe"` // "1m"/"5m"/"15m"

	// Сессия (локальное биржевое время)
	Timezone        string `yaml:"timezone"`
	SessionStartRaw string `yaml:"session_start"` // "09:30"
	SessionEndRaw   string `yaml:"session_end"`   // "16:00"
	EntryCutoffRaw  string `yaml:"entry_cutoff"`  // "15:00"

	SessionStart TimeOfDay `yaml:"-"`
	SessionEnd   TimeOfDay `yaml:"-"`
	EntryCutoff  TimeOfDay `yaml:"-"`

	// Стратегия
	EMAPeriod int `yaml:"ema_period"`

	// Риск и лимиты
	RiskPerTrade    float64 `yaml:"risk_per_trade"`     // фиксированный $-риск на сделку
	MaxTradesPerDay int     `yaml:"max_trades_per_day"` // -1 = без лимита
	AdditionalMode  string  `yaml:"additional_trade_mode"`

	// Годовая защита
	PerformanceProtection bool    `yaml:"performance_protection"`
	MinProfitFactor       float64 `yaml:"min_profit_factor"`
	MinAverageTrade       float64 `yaml:"min_average_trade"`
}

func NewConfig() (*Config, error) {

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		log.Fatalf("Failed to open config file: %v", err)
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := yaml.NewDecoder(file)
	config := Config{
		InstID:    getenvDefault("INST_ID", "US500-USDT-SWAP"),
		Timeframe: getenvDefault("TIMEFRAME", "5m"),

		Timezone:        getenvDefault("SESSION_TZ", "America/New_York"),
		SessionStartRaw: "09:30",
		SessionEndRaw:   "16:00",
		EntryCutoffRaw:  "15:00",

		EMAPeriod: intFromEnv("EMA_PERIOD", 20),

		RiskPerTrade:    floatFromEnv("RISK_PER_TRADE", 250),
		MaxTradesPerDay: intFromEnv("MAX_TRADES_PER_DAY", 2),
		AdditionalMode:  getenvDefault("ADDITIONAL_TRADE_MODE", "conservative"),

		PerformanceProtection: boolFromEnv("PERFORMANCE_PROTECTION", true),
		MinProfitFactor:       floatFromEnv("MIN_PROFIT_FACTOR", 1.0),
		MinAverageTrade:       floatFromEnv("MIN_AVERAGE_TRADE", 0),
	}
	err = decoder.Decode(&config)
	if err != nil {
		log.Fatalf("Failed to decode config file: %v", err)
	}

	token := os.Getenv(tokenTelegramENV)
	if token != "" {
		config.Telegram.Token = token
	}

	dsn := os.Getenv(databaseDSN)
	if dsn != "" {
		config.DB = dsn
	}

	if config.EMAPeriod <= 0 {
		log.Fatalf("ema_period must be > 0, got %d", config.EMAPeriod)
	}
	if config.RiskPerTrade <= 0 {
		log.Fatalf("risk_per_trade must be > 0, got %f", config.RiskPerTrade)
	}
	switch config.AdditionalMode {
	case "conservative", "aggressive":
	default:
		log.Fatalf("additional_trade_mode must be conservative|aggressive, got %q", config.AdditionalMode)
	}

	// кривые границы сессии — фатально, движок не должен стартовать
	if config.SessionStart, err = ParseTimeOfDay(config.SessionStartRaw); err != nil {
		log.Fatalf("session_start: %v", err)
	}
	if config.SessionEnd, err = ParseTimeOfDay(config.SessionEndRaw); err != nil {
		log.Fatalf("session_end: %v", err)
	}
	if config.EntryCutoff, err = ParseTimeOfDay(config.EntryCutoffRaw); err != nil {
		log.Fatalf("entry_cutoff: %v", err)
	}
	if config.SessionStart.Minutes() >= config.SessionEnd.Minutes() {
		log.Fatalf("session_start %s must be before session_end %s",
			config.SessionStart, config.SessionEnd)
	}
	if _, err := time.LoadLocation(config.Timezone); err != nil {
		log.Fatalf("timezone %q: %v", config.Timezone, err)
	}

	return &config, nil
}

// BarInterval — длительность одного бара, из таймфрейма.
func (c *Config) BarInterval() time.Duration {
	d, err := time.ParseDuration(c.Timeframe)
	if err != nil {
		log.Fatalf("timeframe %q: %v", c.Timeframe, err)
	}
	return d
}

// Location — биржевой часовой пояс (валидирован в NewConfig).
func (c *Config) Location() *time.Location {
	loc, _ := time.LoadLocation(c.Timezone)
	return loc
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func boolFromEnv(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if v == "1" || v == "true" || v == "TRUE" {
			return true
		}
		if v == "0" || v == "false" || v == "FALSE" {
			return false
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
