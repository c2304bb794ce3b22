package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/order"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/pricing"
	"gopkg.in/yaml.v3"
)

var ErrInvalidSettings = errors.New("invalid settings")

type Config struct {
	App struct {
		Port string
		Env  string
	}
	Log struct {
		Level string
	}
	SettingsPath   string
	SeedSampleData bool
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Load reads an optional .env file at path and then the process environment.
func Load(path string) (*Config, error) {
	if path != "" {
		err := godotenv.Load(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{}
	cfg.App.Port = getEnv("APP_PORT", "8080")
	cfg.App.Env = getEnv("APP_ENV", "development")
	cfg.Log.Level = getEnv("LOG_LEVEL", "debug")
	cfg.SettingsPath = os.Getenv("SETTINGS_PATH")

	seed, err := strconv.ParseBool(getEnv("SEED_SAMPLE_DATA", "true"))
	if err != nil {
		return nil, fmt.Errorf("SEED_SAMPLE_DATA must be a boolean: %w", err)
	}
	cfg.SeedSampleData = seed

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Settings are the shop settings that change how billing behaves.
type Settings struct {
	Store struct {
		Name     string `yaml:"name"`
		Address  string `yaml:"address"`
		Phone    string `yaml:"phone"`
		Email    string `yaml:"email"`
		GST      string `yaml:"gst"`
		Currency string `yaml:"currency"`
		Timezone string `yaml:"timezone"`
	} `yaml:"store"`

	POS struct {
		TaxRate               decimal.Decimal     `yaml:"tax_rate"`
		DefaultPaymentMethod  order.PaymentMethod `yaml:"default_payment_method"`
		FreeStatusTransitions bool                `yaml:"free_status_transitions"`
	} `yaml:"pos"`

	Inventory struct {
		LowStockThreshold int `yaml:"low_stock_threshold"`
	} `yaml:"inventory"`
}

func DefaultSettings() *Settings {
	s := &Settings{}
	s.Store.Name = "Millet Store"
	s.Store.Currency = "INR"
	s.Store.Timezone = "Asia/Kolkata"
	s.POS.TaxRate = decimal.NewFromInt(pricing.DefaultTaxPercent)
	s.POS.DefaultPaymentMethod = order.PaymentCash
	s.Inventory.LowStockThreshold = 10
	return s
}

// LoadSettings decodes the YAML file at path over the defaults. An empty
// path or a missing file yields the defaults.
func LoadSettings(path string) (*Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return settings, nil
		}
		return nil, fmt.Errorf("failed open settings file: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(settings); err != nil {
		return nil, fmt.Errorf("invalid settings file: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *Settings) Validate() error {
	if s.POS.TaxRate.IsNegative() {
		return fmt.Errorf("%w: pos.tax_rate must not be negative, got %s", ErrInvalidSettings, s.POS.TaxRate)
	}
	if !s.POS.DefaultPaymentMethod.Valid() {
		return fmt.Errorf("%w: unknown pos.default_payment_method %q", ErrInvalidSettings, s.POS.DefaultPaymentMethod)
	}
	if s.Inventory.LowStockThreshold < 0 {
		return fmt.Errorf("%w: inventory.low_stock_threshold must not be negative", ErrInvalidSettings)
	}
	if _, err := time.LoadLocation(s.Store.Timezone); err != nil {
		return fmt.Errorf("%w: store.timezone: %v", ErrInvalidSettings, err)
	}
	return nil
}

// Location is the store's time zone, used for "today" and sample dates.
func (s *Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Store.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
