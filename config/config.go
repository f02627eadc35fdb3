// Package config holds the settings shared by the tsim commands.
//
// Settings are resolved in order: built-in defaults, then an optional YAML
// file, then TSIM_* environment variables. The result is validated before use.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/brokerage"
	"github.com/etnz/brokerage/prices"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding the configuration file.
const (
	EnvConfig      = "TSIM_CONFIG"
	EnvOwner       = "TSIM_OWNER"
	EnvCurrency    = "TSIM_CURRENCY"
	EnvLog         = "TSIM_LOG"
	EnvAddr        = "TSIM_ADDR"
	EnvPricesFile  = "TSIM_PRICES_FILE"
	EnvPricesPath  = "TSIM_PRICES_PATH"
	EnvGeminiModel = "TSIM_GEMINI_MODEL"
)

// Config holds the settings of a tsim command.
type Config struct {
	Owner    string `yaml:"owner" validate:"required"`
	Currency string `yaml:"currency" validate:"required,iso4217"`
	Log      string `yaml:"log" validate:"oneof=trace debug info warn error disabled"`
	Addr     string `yaml:"addr" validate:"required"`

	// Prices is an inline price table, ignored when PricesFile is set.
	Prices     map[string]float64 `yaml:"prices" validate:"dive,keys,required,endkeys,gte=0"`
	PricesFile string             `yaml:"prices_file"`
	PricesPath string             `yaml:"prices_path"`

	Model string `yaml:"model"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Owner:    "user",
		Currency: brokerage.DefaultCurrency,
		Log:      "info",
		Addr:     ":8080",
		Model:    "gemini-2.5-flash",
	}
}

var validate = validator.New()

// Load builds the configuration from file, if not empty, and the environment.
func Load(file string) (*Config, error) {
	c := Default()
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("could not open config %q: %w", file, err)
		}
		defer f.Close()
		if err := c.decode(f); err != nil {
			return nil, fmt.Errorf("could not read config %q: %w", file, err)
		}
	}
	c.overrideFromEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) decode(r io.Reader) error {
	err := yaml.NewDecoder(r).Decode(c)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (c *Config) overrideFromEnv() {
	set := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	set(&c.Owner, EnvOwner)
	set(&c.Currency, EnvCurrency)
	set(&c.Log, EnvLog)
	set(&c.Addr, EnvAddr)
	set(&c.PricesFile, EnvPricesFile)
	set(&c.PricesPath, EnvPricesPath)
	set(&c.Model, EnvGeminiModel)
	c.Currency = strings.ToUpper(c.Currency)
}

// Validate checks every field, reporting all the problems at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fmt.Errorf("config: %s fails %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.Join(errs...)
}

// LogLevel parses the configured log level.
func (c Config) LogLevel() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(c.Log)
	if err != nil {
		return zerolog.InfoLevel, err
	}
	return level, nil
}

// Oracle returns the configured price table: the prices file if any, else the
// inline table if any, else the reference table.
func (c Config) Oracle() (brokerage.Prices, error) {
	switch {
	case c.PricesFile != "":
		return prices.Open(c.PricesFile, c.PricesPath)
	case len(c.Prices) > 0:
		return prices.FromFloats(c.Prices)
	default:
		return brokerage.DefaultPrices(), nil
	}
}
