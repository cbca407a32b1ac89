package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/manol-dimitrov/strava-data-analyser/internal/strava"
)

// Strava holds the application credentials and endpoints. The credential
// fields may also come from the properties file; a non-empty environment
// variable always wins over the file.
type Strava struct {
	ClientSecret        string `env:"CLIENT_SECRET"`
	ApplicationClientID int    `env:"APPLICATION_CLIENT_ID"`
	Code                string `env:"CODE"`

	APIBaseURL string `env:"API_BASE_URL" envDefault:"https://www.strava.com/api/v3"`
	TokenURL   string `env:"TOKEN_URL" envDefault:"https://www.strava.com/oauth/token"`
}

type Config struct {
	ConfigFile string `env:"CONFIG_FILE"`
	Strava     Strava `envPrefix:"STRAVA_"`

	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
	HTTPRetryMax   int           `env:"HTTP_RETRY_MAX" envDefault:"0"`
	StartupTimeout time.Duration `env:"STARTUP_TIMEOUT" envDefault:"15s"`
	TimeZone       string        `env:"TIME_ZONE" envDefault:"Local"`

	ActivityFeedURL string `env:"ACTIVITY_FEED_URL"`

	Debug bool   `env:"DEBUG" envDefault:"false"`
	Addr  string `env:"ADDR" envDefault:":8080"`
}

// LoadConfig reads the optional properties file named by CONFIG_FILE, applies
// the environment on top of it and validates the result.
func LoadConfig() (*Config, error) {
	var cfg Config
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fc, err := readFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Strava.ClientSecret = fc.Strava.ClientSecret
		cfg.Strava.ApplicationClientID = fc.Strava.ApplicationClientID
		cfg.Strava.Code = fc.Strava.Code
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Credentials() strava.Credentials {
	return strava.Credentials{
		ClientID:          c.Strava.ApplicationClientID,
		ClientSecret:      c.Strava.ClientSecret,
		AuthorizationCode: c.Strava.Code,
	}
}

// Location resolves TIME_ZONE; "Local" and the empty string mean the process zone.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("config: TIME_ZONE: %w", err)
	}
	return loc, nil
}

func (c *Config) Validate() error {
	var errs []error
	if err := c.Credentials().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("config: HTTP_TIMEOUT must be positive"))
	}
	if c.HTTPRetryMax < 0 {
		errs = append(errs, errors.New("config: HTTP_RETRY_MAX must not be negative"))
	}
	if c.StartupTimeout <= 0 {
		errs = append(errs, errors.New("config: STARTUP_TIMEOUT must be positive"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
