// Package config resolves the cidralias configuration from defaults, an
// optional YAML config file, and command-line flags, in ascending precedence.
package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/cidralias/cidralias/internal/dump"
)

// Config holds the fully resolved cidralias configuration.
type Config struct {
	// Path of the config file backing this configuration.
	ConfigFile string `yaml:"-" mapstructure:"-"`

	// Enable debug logging.
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`

	// Destination for merged networks: a file path or "-" for stdout.
	Output string `yaml:"output" mapstructure:"output" validate:"required"`

	// Separate destination for IPv6 networks. Empty appends them to Output.
	OutputV6 string `yaml:"output_v6" mapstructure:"output_v6"`

	// Number of concurrent resolver workers. Zero skips hostname resolution.
	DNSJobs int `yaml:"dns_jobs" mapstructure:"dns_jobs" validate:"min=0"`

	// Extra lookup attempts per hostname after a transient failure.
	DNSRetries int `yaml:"dns_retries" mapstructure:"dns_retries" validate:"min=0"`

	// Per-lookup timeout. Zero disables the per-attempt deadline.
	DNSTimeout time.Duration `yaml:"dns_timeout" mapstructure:"dns_timeout" validate:"min=0"`

	// DNS server as host or host:port. Empty uses the system resolver.
	DNSServer string `yaml:"dns_server" mapstructure:"dns_server"`

	// Upper bound on DNS queries per second. Zero means unlimited.
	DNSRate float64 `yaml:"dns_rate" mapstructure:"dns_rate" validate:"min=0"`

	// Log resolution progress with a completion estimate.
	Progress bool `yaml:"progress" mapstructure:"progress"`

	// Charset of the dump stream (IANA name).
	Encoding string `yaml:"encoding" mapstructure:"encoding"`

	// User-Agent header sent when fetching a dump over HTTP.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// Path to a MaxMind country database for the post-merge summary.
	GeoIPDB string `yaml:"geoip_db" mapstructure:"geoip_db"`
}

// NewDefaultConfig returns a Config with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Verbose:    false,
		Output:     "-",
		OutputV6:   "",
		DNSJobs:    0,
		DNSRetries: 0,
		DNSTimeout: 10 * time.Second,
		DNSServer:  "",
		DNSRate:    0,
		Progress:   true,
		Encoding:   dump.DefaultEncoding,
		UserAgent:  "",
		GeoIPDB:    "",
	}
}

// Validate checks the configuration against its struct tags. Violations are
// reported under the config file key, not the Go field name.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
