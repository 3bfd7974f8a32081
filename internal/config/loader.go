package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cidralias/cidralias/internal/appdir"
)

// RegisterPersistentFlags registers the flags shared by every command.
func RegisterPersistentFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "config file (default $XDG_CONFIG_HOME/cidralias/config.yaml)")
	flags.BoolP("verbose", "v", false, "enable debug logging")
}

// RegisterFlags registers the generate pipeline flags with defaults matching
// NewDefaultConfig.
func RegisterFlags(flags *pflag.FlagSet) {
	def := NewDefaultConfig()
	flags.StringP("output", "o", def.Output, `write merged networks to this file ("-" for stdout)`)
	flags.StringP("output-v6", "6", def.OutputV6, "write merged IPv6 networks to a separate file")
	flags.IntP("dns-jobs", "j", def.DNSJobs, "concurrent resolver workers (0 skips hostname resolution)")
	flags.Int("dns-retries", def.DNSRetries, "extra attempts per hostname after a transient failure")
	flags.Duration("dns-timeout", def.DNSTimeout, "per-lookup timeout (0 disables)")
	flags.String("dns-server", def.DNSServer, "DNS server as host or host:port (default system resolver)")
	flags.Float64("dns-rate", def.DNSRate, "upper bound on DNS queries per second (0 means unlimited)")
	flags.Bool("progress", def.Progress, "log resolution progress with a completion estimate")
	flags.String("encoding", def.Encoding, "charset of the dump stream")
	flags.String("user-agent", def.UserAgent, "User-Agent header sent when fetching a dump over HTTP")
	flags.String("geoip-db", def.GeoIPDB, "MaxMind country database for the post-merge summary")
}

// DefaultConfigPath returns the OS-appropriate default config file path.
func DefaultConfigPath() (string, error) {
	dir, err := appdir.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load resolves the configuration visible through flags. The config file
// path is taken from the --config flag, falling back to DefaultConfigPath,
// and the file is created empty when missing. Values set on changed flags
// take precedence over file values, which take precedence over defaults.
//
// flags must carry at least the RegisterPersistentFlags set.
func Load(flags *pflag.FlagSet) (*Config, error) {
	configFile, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	if configFile == "" {
		configFile, err = DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}
	if err := appdir.EnsureFile(configFile); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")

	setDefaults(v)
	if err := bindFlags(v, flags); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.ConfigFile = configFile

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults seeds viper with NewDefaultConfig values so keys resolve even
// when the corresponding flag is absent from the set.
func setDefaults(v *viper.Viper) {
	def := NewDefaultConfig()
	v.SetDefault("verbose", def.Verbose)
	v.SetDefault("output", def.Output)
	v.SetDefault("output_v6", def.OutputV6)
	v.SetDefault("dns_jobs", def.DNSJobs)
	v.SetDefault("dns_retries", def.DNSRetries)
	v.SetDefault("dns_timeout", def.DNSTimeout)
	v.SetDefault("dns_server", def.DNSServer)
	v.SetDefault("dns_rate", def.DNSRate)
	v.SetDefault("progress", def.Progress)
	v.SetDefault("encoding", def.Encoding)
	v.SetDefault("user_agent", def.UserAgent)
	v.SetDefault("geoip_db", def.GeoIPDB)
}

// bindFlags binds every flag to its underscored viper key. The config flag
// names the file itself and is handled by Load directly.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" || f.Name == "help" {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		if bindErr := v.BindPFlag(key, f); bindErr != nil && err == nil {
			err = bindErr
		}
	})
	return err
}
