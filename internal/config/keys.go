package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cidralias/cidralias/internal/dump"
)

// ErrUnknownKey is returned when a config key is not recognised.
var ErrUnknownKey = errors.New("unknown config key")

// parseValueFunc validates a raw string and returns the typed value to store
// for one config key.
type parseValueFunc func(value string) (any, error)

// keys maps every settable config key to its value parser.
var keys = map[string]parseValueFunc{
	"verbose":     parseBool,
	"output":      parseString,
	"output_v6":   parseString,
	"dns_jobs":    parseCount,
	"dns_retries": parseCount,
	"dns_timeout": parseDuration,
	"dns_server":  parseString,
	"dns_rate":    parseRate,
	"progress":    parseBool,
	"encoding":    parseEncoding,
	"user_agent":  parseString,
	"geoip_db":    parseString,
}

// NormalizeKey converts a hyphenated flag name to its config file key
// ("dns-jobs" to "dns_jobs").
func NormalizeKey(key string) string {
	return strings.ReplaceAll(key, "-", "_")
}

// ValidKeys returns all settable config keys in sorted order.
func ValidKeys() []string {
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// ValidateKey reports whether key names a settable config value. Keys may be
// given in flag form ("dns-jobs") or file form ("dns_jobs").
func ValidateKey(key string) error {
	if _, ok := keys[NormalizeKey(key)]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return nil
}

// ParseValue converts a raw string to the typed value stored for key.
func ParseValue(key, value string) (any, error) {
	parse, ok := keys[NormalizeKey(key)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return parse(value)
}

func parseString(value string) (any, error) {
	return value, nil
}

func parseBool(value string) (any, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, fmt.Errorf("invalid boolean %q: must be true or false", value)
	}
	return b, nil
}

func parseCount(value string) (any, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("invalid count %q: must be a non-negative integer", value)
	}
	return n, nil
}

func parseRate(value string) (any, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		return nil, fmt.Errorf("invalid rate %q: must be a non-negative number", value)
	}
	return f, nil
}

// parseDuration stores the canonical string form so the YAML file stays
// human-readable ("30s" rather than 30000000000).
func parseDuration(value string) (any, error) {
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return nil, fmt.Errorf("invalid duration %q: must be like 500ms, 5s, or 1m", value)
	}
	return d.String(), nil
}

func parseEncoding(value string) (any, error) {
	if _, err := dump.LookupEncoding(value); err != nil {
		return nil, err
	}
	return value, nil
}
